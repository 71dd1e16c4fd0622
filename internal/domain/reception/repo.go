package reception

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists receptions.
type Repository interface {
	Create(ctx context.Context, r *Reception) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reception, error)
	GetByIDIncludeDeleted(ctx context.Context, id uuid.UUID) (*Reception, error)
	Update(ctx context.Context, r *Reception) error
	SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Reception, int, error)
	List(ctx context.Context, limit, offset int) ([]*Reception, int, error)
}

// ChargeRepository persists service charge lines.
type ChargeRepository interface {
	Create(ctx context.Context, c *ServiceCharge) error
	ListByReception(ctx context.Context, receptionID uuid.UUID) ([]*ServiceCharge, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
