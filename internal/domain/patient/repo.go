package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByIDIncludeDeleted(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByFileNumber(ctx context.Context, fileNumber string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	SearchByName(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error)
}
