package payment

import (
	"context"

	"github.com/google/uuid"
)

// GatewayRepository persists payment gateway configurations.
type GatewayRepository interface {
	Create(ctx context.Context, g *PaymentGateway) error
	GetByID(ctx context.Context, id uuid.UUID) (*PaymentGateway, error)
	GetByIDIncludeDeleted(ctx context.Context, id uuid.UUID) (*PaymentGateway, error)
	GetDefault(ctx context.Context) (*PaymentGateway, error)
	Update(ctx context.Context, g *PaymentGateway) error
	// SetAsDefault clears existing defaults then sets the target, in one
	// transaction.
	SetAsDefault(ctx context.Context, id, updatedBy uuid.UUID) error
	SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*PaymentGateway, int, error)
}

// Repository persists payment records.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetByIDIncludeDeleted(ctx context.Context, id uuid.UUID) (*Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, updatedBy uuid.UUID) error
	SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error
	ListByReception(ctx context.Context, receptionID uuid.UUID) ([]*Payment, error)
}
