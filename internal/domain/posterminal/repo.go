package posterminal

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists POS terminals.
type Repository interface {
	Create(ctx context.Context, t *PosTerminal) error
	GetByID(ctx context.Context, id uuid.UUID) (*PosTerminal, error)
	GetByIDIncludeDeleted(ctx context.Context, id uuid.UUID) (*PosTerminal, error)
	// GetByNetworkAddress finds a non-deleted terminal by ip+port.
	GetByNetworkAddress(ctx context.Context, ip string, port int) (*PosTerminal, error)
	// GetDefault returns the current default terminal, or
	// validation.ErrNotFound when none is set.
	GetDefault(ctx context.Context) (*PosTerminal, error)
	Update(ctx context.Context, t *PosTerminal) error
	// SetAsDefault clears every default flag then sets the target, in one
	// transaction. The most recent call wins.
	SetAsDefault(ctx context.Context, id, updatedBy uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool, updatedBy uuid.UUID) error
	SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*PosTerminal, int, error)
}
