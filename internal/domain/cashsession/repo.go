package cashsession

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrActiveSessionExists is returned by Open when the user already has an
// active session.
var ErrActiveSessionExists = errors.New("user already has an active cash session")

// Repository persists cash sessions.
type Repository interface {
	// Open inserts a new active session, failing with ErrActiveSessionExists
	// when the user already has one. Check and insert run in one transaction.
	Open(ctx context.Context, s *CashSession) error
	GetByID(ctx context.Context, id uuid.UUID) (*CashSession, error)
	GetByIDIncludeDeleted(ctx context.Context, id uuid.UUID) (*CashSession, error)
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (*CashSession, error)
	Update(ctx context.Context, s *CashSession) error
	// AddIncome and AddExpense accumulate onto the session totals atomically.
	AddIncome(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	AddExpense(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
	SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*CashSession, int, error)
	// ListInRange returns non-deleted sessions started within [from, to).
	ListInRange(ctx context.Context, from, to time.Time) ([]*CashSession, error)
}
