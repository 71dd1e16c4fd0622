package cashsession

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// mismatchTolerance is the fraction of the expected balance a declared close
// may deviate before the session goes to under_review.
var mismatchTolerance = decimal.NewFromFloat(0.01)

type Service struct {
	sessions Repository
}

func NewService(sessions Repository) *Service {
	return &Service{sessions: sessions}
}

// Open starts a session for the user. The repository rejects a second active
// session for the same user inside its transaction.
func (s *Service) Open(ctx context.Context, userID uuid.UUID, initialCash decimal.Decimal) (*CashSession, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user_id is required")
	}
	if initialCash.IsNegative() {
		return nil, fmt.Errorf("initial cash amount cannot be negative")
	}
	session := &CashSession{
		UserID:            userID,
		StartTime:         time.Now(),
		InitialCashAmount: initialCash,
		TotalIncome:       decimal.Zero,
		TotalExpense:      decimal.Zero,
		Status:            StatusActive,
		CreatedBy:         userID,
	}
	if err := s.sessions.Open(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*CashSession, error) {
	return s.sessions.GetByID(ctx, id)
}

func (s *Service) GetIncludeDeleted(ctx context.Context, id uuid.UUID) (*CashSession, error) {
	return s.sessions.GetByIDIncludeDeleted(ctx, id)
}

func (s *Service) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*CashSession, error) {
	return s.sessions.GetActiveByUser(ctx, userID)
}

func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*CashSession, int, error) {
	return s.sessions.ListByUser(ctx, userID, limit, offset)
}

// PostIncome adds to the session's income total. Only active sessions accept
// postings.
func (s *Service) PostIncome(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("income amount must be positive")
	}
	return s.sessions.AddIncome(ctx, id, amount)
}

func (s *Service) PostExpense(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("expense amount must be positive")
	}
	return s.sessions.AddExpense(ctx, id, amount)
}

// Close ends the session with the cash the drawer actually held. A declared
// amount off the expected balance by more than the tolerance marks the
// session under_review for a supervisor instead of closed.
func (s *Service) Close(ctx context.Context, id uuid.UUID, declaredCash decimal.Decimal, closedBy uuid.UUID) (*CashSession, error) {
	if declaredCash.IsNegative() {
		return nil, fmt.Errorf("declared cash amount cannot be negative")
	}
	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Status != StatusActive {
		return nil, fmt.Errorf("session is %s, expected active", session.Status)
	}

	expected := session.ExpectedBalance()
	diff := declaredCash.Sub(expected).Abs()
	tolerance := expected.Abs().Mul(mismatchTolerance)

	now := time.Now()
	session.EndTime = &now
	session.FinalCashAmount = &declaredCash
	session.UpdatedBy = &closedBy
	if diff.GreaterThan(tolerance) {
		session.Status = StatusUnderReview
	} else {
		session.Status = StatusClosed
	}
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *Service) Delete(ctx context.Context, id, deletedBy uuid.UUID) error {
	return s.sessions.SoftDelete(ctx, id, deletedBy)
}

// GetStatistics materializes the sessions in the window and aggregates in
// memory. Session counts at clinic scale keep this cheap.
func (s *Service) GetStatistics(ctx context.Context, from, to time.Time) (*Statistics, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("invalid range: to must follow from")
	}
	sessions, err := s.sessions.ListInRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	var totalDuration time.Duration
	var finished int
	for _, session := range sessions {
		stats.TotalSessions++
		if session.Status == StatusActive {
			stats.ActiveSessions++
		}
		stats.TotalIncome = stats.TotalIncome.Add(session.TotalIncome)
		stats.TotalExpense = stats.TotalExpense.Add(session.TotalExpense)
		if session.EndTime != nil {
			totalDuration += session.EndTime.Sub(session.StartTime)
			finished++
		}
	}
	if finished > 0 {
		stats.AverageDurationSeconds = (totalDuration / time.Duration(finished)).Seconds()
	}
	return stats, nil
}
