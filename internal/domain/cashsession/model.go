package cashsession

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status tracks the session lifecycle. A close whose declared cash drifts
// more than one percent from the expected balance lands in under_review
// instead of closed.
type Status string

const (
	StatusActive      Status = "active"
	StatusClosed      Status = "closed"
	StatusUnderReview Status = "under_review"
)

// CashSession is one cashier's working period at the register. TotalIncome
// and TotalExpense accumulate as payments post against the session.
type CashSession struct {
	ID                uuid.UUID        `db:"id" json:"id"`
	UserID            uuid.UUID        `db:"user_id" json:"user_id"`
	StartTime         time.Time        `db:"start_time" json:"start_time"`
	EndTime           *time.Time       `db:"end_time" json:"end_time,omitempty"`
	InitialCashAmount decimal.Decimal  `db:"initial_cash_amount" json:"initial_cash_amount"`
	FinalCashAmount   *decimal.Decimal `db:"final_cash_amount" json:"final_cash_amount,omitempty"`
	TotalIncome       decimal.Decimal  `db:"total_income" json:"total_income"`
	TotalExpense      decimal.Decimal  `db:"total_expense" json:"total_expense"`
	Status            Status           `db:"status" json:"status"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	CreatedBy         uuid.UUID        `db:"created_by" json:"created_by"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
	UpdatedBy         *uuid.UUID       `db:"updated_by" json:"updated_by,omitempty"`
	IsDeleted         bool             `db:"is_deleted" json:"is_deleted"`
	DeletedAt         *time.Time       `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedBy         *uuid.UUID       `db:"deleted_by" json:"deleted_by,omitempty"`
}

// ExpectedBalance is the cash the drawer should hold at close.
func (s *CashSession) ExpectedBalance() decimal.Decimal {
	return s.InitialCashAmount.Add(s.TotalIncome).Sub(s.TotalExpense)
}

// Statistics aggregates a set of sessions in memory. The average duration is
// reported in seconds so the admin screens can render it directly.
type Statistics struct {
	TotalSessions          int             `json:"total_sessions"`
	ActiveSessions         int             `json:"active_sessions"`
	TotalIncome            decimal.Decimal `json:"total_income"`
	TotalExpense           decimal.Decimal `json:"total_expense"`
	AverageDurationSeconds float64         `json:"average_duration_seconds"`
}
