package reception

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status tracks the reception lifecycle. Charges may only change while the
// reception is open; applying a coverage calculation moves it to billed.
type Status string

const (
	StatusOpen      Status = "open"
	StatusBilled    Status = "billed"
	StatusSettled   Status = "settled"
	StatusCancelled Status = "cancelled"
)

// Reception is one patient visit. TotalAmount, InsurerShare and PatientShare
// are zero until a calculation is applied.
type Reception struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	PatientID       uuid.UUID       `db:"patient_id" json:"patient_id"`
	ReceptionNumber string          `db:"reception_number" json:"reception_number"`
	Status          Status          `db:"status" json:"status"`
	VisitDate       time.Time       `db:"visit_date" json:"visit_date"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"total_amount"`
	InsurerShare    decimal.Decimal `db:"insurer_share" json:"insurer_share"`
	PatientShare    decimal.Decimal `db:"patient_share" json:"patient_share"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	CreatedBy       uuid.UUID       `db:"created_by" json:"created_by"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
	UpdatedBy       *uuid.UUID      `db:"updated_by" json:"updated_by,omitempty"`
	IsDeleted       bool            `db:"is_deleted" json:"is_deleted"`
	DeletedAt       *time.Time      `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedBy       *uuid.UUID      `db:"deleted_by" json:"deleted_by,omitempty"`
}

// ServiceCharge is one billed service line on a reception.
type ServiceCharge struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	ReceptionID uuid.UUID       `db:"reception_id" json:"reception_id"`
	ServiceID   uuid.UUID       `db:"service_id" json:"service_id"`
	CategoryID  *uuid.UUID      `db:"category_id" json:"category_id,omitempty"`
	Description string          `db:"description" json:"description"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	CreatedBy   uuid.UUID       `db:"created_by" json:"created_by"`
}
