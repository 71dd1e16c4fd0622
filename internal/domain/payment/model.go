package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Method is the payment channel.
type Method string

const (
	MethodCash   Method = "cash"
	MethodPos    Method = "pos"
	MethodOnline Method = "online"
	MethodDebt   Method = "debt"
)

// Status tracks a payment record. Cash and debt settle immediately; POS
// payments stay registered until the terminal confirms.
type Status string

const (
	StatusRegistered Status = "registered"
	StatusConfirmed  Status = "confirmed"
	StatusFailed     Status = "failed"
)

// PaymentGateway is an online payment provider configuration.
type PaymentGateway struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Provider    string     `db:"provider" json:"provider"`
	MerchantID  string     `db:"merchant_id" json:"merchant_id"`
	TerminalKey string     `db:"terminal_key" json:"-"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	IsDefault   bool       `db:"is_default" json:"is_default"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	CreatedBy   uuid.UUID  `db:"created_by" json:"created_by"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	UpdatedBy   *uuid.UUID `db:"updated_by" json:"updated_by,omitempty"`
	IsDeleted   bool       `db:"is_deleted" json:"is_deleted"`
	DeletedAt   *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedBy   *uuid.UUID `db:"deleted_by" json:"deleted_by,omitempty"`
}

// Payment is one settled or pending payment against a reception.
// ReferenceID points at the channel entity: cash session, POS terminal or
// gateway, depending on Method.
type Payment struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	ReceptionID uuid.UUID       `db:"reception_id" json:"reception_id"`
	Method      Method          `db:"method" json:"method"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	ReferenceID *uuid.UUID      `db:"reference_id" json:"reference_id,omitempty"`
	Status      Status          `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	CreatedBy   uuid.UUID       `db:"created_by" json:"created_by"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
	UpdatedBy   *uuid.UUID      `db:"updated_by" json:"updated_by,omitempty"`
	IsDeleted   bool            `db:"is_deleted" json:"is_deleted"`
	DeletedAt   *time.Time      `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedBy   *uuid.UUID      `db:"deleted_by" json:"deleted_by,omitempty"`
}

// CashPaymentRequest settles part of a reception in cash against the
// cashier's open session.
type CashPaymentRequest struct {
	ReceptionID     uuid.UUID       `json:"reception_id"`
	CashSessionID   uuid.UUID       `json:"cash_session_id"`
	Amount          decimal.Decimal `json:"amount"`
	CreatedByUserID uuid.UUID       `json:"-"`
}

// PosPaymentRequest charges a card terminal.
type PosPaymentRequest struct {
	ReceptionID     uuid.UUID       `json:"reception_id"`
	PosTerminalID   uuid.UUID       `json:"pos_terminal_id"`
	Amount          decimal.Decimal `json:"amount"`
	CreatedByUserID uuid.UUID       `json:"-"`
}

// OnlinePaymentRequest initiates a charge through a payment gateway.
type OnlinePaymentRequest struct {
	ReceptionID      uuid.UUID       `json:"reception_id"`
	PaymentGatewayID uuid.UUID       `json:"payment_gateway_id"`
	Amount           decimal.Decimal `json:"amount"`
	UserIPAddress    string          `json:"user_ip_address" validate:"omitempty,ip"`
	CreatedByUserID  uuid.UUID       `json:"-"`
}

// DebtSettlementRequest records a deferred amount the patient will pay later.
type DebtSettlementRequest struct {
	ReceptionID     uuid.UUID       `json:"reception_id"`
	Amount          decimal.Decimal `json:"amount"`
	CreatedByUserID uuid.UUID       `json:"-"`
}
