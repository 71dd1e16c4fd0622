package payment

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinicapp/clinicapp/internal/platform/validation"
)

// Per-channel amount ceilings, in rials. Business policy, not a technical
// limit.
var (
	CashCeiling   = decimal.NewFromInt(50_000_000)
	PosCeiling    = decimal.NewFromInt(100_000_000)
	OnlineCeiling = decimal.NewFromInt(200_000_000)
	DebtCeiling   = decimal.NewFromInt(10_000_000)
)

// ReceptionChecker answers whether a reception exists and can take payments.
// Satisfied by an adapter over the reception service; wired in main.
type ReceptionChecker interface {
	ReceptionAcceptsPayment(ctx context.Context, id uuid.UUID) (bool, error)
}

// SessionInfo is what payment validation needs to know about a cash session.
type SessionInfo struct {
	OwnerID uuid.UUID
	Active  bool
}

type CashSessionChecker interface {
	// CashSessionInfo returns validation.ErrNotFound for missing or deleted
	// sessions.
	CashSessionInfo(ctx context.Context, id uuid.UUID) (*SessionInfo, error)
}

type PosTerminalChecker interface {
	// PosTerminalActive returns validation.ErrNotFound for missing or
	// deleted terminals.
	PosTerminalActive(ctx context.Context, id uuid.UUID) (bool, error)
}

// Validator checks payment requests in a fixed order — required fields,
// amount against the channel ceiling, referenced entities exist, entities
// are active, ownership — and accumulates every failure instead of stopping
// at the first.
type Validator struct {
	receptions ReceptionChecker
	sessions   CashSessionChecker
	terminals  PosTerminalChecker
	gateways   GatewayRepository
}

func NewValidator(receptions ReceptionChecker, sessions CashSessionChecker, terminals PosTerminalChecker, gateways GatewayRepository) *Validator {
	return &Validator{receptions: receptions, sessions: sessions, terminals: terminals, gateways: gateways}
}

func (v *Validator) ValidateCash(ctx context.Context, req *CashPaymentRequest) *validation.Errors {
	errs := &validation.Errors{}
	if req.ReceptionID == uuid.Nil {
		errs.Add("reception_id is required")
	}
	if req.CashSessionID == uuid.Nil {
		errs.Add("cash_session_id is required")
	}
	if req.CreatedByUserID == uuid.Nil {
		errs.Add("created_by_user_id is required")
	}
	checkAmount(errs, req.Amount, CashCeiling, "cash")
	v.checkReception(ctx, errs, req.ReceptionID)

	if req.CashSessionID != uuid.Nil {
		info, err := v.sessions.CashSessionInfo(ctx, req.CashSessionID)
		switch {
		case errors.Is(err, validation.ErrNotFound):
			errs.Add("cash session does not exist")
		case err != nil:
			errs.Addf("cash session lookup failed: %v", err)
		case !info.Active:
			errs.Add("cash session is not active")
		case req.CreatedByUserID != uuid.Nil && info.OwnerID != req.CreatedByUserID:
			errs.Add("cash session belongs to a different user")
		}
	}
	return errs
}

func (v *Validator) ValidatePos(ctx context.Context, req *PosPaymentRequest) *validation.Errors {
	errs := &validation.Errors{}
	if req.ReceptionID == uuid.Nil {
		errs.Add("reception_id is required")
	}
	if req.PosTerminalID == uuid.Nil {
		errs.Add("pos_terminal_id is required")
	}
	if req.CreatedByUserID == uuid.Nil {
		errs.Add("created_by_user_id is required")
	}
	checkAmount(errs, req.Amount, PosCeiling, "pos")
	v.checkReception(ctx, errs, req.ReceptionID)

	if req.PosTerminalID != uuid.Nil {
		active, err := v.terminals.PosTerminalActive(ctx, req.PosTerminalID)
		switch {
		case errors.Is(err, validation.ErrNotFound):
			errs.Add("pos terminal does not exist")
		case err != nil:
			errs.Addf("pos terminal lookup failed: %v", err)
		case !active:
			errs.Add("pos terminal is not active")
		}
	}
	return errs
}

func (v *Validator) ValidateOnline(ctx context.Context, req *OnlinePaymentRequest) *validation.Errors {
	errs := &validation.Errors{}
	if req.ReceptionID == uuid.Nil {
		errs.Add("reception_id is required")
	}
	if req.PaymentGatewayID == uuid.Nil {
		errs.Add("payment_gateway_id is required")
	}
	if req.CreatedByUserID == uuid.Nil {
		errs.Add("created_by_user_id is required")
	}
	validation.Struct(req, errs)
	checkAmount(errs, req.Amount, OnlineCeiling, "online")
	v.checkReception(ctx, errs, req.ReceptionID)

	if req.PaymentGatewayID != uuid.Nil {
		gw, err := v.gateways.GetByID(ctx, req.PaymentGatewayID)
		switch {
		case errors.Is(err, validation.ErrNotFound):
			errs.Add("payment gateway does not exist")
		case err != nil:
			errs.Addf("payment gateway lookup failed: %v", err)
		case !gw.IsActive:
			errs.Add("payment gateway is not active")
		}
	}
	return errs
}

func (v *Validator) ValidateDebt(ctx context.Context, req *DebtSettlementRequest) *validation.Errors {
	errs := &validation.Errors{}
	if req.ReceptionID == uuid.Nil {
		errs.Add("reception_id is required")
	}
	if req.CreatedByUserID == uuid.Nil {
		errs.Add("created_by_user_id is required")
	}
	checkAmount(errs, req.Amount, DebtCeiling, "debt")
	v.checkReception(ctx, errs, req.ReceptionID)
	return errs
}

func checkAmount(errs *validation.Errors, amount, ceiling decimal.Decimal, channel string) {
	if amount.LessThanOrEqual(decimal.Zero) {
		errs.Add("amount must be positive")
		return
	}
	if amount.GreaterThan(ceiling) {
		errs.Addf("amount exceeds the %s ceiling of %s", channel, ceiling.StringFixed(0))
	}
}

func (v *Validator) checkReception(ctx context.Context, errs *validation.Errors, receptionID uuid.UUID) {
	if receptionID == uuid.Nil {
		return
	}
	ok, err := v.receptions.ReceptionAcceptsPayment(ctx, receptionID)
	switch {
	case errors.Is(err, validation.ErrNotFound):
		errs.Add("reception does not exist")
	case err != nil:
		errs.Addf("reception lookup failed: %v", err)
	case !ok:
		errs.Add("reception does not accept payments in its current state")
	}
}
