package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/clinicapp/clinicapp/internal/platform/validation"
)

// CashPoster posts confirmed cash income onto the session drawer totals.
// Satisfied by the cash session service; wired in main.
type CashPoster interface {
	PostIncome(ctx context.Context, sessionID uuid.UUID, amount decimal.Decimal) error
}

// RequestError carries the accumulated validation failures for a rejected
// payment request. Nothing is persisted when it is returned.
type RequestError struct {
	Errs *validation.Errors
}

func (e *RequestError) Error() string {
	return "payment request rejected: " + strings.Join(e.Errs.List(), "; ")
}

type Service struct {
	payments  Repository
	gateways  GatewayRepository
	validator *Validator
	cash      CashPoster
	log       zerolog.Logger
}

func NewService(payments Repository, gateways GatewayRepository, validator *Validator, cash CashPoster, log zerolog.Logger) *Service {
	return &Service{payments: payments, gateways: gateways, validator: validator, cash: cash, log: log}
}

// PayCash validates and records a cash payment, then posts the amount as
// income to the cashier's session.
func (s *Service) PayCash(ctx context.Context, req *CashPaymentRequest) (*Payment, error) {
	if errs := s.validator.ValidateCash(ctx, req); !errs.Empty() {
		return nil, &RequestError{Errs: errs}
	}
	p := &Payment{
		ReceptionID: req.ReceptionID,
		Method:      MethodCash,
		Amount:      req.Amount,
		ReferenceID: &req.CashSessionID,
		Status:      StatusConfirmed,
		CreatedBy:   req.CreatedByUserID,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	if err := s.cash.PostIncome(ctx, req.CashSessionID, req.Amount); err != nil {
		// The payment row exists but the drawer total did not move; flag the
		// record for review rather than failing the whole request silently.
		s.log.Error().Err(err).Str("payment_id", p.ID.String()).
			Msg("cash income posting failed after payment was recorded")
		if uerr := s.payments.UpdateStatus(ctx, p.ID, StatusFailed, req.CreatedByUserID); uerr != nil {
			return nil, fmt.Errorf("post income: %w (status update also failed: %v)", err, uerr)
		}
		return nil, fmt.Errorf("post income: %w", err)
	}
	s.log.Info().Str("payment_id", p.ID.String()).Str("method", string(MethodCash)).
		Str("amount", req.Amount.String()).Msg("payment recorded")
	return p, nil
}

// PayPos validates and registers a POS payment. The record stays registered
// until the terminal confirms the charge out of band.
func (s *Service) PayPos(ctx context.Context, req *PosPaymentRequest) (*Payment, error) {
	if errs := s.validator.ValidatePos(ctx, req); !errs.Empty() {
		return nil, &RequestError{Errs: errs}
	}
	p := &Payment{
		ReceptionID: req.ReceptionID,
		Method:      MethodPos,
		Amount:      req.Amount,
		ReferenceID: &req.PosTerminalID,
		Status:      StatusRegistered,
		CreatedBy:   req.CreatedByUserID,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Str("payment_id", p.ID.String()).Str("method", string(MethodPos)).
		Str("amount", req.Amount.String()).Msg("payment registered")
	return p, nil
}

// PayOnline validates the request and then reports that charge initiation
// against the gateway is not implemented. No record is persisted.
func (s *Service) PayOnline(ctx context.Context, req *OnlinePaymentRequest) (*Payment, error) {
	if errs := s.validator.ValidateOnline(ctx, req); !errs.Empty() {
		return nil, &RequestError{Errs: errs}
	}
	return nil, fmt.Errorf("online charge initiation: %w", validation.ErrNotImplemented)
}

// SettleDebt records a deferred payment the patient owes.
func (s *Service) SettleDebt(ctx context.Context, req *DebtSettlementRequest) (*Payment, error) {
	if errs := s.validator.ValidateDebt(ctx, req); !errs.Empty() {
		return nil, &RequestError{Errs: errs}
	}
	p := &Payment{
		ReceptionID: req.ReceptionID,
		Method:      MethodDebt,
		Amount:      req.Amount,
		Status:      StatusConfirmed,
		CreatedBy:   req.CreatedByUserID,
	}
	if err := s.payments.Create(ctx, p); err != nil {
		return nil, err
	}
	s.log.Info().Str("payment_id", p.ID.String()).Str("method", string(MethodDebt)).
		Str("amount", req.Amount.String()).Msg("debt settlement recorded")
	return p, nil
}

// ConfirmPos moves a registered POS payment to confirmed.
func (s *Service) ConfirmPos(ctx context.Context, id, updatedBy uuid.UUID) error {
	p, err := s.payments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Method != MethodPos {
		return fmt.Errorf("payment %s is not a pos payment", id)
	}
	if p.Status != StatusRegistered {
		return fmt.Errorf("payment is %s, expected registered", p.Status)
	}
	return s.payments.UpdateStatus(ctx, id, StatusConfirmed, updatedBy)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return s.payments.GetByID(ctx, id)
}

func (s *Service) ListByReception(ctx context.Context, receptionID uuid.UUID) ([]*Payment, error) {
	return s.payments.ListByReception(ctx, receptionID)
}

func (s *Service) Delete(ctx context.Context, id, deletedBy uuid.UUID) error {
	return s.payments.SoftDelete(ctx, id, deletedBy)
}

// -- Gateway administration --

func (s *Service) CreateGateway(ctx context.Context, g *PaymentGateway) error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(g.MerchantID) == "" {
		return fmt.Errorf("merchant_id is required")
	}
	g.IsDefault = false
	return s.gateways.Create(ctx, g)
}

func (s *Service) GetGateway(ctx context.Context, id uuid.UUID) (*PaymentGateway, error) {
	return s.gateways.GetByID(ctx, id)
}

func (s *Service) ListGateways(ctx context.Context, limit, offset int) ([]*PaymentGateway, int, error) {
	return s.gateways.List(ctx, limit, offset)
}

func (s *Service) UpdateGateway(ctx context.Context, g *PaymentGateway) error {
	if g.ID == uuid.Nil {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return s.gateways.Update(ctx, g)
}

func (s *Service) SetDefaultGateway(ctx context.Context, id, updatedBy uuid.UUID) error {
	g, err := s.gateways.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !g.IsActive {
		return fmt.Errorf("inactive gateway cannot be the default")
	}
	return s.gateways.SetAsDefault(ctx, id, updatedBy)
}

func (s *Service) DeleteGateway(ctx context.Context, id, deletedBy uuid.UUID) error {
	return s.gateways.SoftDelete(ctx, id, deletedBy)
}
