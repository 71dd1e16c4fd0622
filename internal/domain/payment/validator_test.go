package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinicapp/clinicapp/internal/platform/validation"
)

// -- Checker stubs --

type stubReceptions struct {
	existing map[uuid.UUID]bool // id -> accepts payment
}

func (s *stubReceptions) ReceptionAcceptsPayment(_ context.Context, id uuid.UUID) (bool, error) {
	accepts, ok := s.existing[id]
	if !ok {
		return false, validation.ErrNotFound
	}
	return accepts, nil
}

type stubSessions struct {
	sessions map[uuid.UUID]*SessionInfo
}

func (s *stubSessions) CashSessionInfo(_ context.Context, id uuid.UUID) (*SessionInfo, error) {
	info, ok := s.sessions[id]
	if !ok {
		return nil, validation.ErrNotFound
	}
	return info, nil
}

type stubTerminals struct {
	terminals map[uuid.UUID]bool // id -> active
}

func (s *stubTerminals) PosTerminalActive(_ context.Context, id uuid.UUID) (bool, error) {
	active, ok := s.terminals[id]
	if !ok {
		return false, validation.ErrNotFound
	}
	return active, nil
}

type fixture struct {
	validator  *Validator
	receptions *stubReceptions
	sessions   *stubSessions
	terminals  *stubTerminals
	gateways   *mockGatewayRepo

	receptionID uuid.UUID
	sessionID   uuid.UUID
	terminalID  uuid.UUID
	gatewayID   uuid.UUID
	cashierID   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		receptions:  &stubReceptions{existing: make(map[uuid.UUID]bool)},
		sessions:    &stubSessions{sessions: make(map[uuid.UUID]*SessionInfo)},
		terminals:   &stubTerminals{terminals: make(map[uuid.UUID]bool)},
		gateways:    newMockGatewayRepo(),
		receptionID: uuid.New(),
		sessionID:   uuid.New(),
		terminalID:  uuid.New(),
		cashierID:   uuid.New(),
	}
	f.receptions.existing[f.receptionID] = true
	f.sessions.sessions[f.sessionID] = &SessionInfo{OwnerID: f.cashierID, Active: true}
	f.terminals.terminals[f.terminalID] = true

	gw := &PaymentGateway{Name: "gateway", Provider: "zarinpal", MerchantID: "m1", IsActive: true, CreatedBy: uuid.New()}
	f.gateways.Create(context.Background(), gw)
	f.gatewayID = gw.ID

	f.validator = NewValidator(f.receptions, f.sessions, f.terminals, f.gateways)
	return f
}

func hasError(errs *validation.Errors, fragment string) bool {
	for _, msg := range errs.List() {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

// -- Tests --

func TestValidateCash_Valid(t *testing.T) {
	f := newFixture(t)
	errs := f.validator.ValidateCash(context.Background(), &CashPaymentRequest{
		ReceptionID:     f.receptionID,
		CashSessionID:   f.sessionID,
		Amount:          decimal.NewFromInt(1_000_000),
		CreatedByUserID: f.cashierID,
	})
	if !errs.Empty() {
		t.Errorf("expected no errors, got %v", errs.List())
	}
}

func TestValidateCash_AccumulatesAllFailures(t *testing.T) {
	f := newFixture(t)
	// Missing session, over the ceiling, unknown reception: every problem
	// must be reported at once.
	errs := f.validator.ValidateCash(context.Background(), &CashPaymentRequest{
		ReceptionID:     uuid.New(),
		Amount:          decimal.NewFromInt(60_000_000),
		CreatedByUserID: f.cashierID,
	})
	if len(errs.List()) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(errs.List()), errs.List())
	}
	if !hasError(errs, "cash_session_id is required") {
		t.Error("missing session id not reported")
	}
	if !hasError(errs, "cash ceiling") {
		t.Error("ceiling violation not reported")
	}
	if !hasError(errs, "reception does not exist") {
		t.Error("unknown reception not reported")
	}
}

func TestValidateCash_ForeignSessionRejected(t *testing.T) {
	f := newFixture(t)
	errs := f.validator.ValidateCash(context.Background(), &CashPaymentRequest{
		ReceptionID:     f.receptionID,
		CashSessionID:   f.sessionID,
		Amount:          decimal.NewFromInt(1_000),
		CreatedByUserID: uuid.New(), // not the session owner
	})
	if !hasError(errs, "different user") {
		t.Errorf("expected ownership error, got %v", errs.List())
	}
}

func TestValidateCash_InactiveSessionRejected(t *testing.T) {
	f := newFixture(t)
	f.sessions.sessions[f.sessionID].Active = false
	errs := f.validator.ValidateCash(context.Background(), &CashPaymentRequest{
		ReceptionID:     f.receptionID,
		CashSessionID:   f.sessionID,
		Amount:          decimal.NewFromInt(1_000),
		CreatedByUserID: f.cashierID,
	})
	if !hasError(errs, "not active") {
		t.Errorf("expected active-session error, got %v", errs.List())
	}
}

func TestValidatePos_CeilingExceeded(t *testing.T) {
	f := newFixture(t)
	errs := f.validator.ValidatePos(context.Background(), &PosPaymentRequest{
		ReceptionID:     f.receptionID,
		PosTerminalID:   f.terminalID,
		Amount:          decimal.NewFromInt(150_000_000),
		CreatedByUserID: f.cashierID,
	})
	if !hasError(errs, "pos ceiling") {
		t.Errorf("expected ceiling error, got %v", errs.List())
	}
}

func TestValidatePos_AtCeilingAccepted(t *testing.T) {
	f := newFixture(t)
	errs := f.validator.ValidatePos(context.Background(), &PosPaymentRequest{
		ReceptionID:     f.receptionID,
		PosTerminalID:   f.terminalID,
		Amount:          PosCeiling,
		CreatedByUserID: f.cashierID,
	})
	if !errs.Empty() {
		t.Errorf("amount equal to the ceiling must pass, got %v", errs.List())
	}
}

func TestValidateOnline_BadIPAndInactiveGateway(t *testing.T) {
	f := newFixture(t)
	gw, _ := f.gateways.GetByID(context.Background(), f.gatewayID)
	gw.IsActive = false

	errs := f.validator.ValidateOnline(context.Background(), &OnlinePaymentRequest{
		ReceptionID:      f.receptionID,
		PaymentGatewayID: f.gatewayID,
		Amount:           decimal.NewFromInt(1_000),
		UserIPAddress:    "not-an-ip",
		CreatedByUserID:  f.cashierID,
	})
	if !hasError(errs, "IP address") {
		t.Errorf("expected ip error, got %v", errs.List())
	}
	if !hasError(errs, "not active") {
		t.Errorf("expected inactive gateway error, got %v", errs.List())
	}
}

func TestValidateDebt_Ceiling(t *testing.T) {
	f := newFixture(t)
	errs := f.validator.ValidateDebt(context.Background(), &DebtSettlementRequest{
		ReceptionID:     f.receptionID,
		Amount:          decimal.NewFromInt(15_000_000),
		CreatedByUserID: f.cashierID,
	})
	if !hasError(errs, "debt ceiling") {
		t.Errorf("expected ceiling error, got %v", errs.List())
	}
}

func TestValidate_NonPositiveAmount(t *testing.T) {
	f := newFixture(t)
	errs := f.validator.ValidateCash(context.Background(), &CashPaymentRequest{
		ReceptionID:     f.receptionID,
		CashSessionID:   f.sessionID,
		Amount:          decimal.Zero,
		CreatedByUserID: f.cashierID,
	})
	if !hasError(errs, "amount must be positive") {
		t.Errorf("expected amount error, got %v", errs.List())
	}
}
