package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/clinicapp/clinicapp/internal/platform/validation"
)

// -- Mock repositories --

type mockRepo struct {
	items map[uuid.UUID]*Payment
}

func newMockRepo() *mockRepo { return &mockRepo{items: make(map[uuid.UUID]*Payment)} }

func (m *mockRepo) Create(_ context.Context, p *Payment) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	m.items[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Payment, error) {
	p, ok := m.items[id]
	if !ok || p.IsDeleted {
		return nil, validation.ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetByIDIncludeDeleted(_ context.Context, id uuid.UUID) (*Payment, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, validation.ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status, updatedBy uuid.UUID) error {
	p, ok := m.items[id]
	if !ok || p.IsDeleted {
		return validation.ErrNotFound
	}
	p.Status = status
	p.UpdatedBy = &updatedBy
	return nil
}

func (m *mockRepo) SoftDelete(_ context.Context, id, deletedBy uuid.UUID) error {
	p, ok := m.items[id]
	if !ok || p.IsDeleted {
		return validation.ErrNotFound
	}
	now := time.Now()
	p.IsDeleted = true
	p.DeletedAt = &now
	p.DeletedBy = &deletedBy
	return nil
}

func (m *mockRepo) ListByReception(_ context.Context, receptionID uuid.UUID) ([]*Payment, error) {
	var result []*Payment
	for _, p := range m.items {
		if p.ReceptionID == receptionID && !p.IsDeleted {
			result = append(result, p)
		}
	}
	return result, nil
}

type mockGatewayRepo struct {
	items map[uuid.UUID]*PaymentGateway
}

func newMockGatewayRepo() *mockGatewayRepo {
	return &mockGatewayRepo{items: make(map[uuid.UUID]*PaymentGateway)}
}

func (m *mockGatewayRepo) Create(_ context.Context, g *PaymentGateway) error {
	g.ID = uuid.New()
	g.CreatedAt = time.Now()
	m.items[g.ID] = g
	return nil
}

func (m *mockGatewayRepo) GetByID(_ context.Context, id uuid.UUID) (*PaymentGateway, error) {
	g, ok := m.items[id]
	if !ok || g.IsDeleted {
		return nil, validation.ErrNotFound
	}
	return g, nil
}

func (m *mockGatewayRepo) GetByIDIncludeDeleted(_ context.Context, id uuid.UUID) (*PaymentGateway, error) {
	g, ok := m.items[id]
	if !ok {
		return nil, validation.ErrNotFound
	}
	return g, nil
}

func (m *mockGatewayRepo) GetDefault(_ context.Context) (*PaymentGateway, error) {
	for _, g := range m.items {
		if g.IsDefault && !g.IsDeleted {
			return g, nil
		}
	}
	return nil, validation.ErrNotFound
}

func (m *mockGatewayRepo) Update(_ context.Context, g *PaymentGateway) error {
	m.items[g.ID] = g
	return nil
}

func (m *mockGatewayRepo) SetAsDefault(_ context.Context, id, updatedBy uuid.UUID) error {
	target, ok := m.items[id]
	if !ok || target.IsDeleted {
		return validation.ErrNotFound
	}
	for _, g := range m.items {
		if !g.IsDeleted {
			g.IsDefault = false
		}
	}
	target.IsDefault = true
	return nil
}

func (m *mockGatewayRepo) SoftDelete(_ context.Context, id, deletedBy uuid.UUID) error {
	g, ok := m.items[id]
	if !ok || g.IsDeleted {
		return validation.ErrNotFound
	}
	now := time.Now()
	g.IsDeleted = true
	g.IsDefault = false
	g.DeletedAt = &now
	g.DeletedBy = &deletedBy
	return nil
}

func (m *mockGatewayRepo) List(_ context.Context, limit, offset int) ([]*PaymentGateway, int, error) {
	var result []*PaymentGateway
	for _, g := range m.items {
		if !g.IsDeleted {
			result = append(result, g)
		}
	}
	return result, len(result), nil
}

type mockCashPoster struct {
	posted map[uuid.UUID]decimal.Decimal
	fail   bool
}

func newMockCashPoster() *mockCashPoster {
	return &mockCashPoster{posted: make(map[uuid.UUID]decimal.Decimal)}
}

func (m *mockCashPoster) PostIncome(_ context.Context, sessionID uuid.UUID, amount decimal.Decimal) error {
	if m.fail {
		return errors.New("drawer unavailable")
	}
	m.posted[sessionID] = m.posted[sessionID].Add(amount)
	return nil
}

// -- Tests --

type serviceFixture struct {
	*fixture
	svc    *Service
	repo   *mockRepo
	poster *mockCashPoster
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := newFixture(t)
	repo := newMockRepo()
	poster := newMockCashPoster()
	svc := NewService(repo, f.gateways, f.validator, poster, zerolog.Nop())
	return &serviceFixture{fixture: f, svc: svc, repo: repo, poster: poster}
}

func TestPayCash_RecordsAndPostsIncome(t *testing.T) {
	f := newServiceFixture(t)
	p, err := f.svc.PayCash(context.Background(), &CashPaymentRequest{
		ReceptionID:     f.receptionID,
		CashSessionID:   f.sessionID,
		Amount:          decimal.NewFromInt(2_000_000),
		CreatedByUserID: f.cashierID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusConfirmed || p.Method != MethodCash {
		t.Errorf("got %s/%s, want cash/confirmed", p.Method, p.Status)
	}
	if !f.poster.posted[f.sessionID].Equal(decimal.NewFromInt(2_000_000)) {
		t.Errorf("session income = %s, want 2000000", f.poster.posted[f.sessionID])
	}
}

func TestPayCash_PostingFailureFlagsPayment(t *testing.T) {
	f := newServiceFixture(t)
	f.poster.fail = true
	_, err := f.svc.PayCash(context.Background(), &CashPaymentRequest{
		ReceptionID:     f.receptionID,
		CashSessionID:   f.sessionID,
		Amount:          decimal.NewFromInt(1_000),
		CreatedByUserID: f.cashierID,
	})
	if err == nil {
		t.Fatal("expected error when income posting fails")
	}
	// The record exists but is marked failed for review.
	var found *Payment
	for _, p := range f.repo.items {
		found = p
	}
	if found == nil || found.Status != StatusFailed {
		t.Error("expected a failed payment record")
	}
}

func TestPayPos_CeilingRejectionPersistsNothing(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.PayPos(context.Background(), &PosPaymentRequest{
		ReceptionID:     f.receptionID,
		PosTerminalID:   f.terminalID,
		Amount:          decimal.NewFromInt(150_000_000),
		CreatedByUserID: f.cashierID,
	})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if len(f.repo.items) != 0 {
		t.Error("rejected request must not persist a payment")
	}
	if len(f.poster.posted) != 0 {
		t.Error("rejected request must not touch the cash session")
	}
}

func TestPayPos_RegistersThenConfirms(t *testing.T) {
	f := newServiceFixture(t)
	p, err := f.svc.PayPos(context.Background(), &PosPaymentRequest{
		ReceptionID:     f.receptionID,
		PosTerminalID:   f.terminalID,
		Amount:          decimal.NewFromInt(5_000_000),
		CreatedByUserID: f.cashierID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusRegistered {
		t.Errorf("status = %s, want registered", p.Status)
	}
	if err := f.svc.ConfirmPos(context.Background(), p.ID, f.cashierID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	got, _ := f.svc.Get(context.Background(), p.ID)
	if got.Status != StatusConfirmed {
		t.Errorf("status = %s, want confirmed", got.Status)
	}
	if err := f.svc.ConfirmPos(context.Background(), p.ID, f.cashierID); err == nil {
		t.Error("expected error confirming twice")
	}
}

func TestPayOnline_NotImplemented(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.PayOnline(context.Background(), &OnlinePaymentRequest{
		ReceptionID:      f.receptionID,
		PaymentGatewayID: f.gatewayID,
		Amount:           decimal.NewFromInt(1_000_000),
		UserIPAddress:    "10.0.0.9",
		CreatedByUserID:  f.cashierID,
	})
	if !errors.Is(err, validation.ErrNotImplemented) {
		t.Errorf("expected ErrNotImplemented, got %v", err)
	}
	if len(f.repo.items) != 0 {
		t.Error("unimplemented charge must not persist a payment")
	}
}

func TestPayOnline_InvalidRequestBeatsNotImplemented(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.PayOnline(context.Background(), &OnlinePaymentRequest{
		ReceptionID:      f.receptionID,
		PaymentGatewayID: f.gatewayID,
		Amount:           decimal.NewFromInt(250_000_000), // over ceiling
		CreatedByUserID:  f.cashierID,
	})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("validation failures must be reported before the 501, got %v", err)
	}
}

func TestSettleDebt(t *testing.T) {
	f := newServiceFixture(t)
	p, err := f.svc.SettleDebt(context.Background(), &DebtSettlementRequest{
		ReceptionID:     f.receptionID,
		Amount:          decimal.NewFromInt(5_000_000),
		CreatedByUserID: f.cashierID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Method != MethodDebt || p.Status != StatusConfirmed {
		t.Errorf("got %s/%s, want debt/confirmed", p.Method, p.Status)
	}
	if p.ReferenceID != nil {
		t.Error("debt settlements carry no channel reference")
	}
}

func TestSetDefaultGateway_TwiceLeavesOne(t *testing.T) {
	f := newServiceFixture(t)
	second := &PaymentGateway{Name: "backup", Provider: "mellat", MerchantID: "m2", IsActive: true, CreatedBy: uuid.New()}
	if err := f.svc.CreateGateway(context.Background(), second); err != nil {
		t.Fatalf("create gateway: %v", err)
	}

	if err := f.svc.SetDefaultGateway(context.Background(), f.gatewayID, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.svc.SetDefaultGateway(context.Background(), second.ID, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defaults := 0
	for _, g := range f.gateways.items {
		if g.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default gateway, got %d", defaults)
	}
	got, err := f.gateways.GetDefault(context.Background())
	if err != nil || got.ID != second.ID {
		t.Error("most recent SetDefaultGateway should win")
	}
}
