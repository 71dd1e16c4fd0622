package reception

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinicapp/clinicapp/internal/domain/insurance"
	"github.com/clinicapp/clinicapp/internal/platform/validation"
)

// -- Mocks --

type mockRepo struct {
	items map[uuid.UUID]*Reception
}

func newMockRepo() *mockRepo { return &mockRepo{items: make(map[uuid.UUID]*Reception)} }

func (m *mockRepo) Create(_ context.Context, r *Reception) error {
	r.ID = uuid.New()
	r.CreatedAt = time.Now()
	m.items[r.ID] = r
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Reception, error) {
	r, ok := m.items[id]
	if !ok || r.IsDeleted {
		return nil, validation.ErrNotFound
	}
	return r, nil
}

func (m *mockRepo) GetByIDIncludeDeleted(_ context.Context, id uuid.UUID) (*Reception, error) {
	r, ok := m.items[id]
	if !ok {
		return nil, validation.ErrNotFound
	}
	return r, nil
}

func (m *mockRepo) Update(_ context.Context, r *Reception) error {
	m.items[r.ID] = r
	return nil
}

func (m *mockRepo) SoftDelete(_ context.Context, id, deletedBy uuid.UUID) error {
	r, ok := m.items[id]
	if !ok || r.IsDeleted {
		return validation.ErrNotFound
	}
	now := time.Now()
	r.IsDeleted = true
	r.DeletedAt = &now
	r.DeletedBy = &deletedBy
	return nil
}

func (m *mockRepo) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]*Reception, int, error) {
	var result []*Reception
	for _, r := range m.items {
		if r.PatientID == patientID && !r.IsDeleted {
			result = append(result, r)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Reception, int, error) {
	var result []*Reception
	for _, r := range m.items {
		if !r.IsDeleted {
			result = append(result, r)
		}
	}
	return result, len(result), nil
}

type mockChargeRepo struct {
	items map[uuid.UUID]*ServiceCharge
}

func newMockChargeRepo() *mockChargeRepo {
	return &mockChargeRepo{items: make(map[uuid.UUID]*ServiceCharge)}
}

func (m *mockChargeRepo) Create(_ context.Context, c *ServiceCharge) error {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	m.items[c.ID] = c
	return nil
}

func (m *mockChargeRepo) ListByReception(_ context.Context, receptionID uuid.UUID) ([]*ServiceCharge, error) {
	var result []*ServiceCharge
	for _, c := range m.items {
		if c.ReceptionID == receptionID {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockChargeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.items[id]; !ok {
		return validation.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

// mockCalculator splits 70/30 regardless of the patient.
type mockCalculator struct{ calls int }

func (m *mockCalculator) CalculateForPatient(_ context.Context, _ uuid.UUID, amount decimal.Decimal) (*insurance.CalculationResult, error) {
	m.calls++
	insurer := amount.Mul(decimal.NewFromInt(70)).Div(decimal.NewFromInt(100))
	return &insurance.CalculationResult{
		ServiceAmount:  amount,
		PrimaryShare:   insurer,
		InsuranceShare: insurer,
		PatientShare:   amount.Sub(insurer),
		ComputedAt:     time.Now(),
	}, nil
}

// -- Tests --

func newTestService() (*Service, *mockRepo, *mockChargeRepo, *mockCalculator) {
	repo := newMockRepo()
	charges := newMockChargeRepo()
	calc := &mockCalculator{}
	return NewService(repo, charges, calc), repo, charges, calc
}

func openReception(t *testing.T, svc *Service) *Reception {
	t.Helper()
	rec := &Reception{PatientID: uuid.New(), CreatedBy: uuid.New()}
	if err := svc.Create(context.Background(), rec); err != nil {
		t.Fatalf("create reception: %v", err)
	}
	return rec
}

func addCharge(t *testing.T, svc *Service, receptionID uuid.UUID, amount int64) {
	t.Helper()
	err := svc.AddCharge(context.Background(), &ServiceCharge{
		ReceptionID: receptionID,
		ServiceID:   uuid.New(),
		Description: "visit",
		Amount:      decimal.NewFromInt(amount),
		CreatedBy:   uuid.New(),
	})
	if err != nil {
		t.Fatalf("add charge: %v", err)
	}
}

func TestCreate_StartsOpenWithNumber(t *testing.T) {
	svc, _, _, _ := newTestService()
	rec := openReception(t, svc)
	if rec.Status != StatusOpen {
		t.Errorf("status = %s, want open", rec.Status)
	}
	if rec.ReceptionNumber == "" {
		t.Error("expected generated reception number")
	}
}

func TestCalculate_AppliesShares(t *testing.T) {
	svc, _, _, _ := newTestService()
	rec := openReception(t, svc)
	addCharge(t, svc, rec.ID, 600_000)
	addCharge(t, svc, rec.ID, 400_000)

	res, err := svc.Calculate(context.Background(), rec.ID, uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.ServiceAmount.Equal(decimal.NewFromInt(1_000_000)) {
		t.Errorf("service amount = %s, want 1000000", res.ServiceAmount)
	}
	got, _ := svc.Get(context.Background(), rec.ID)
	if got.Status != StatusBilled {
		t.Errorf("status = %s, want billed", got.Status)
	}
	if !got.InsurerShare.Equal(decimal.NewFromInt(700_000)) {
		t.Errorf("insurer share = %s, want 700000", got.InsurerShare)
	}
	if !got.PatientShare.Equal(decimal.NewFromInt(300_000)) {
		t.Errorf("patient share = %s, want 300000", got.PatientShare)
	}
}

func TestCalculate_NoCharges(t *testing.T) {
	svc, _, _, _ := newTestService()
	rec := openReception(t, svc)
	if _, err := svc.Calculate(context.Background(), rec.ID, uuid.New()); err == nil {
		t.Error("expected error for reception without charges")
	}
}

func TestAddCharge_FrozenAfterCalculation(t *testing.T) {
	svc, _, _, _ := newTestService()
	rec := openReception(t, svc)
	addCharge(t, svc, rec.ID, 100_000)
	if _, err := svc.Calculate(context.Background(), rec.ID, uuid.New()); err != nil {
		t.Fatalf("calculate: %v", err)
	}

	err := svc.AddCharge(context.Background(), &ServiceCharge{
		ReceptionID: rec.ID, ServiceID: uuid.New(), Description: "late",
		Amount: decimal.NewFromInt(50_000), CreatedBy: uuid.New(),
	})
	if err == nil {
		t.Error("expected error adding a charge to a billed reception")
	}
}

func TestClearCalculation_ReopensAndResets(t *testing.T) {
	svc, _, _, _ := newTestService()
	rec := openReception(t, svc)
	addCharge(t, svc, rec.ID, 100_000)
	svc.Calculate(context.Background(), rec.ID, uuid.New())

	if err := svc.ClearCalculation(context.Background(), rec.ID, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.Get(context.Background(), rec.ID)
	if got.Status != StatusOpen {
		t.Errorf("status = %s, want open", got.Status)
	}
	if !got.InsurerShare.IsZero() || !got.PatientShare.IsZero() || !got.TotalAmount.IsZero() {
		t.Error("shares should reset when the calculation is cleared")
	}
	addCharge(t, svc, rec.ID, 25_000) // charges unfrozen again
}

func TestSettle_RequiresBilled(t *testing.T) {
	svc, _, _, _ := newTestService()
	rec := openReception(t, svc)
	if err := svc.Settle(context.Background(), rec.ID, uuid.New()); err == nil {
		t.Error("expected error settling an open reception")
	}
}

func TestCancel_SettledRejected(t *testing.T) {
	svc, _, _, _ := newTestService()
	rec := openReception(t, svc)
	addCharge(t, svc, rec.ID, 100_000)
	svc.Calculate(context.Background(), rec.ID, uuid.New())
	if err := svc.Settle(context.Background(), rec.ID, uuid.New()); err != nil {
		t.Fatalf("settle: %v", err)
	}
	if err := svc.Cancel(context.Background(), rec.ID, uuid.New()); err == nil {
		t.Error("expected error cancelling a settled reception")
	}
}
