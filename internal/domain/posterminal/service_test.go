package posterminal

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicapp/clinicapp/internal/platform/validation"
)

// -- Mock Repository --

type mockRepo struct {
	items map[uuid.UUID]*PosTerminal
}

func newMockRepo() *mockRepo { return &mockRepo{items: make(map[uuid.UUID]*PosTerminal)} }

func (m *mockRepo) Create(_ context.Context, t *PosTerminal) error {
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	m.items[t.ID] = t
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*PosTerminal, error) {
	t, ok := m.items[id]
	if !ok || t.IsDeleted {
		return nil, validation.ErrNotFound
	}
	return t, nil
}

func (m *mockRepo) GetByIDIncludeDeleted(_ context.Context, id uuid.UUID) (*PosTerminal, error) {
	t, ok := m.items[id]
	if !ok {
		return nil, validation.ErrNotFound
	}
	return t, nil
}

func (m *mockRepo) GetByNetworkAddress(_ context.Context, ip string, port int) (*PosTerminal, error) {
	for _, t := range m.items {
		if t.IPAddress == ip && t.Port == port && !t.IsDeleted {
			return t, nil
		}
	}
	return nil, validation.ErrNotFound
}

func (m *mockRepo) GetDefault(_ context.Context) (*PosTerminal, error) {
	for _, t := range m.items {
		if t.IsDefault && !t.IsDeleted {
			return t, nil
		}
	}
	return nil, validation.ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, t *PosTerminal) error {
	m.items[t.ID] = t
	return nil
}

func (m *mockRepo) SetAsDefault(_ context.Context, id, updatedBy uuid.UUID) error {
	target, ok := m.items[id]
	if !ok || target.IsDeleted {
		return validation.ErrNotFound
	}
	for _, t := range m.items {
		if !t.IsDeleted {
			t.IsDefault = false
		}
	}
	target.IsDefault = true
	return nil
}

func (m *mockRepo) SetActive(_ context.Context, id uuid.UUID, active bool, updatedBy uuid.UUID) error {
	t, ok := m.items[id]
	if !ok || t.IsDeleted {
		return validation.ErrNotFound
	}
	t.IsActive = active
	return nil
}

func (m *mockRepo) SoftDelete(_ context.Context, id, deletedBy uuid.UUID) error {
	t, ok := m.items[id]
	if !ok || t.IsDeleted {
		return validation.ErrNotFound
	}
	now := time.Now()
	t.IsDeleted = true
	t.IsDefault = false
	t.DeletedAt = &now
	t.DeletedBy = &deletedBy
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*PosTerminal, int, error) {
	var result []*PosTerminal
	for _, t := range m.items {
		if !t.IsDeleted {
			result = append(result, t)
		}
	}
	return result, len(result), nil
}

// -- Tests --

func validTerminal(ip string, port int) *PosTerminal {
	return &PosTerminal{
		Name:      "Desk 1",
		Provider:  "saman",
		Protocol:  "tcp",
		IPAddress: ip,
		Port:      port,
		IsActive:  true,
		CreatedBy: uuid.New(),
	}
}

func TestCreate_DuplicateNetworkAddressRejected(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Create(context.Background(), validTerminal("10.0.0.5", 8080)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Create(context.Background(), validTerminal("10.0.0.5", 8080)); err == nil {
		t.Error("expected error for duplicate ip+port")
	}
	// Same ip on a different port is a different device.
	if err := svc.Create(context.Background(), validTerminal("10.0.0.5", 8081)); err != nil {
		t.Errorf("unexpected error for different port: %v", err)
	}
}

func TestCreate_InvalidAddress(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.Create(context.Background(), validTerminal("not-an-ip", 8080)); err == nil {
		t.Error("expected error for bad ip")
	}
	if err := svc.Create(context.Background(), validTerminal("10.0.0.5", 0)); err == nil {
		t.Error("expected error for port 0")
	}
}

func TestCreate_NeverStartsDefault(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	term := validTerminal("10.0.0.5", 8080)
	term.IsDefault = true
	if err := svc.Create(context.Background(), term); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.items[term.ID].IsDefault {
		t.Error("create must not grant the default flag")
	}
}

func TestSetAsDefault_TwiceLeavesOneDefault(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	a := validTerminal("10.0.0.5", 8080)
	b := validTerminal("10.0.0.6", 8080)
	svc.Create(context.Background(), a)
	svc.Create(context.Background(), b)

	if err := svc.SetAsDefault(context.Background(), a.ID, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SetAsDefault(context.Background(), b.ID, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defaults := 0
	for _, term := range repo.items {
		if term.IsDefault {
			defaults++
		}
	}
	if defaults != 1 {
		t.Fatalf("expected exactly one default, got %d", defaults)
	}
	got, err := svc.GetDefault(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != b.ID {
		t.Error("most recent SetAsDefault should win")
	}
}

func TestSetAsDefault_InactiveRejected(t *testing.T) {
	svc := NewService(newMockRepo())
	term := validTerminal("10.0.0.5", 8080)
	term.IsActive = false
	svc.Create(context.Background(), term)
	if err := svc.SetAsDefault(context.Background(), term.ID, uuid.New()); err == nil {
		t.Error("expected error for inactive terminal")
	}
}

func TestDelete_ClearsDefaultFlag(t *testing.T) {
	svc := NewService(newMockRepo())
	term := validTerminal("10.0.0.5", 8080)
	svc.Create(context.Background(), term)
	svc.SetAsDefault(context.Background(), term.ID, uuid.New())

	if err := svc.Delete(context.Background(), term.ID, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.GetDefault(context.Background()); err == nil {
		t.Error("deleted terminal must not remain the default")
	}
	// Its network identity is released for reuse.
	if err := svc.Create(context.Background(), validTerminal("10.0.0.5", 8080)); err != nil {
		t.Errorf("ip+port should be reusable after delete: %v", err)
	}
}

func TestActivateDeactivate(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	term := validTerminal("10.0.0.5", 8080)
	svc.Create(context.Background(), term)

	if err := svc.Deactivate(context.Background(), term.ID, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.items[term.ID].IsActive {
		t.Error("terminal should be inactive")
	}
	if err := svc.Activate(context.Background(), term.ID, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !repo.items[term.ID].IsActive {
		t.Error("terminal should be active")
	}
}
