package patient

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicapp/clinicapp/internal/platform/validation"
)

// -- Mock Repository --

type mockRepo struct {
	items map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.items[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.items[id]
	if !ok || p.IsDeleted {
		return nil, validation.ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetByIDIncludeDeleted(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.items[id]
	if !ok {
		return nil, validation.ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) GetByFileNumber(_ context.Context, fileNumber string) (*Patient, error) {
	for _, p := range m.items {
		if p.FileNumber == fileNumber && !p.IsDeleted {
			return p, nil
		}
	}
	return nil, validation.ErrNotFound
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	m.items[p.ID] = p
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

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.items {
		if !p.IsDeleted {
			result = append(result, p)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) SearchByName(_ context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	var result []*Patient
	for _, p := range m.items {
		if !p.IsDeleted && (strings.Contains(p.FirstName, query) || strings.Contains(p.LastName, query)) {
			result = append(result, p)
		}
	}
	return result, len(result), nil
}

// -- Tests --

func validPatient() *Patient {
	return &Patient{FirstName: "Sara", LastName: "Ahmadi", CreatedBy: uuid.New()}
}

func TestRegister(t *testing.T) {
	svc := NewService(newMockRepo())
	p := validPatient()
	if err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.FileNumber == "" {
		t.Error("expected generated file number")
	}
}

func TestRegister_NameRequired(t *testing.T) {
	svc := NewService(newMockRepo())
	p := validPatient()
	p.FirstName = "  "
	if err := svc.Register(context.Background(), p); err == nil {
		t.Error("expected error for blank first name")
	}
}

func TestRegister_InvalidNationalID(t *testing.T) {
	svc := NewService(newMockRepo())
	p := validPatient()
	nid := "12345"
	p.NationalID = &nid
	if err := svc.Register(context.Background(), p); err == nil {
		t.Error("expected error for short national id")
	}
}

func TestRegister_InvalidGender(t *testing.T) {
	svc := NewService(newMockRepo())
	p := validPatient()
	g := "unknown"
	p.Gender = &g
	if err := svc.Register(context.Background(), p); err == nil {
		t.Error("expected error for invalid gender")
	}
}

func TestDelete_SoftDeleteVisibility(t *testing.T) {
	svc := NewService(newMockRepo())
	p := validPatient()
	svc.Register(context.Background(), p)

	if err := svc.Delete(context.Background(), p.ID, uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(context.Background(), p.ID); err == nil {
		t.Error("expected not found after soft delete")
	}
	got, err := svc.GetIncludeDeleted(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("include-deleted path should still find the record: %v", err)
	}
	if !got.IsDeleted || got.DeletedAt == nil {
		t.Error("expected deletion markers to be set")
	}
}

func TestSearch_BlankFallsBackToList(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)
	svc.Register(context.Background(), validPatient())

	items, total, err := svc.Search(context.Background(), "   ", 20, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("expected 1 patient, got %d", total)
	}
}
