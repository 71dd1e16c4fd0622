package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

var validGenders = map[string]bool{"male": true, "female": true, "other": true}

func (s *Service) Register(ctx context.Context, p *Patient) error {
	if strings.TrimSpace(p.FirstName) == "" {
		return fmt.Errorf("first_name is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		return fmt.Errorf("last_name is required")
	}
	if p.CreatedBy == uuid.Nil {
		return fmt.Errorf("created_by is required")
	}
	if p.Gender != nil && !validGenders[*p.Gender] {
		return fmt.Errorf("invalid gender: %s", *p.Gender)
	}
	if p.NationalID != nil && len(*p.NationalID) != 10 {
		return fmt.Errorf("national_id must be 10 digits")
	}
	if p.FileNumber == "" {
		p.FileNumber = newFileNumber()
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetIncludeDeleted(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByIDIncludeDeleted(ctx, id)
}

func (s *Service) GetByFileNumber(ctx context.Context, fileNumber string) (*Patient, error) {
	return s.patients.GetByFileNumber(ctx, fileNumber)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("id is required")
	}
	if p.Gender != nil && !validGenders[*p.Gender] {
		return fmt.Errorf("invalid gender: %s", *p.Gender)
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, id, deletedBy uuid.UUID) error {
	if deletedBy == uuid.Nil {
		return fmt.Errorf("deleted_by is required")
	}
	return s.patients.SoftDelete(ctx, id, deletedBy)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, limit, offset)
}

func (s *Service) Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	if strings.TrimSpace(query) == "" {
		return s.patients.List(ctx, limit, offset)
	}
	return s.patients.SearchByName(ctx, query, limit, offset)
}

// newFileNumber generates a human-readable file number from a fresh uuid.
func newFileNumber() string {
	return "F-" + strings.ToUpper(uuid.NewString()[:8])
}
