package posterminal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"

	"github.com/clinicapp/clinicapp/internal/platform/validation"
)

type Service struct {
	terminals Repository
}

func NewService(terminals Repository) *Service {
	return &Service{terminals: terminals}
}

func (s *Service) Create(ctx context.Context, t *PosTerminal) error {
	if err := validateTerminal(t); err != nil {
		return err
	}
	if err := s.checkNetworkIdentity(ctx, t); err != nil {
		return err
	}
	// New terminals never start as the default; SetAsDefault is the only
	// path that grants the flag.
	t.IsDefault = false
	return s.terminals.Create(ctx, t)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*PosTerminal, error) {
	return s.terminals.GetByID(ctx, id)
}

func (s *Service) GetDefault(ctx context.Context) (*PosTerminal, error) {
	return s.terminals.GetDefault(ctx)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*PosTerminal, int, error) {
	return s.terminals.List(ctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, t *PosTerminal) error {
	if t.ID == uuid.Nil {
		return fmt.Errorf("id is required")
	}
	if err := validateTerminal(t); err != nil {
		return err
	}
	if err := s.checkNetworkIdentity(ctx, t); err != nil {
		return err
	}
	return s.terminals.Update(ctx, t)
}

func (s *Service) SetAsDefault(ctx context.Context, id, updatedBy uuid.UUID) error {
	t, err := s.terminals.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !t.IsActive {
		return fmt.Errorf("inactive terminal cannot be the default")
	}
	return s.terminals.SetAsDefault(ctx, id, updatedBy)
}

func (s *Service) Activate(ctx context.Context, id, updatedBy uuid.UUID) error {
	return s.terminals.SetActive(ctx, id, true, updatedBy)
}

func (s *Service) Deactivate(ctx context.Context, id, updatedBy uuid.UUID) error {
	return s.terminals.SetActive(ctx, id, false, updatedBy)
}

func (s *Service) Delete(ctx context.Context, id, deletedBy uuid.UUID) error {
	return s.terminals.SoftDelete(ctx, id, deletedBy)
}

func validateTerminal(t *PosTerminal) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if net.ParseIP(t.IPAddress) == nil {
		return fmt.Errorf("invalid ip address: %s", t.IPAddress)
	}
	if t.Port < 1 || t.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}

// checkNetworkIdentity rejects a second non-deleted terminal on the same
// ip+port.
func (s *Service) checkNetworkIdentity(ctx context.Context, t *PosTerminal) error {
	existing, err := s.terminals.GetByNetworkAddress(ctx, t.IPAddress, t.Port)
	if err != nil {
		if errors.Is(err, validation.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != t.ID {
		return fmt.Errorf("a terminal already uses %s:%d", t.IPAddress, t.Port)
	}
	return nil
}
