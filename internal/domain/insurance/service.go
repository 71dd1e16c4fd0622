package insurance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinicapp/clinicapp/internal/platform/validation"
)

type Service struct {
	plans PlanRepository
	links PatientInsuranceRepository
}

func NewService(plans PlanRepository, links PatientInsuranceRepository) *Service {
	return &Service{plans: plans, links: links}
}

// -- Plans --

func (s *Service) CreatePlan(ctx context.Context, p *InsurancePlan) error {
	if err := validatePlan(p); err != nil {
		return err
	}
	if p.CreatedBy == uuid.Nil {
		return fmt.Errorf("created_by is required")
	}
	return s.plans.Create(ctx, p)
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*InsurancePlan, error) {
	return s.plans.GetByID(ctx, id)
}

func (s *Service) UpdatePlan(ctx context.Context, p *InsurancePlan) error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("id is required")
	}
	if err := validatePlan(p); err != nil {
		return err
	}
	return s.plans.Update(ctx, p)
}

func (s *Service) DeletePlan(ctx context.Context, id, deletedBy uuid.UUID) error {
	return s.plans.SoftDelete(ctx, id, deletedBy)
}

func (s *Service) ListPlans(ctx context.Context, limit, offset int) ([]*InsurancePlan, int, error) {
	return s.plans.List(ctx, limit, offset)
}

func validatePlan(p *InsurancePlan) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if p.CoveragePercent.IsNegative() || p.CoveragePercent.GreaterThan(hundred) {
		return fmt.Errorf("coverage_percent must be between 0 and 100")
	}
	if p.Deductible.IsNegative() {
		return fmt.Errorf("deductible cannot be negative")
	}
	if p.Copay.IsNegative() {
		return fmt.Errorf("copay cannot be negative")
	}
	if p.CoverageOverride != nil && p.CoverageOverride.IsNegative() {
		return fmt.Errorf("coverage_override cannot be negative")
	}
	return nil
}

// -- Patient links --

func (s *Service) AssignToPatient(ctx context.Context, pi *PatientInsurance) error {
	if pi.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	plan, err := s.plans.GetByID(ctx, pi.PlanID)
	if err != nil {
		return fmt.Errorf("plan %s: %w", pi.PlanID, err)
	}
	if !plan.IsActive {
		return fmt.Errorf("plan %s is not active", plan.Name)
	}
	if pi.ValidFrom != nil && pi.ValidTo != nil && pi.ValidTo.Before(*pi.ValidFrom) {
		return fmt.Errorf("valid_to cannot precede valid_from")
	}
	if pi.IsPrimary {
		// Only one primary per patient; route new primaries through SetPrimary.
		if _, err := s.links.GetPrimaryByPatient(ctx, pi.PatientID); err == nil {
			return fmt.Errorf("patient already has a primary insurance")
		} else if !errors.Is(err, validation.ErrNotFound) {
			return err
		}
	}
	return s.links.Create(ctx, pi)
}

func (s *Service) SetPrimary(ctx context.Context, patientID, id, updatedBy uuid.UUID) error {
	return s.links.SetPrimary(ctx, patientID, id, updatedBy)
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*PatientInsurance, error) {
	return s.links.ListByPatient(ctx, patientID)
}

func (s *Service) RemoveFromPatient(ctx context.Context, id, deletedBy uuid.UUID) error {
	return s.links.SoftDelete(ctx, id, deletedBy)
}

// -- Calculation --

// CalculateForPatient resolves the patient's coverage as of today and splits
// the service amount. A patient without a valid primary insurance pays the
// full amount. The first valid supplementary link, by creation order, is
// applied on top of the primary.
func (s *Service) CalculateForPatient(ctx context.Context, patientID uuid.UUID, serviceAmount decimal.Decimal) (*CalculationResult, error) {
	today := time.Now()

	primary, err := s.activeCoverage(ctx, patientID, today, true)
	if err != nil {
		return nil, err
	}
	var supplementary *Coverage
	if primary != nil {
		supplementary, err = s.activeCoverage(ctx, patientID, today, false)
		if err != nil {
			return nil, err
		}
	}
	return Calculate(serviceAmount, primary, supplementary)
}

func (s *Service) activeCoverage(ctx context.Context, patientID uuid.UUID, day time.Time, primary bool) (*Coverage, error) {
	links, err := s.links.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	for _, link := range links {
		if link.IsPrimary != primary || !link.ValidOn(day) {
			continue
		}
		plan, err := s.plans.GetByID(ctx, link.PlanID)
		if err != nil {
			if errors.Is(err, validation.ErrNotFound) {
				continue // plan retired since the link was made
			}
			return nil, err
		}
		if !plan.IsActive || (!primary && !plan.IsSupplementary) {
			continue
		}
		return &Coverage{
			Percent:    plan.CoveragePercent,
			Deductible: plan.Deductible,
			Override:   plan.CoverageOverride,
		}, nil
	}
	return nil, nil
}
