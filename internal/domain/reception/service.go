package reception

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/clinicapp/clinicapp/internal/domain/insurance"
)

// CoverageCalculator resolves a patient's insurance split for a charge total.
// Satisfied by the insurance service; wired in main.
type CoverageCalculator interface {
	CalculateForPatient(ctx context.Context, patientID uuid.UUID, serviceAmount decimal.Decimal) (*insurance.CalculationResult, error)
}

type Service struct {
	receptions Repository
	charges    ChargeRepository
	calculator CoverageCalculator
}

func NewService(receptions Repository, charges ChargeRepository, calculator CoverageCalculator) *Service {
	return &Service{receptions: receptions, charges: charges, calculator: calculator}
}

func (s *Service) Create(ctx context.Context, rec *Reception) error {
	if rec.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if rec.CreatedBy == uuid.Nil {
		return fmt.Errorf("created_by is required")
	}
	if rec.VisitDate.IsZero() {
		rec.VisitDate = time.Now()
	}
	rec.Status = StatusOpen
	rec.TotalAmount = decimal.Zero
	rec.InsurerShare = decimal.Zero
	rec.PatientShare = decimal.Zero
	if rec.ReceptionNumber == "" {
		rec.ReceptionNumber = newReceptionNumber(rec.VisitDate)
	}
	return s.receptions.Create(ctx, rec)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Reception, error) {
	return s.receptions.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Reception, int, error) {
	return s.receptions.List(ctx, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Reception, int, error) {
	return s.receptions.ListByPatient(ctx, patientID, limit, offset)
}

// AddCharge appends a service line. Charges are frozen once a calculation has
// been applied; ClearCalculation reopens the reception first.
func (s *Service) AddCharge(ctx context.Context, c *ServiceCharge) error {
	if c.Amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("charge amount must be positive")
	}
	if strings.TrimSpace(c.Description) == "" {
		return fmt.Errorf("description is required")
	}
	rec, err := s.receptions.GetByID(ctx, c.ReceptionID)
	if err != nil {
		return err
	}
	if rec.Status != StatusOpen {
		return fmt.Errorf("charges cannot be modified on a %s reception", rec.Status)
	}
	return s.charges.Create(ctx, c)
}

func (s *Service) ListCharges(ctx context.Context, receptionID uuid.UUID) ([]*ServiceCharge, error) {
	return s.charges.ListByReception(ctx, receptionID)
}

func (s *Service) RemoveCharge(ctx context.Context, receptionID, chargeID uuid.UUID) error {
	rec, err := s.receptions.GetByID(ctx, receptionID)
	if err != nil {
		return err
	}
	if rec.Status != StatusOpen {
		return fmt.Errorf("charges cannot be modified on a %s reception", rec.Status)
	}
	return s.charges.Delete(ctx, chargeID)
}

// Calculate sums the charge lines, runs the coverage calculation for the
// patient, and stamps the shares onto the reception, moving it to billed.
func (s *Service) Calculate(ctx context.Context, receptionID, updatedBy uuid.UUID) (*insurance.CalculationResult, error) {
	rec, err := s.receptions.GetByID(ctx, receptionID)
	if err != nil {
		return nil, err
	}
	if rec.Status != StatusOpen {
		return nil, fmt.Errorf("reception is %s, expected open", rec.Status)
	}
	charges, err := s.charges.ListByReception(ctx, receptionID)
	if err != nil {
		return nil, err
	}
	if len(charges) == 0 {
		return nil, fmt.Errorf("reception has no charges")
	}
	total := decimal.Zero
	for _, c := range charges {
		total = total.Add(c.Amount)
	}

	result, err := s.calculator.CalculateForPatient(ctx, rec.PatientID, total)
	if err != nil {
		return nil, err
	}

	rec.TotalAmount = result.ServiceAmount
	rec.InsurerShare = result.InsuranceShare
	rec.PatientShare = result.PatientShare
	rec.Status = StatusBilled
	rec.UpdatedBy = &updatedBy
	if err := s.receptions.Update(ctx, rec); err != nil {
		return nil, err
	}
	return result, nil
}

// ClearCalculation reopens a billed reception so charges can change again.
func (s *Service) ClearCalculation(ctx context.Context, receptionID, updatedBy uuid.UUID) error {
	rec, err := s.receptions.GetByID(ctx, receptionID)
	if err != nil {
		return err
	}
	if rec.Status != StatusBilled {
		return fmt.Errorf("reception is %s, expected billed", rec.Status)
	}
	rec.TotalAmount = decimal.Zero
	rec.InsurerShare = decimal.Zero
	rec.PatientShare = decimal.Zero
	rec.Status = StatusOpen
	rec.UpdatedBy = &updatedBy
	return s.receptions.Update(ctx, rec)
}

// Settle marks a billed reception as fully paid.
func (s *Service) Settle(ctx context.Context, receptionID, updatedBy uuid.UUID) error {
	rec, err := s.receptions.GetByID(ctx, receptionID)
	if err != nil {
		return err
	}
	if rec.Status != StatusBilled {
		return fmt.Errorf("reception is %s, expected billed", rec.Status)
	}
	rec.Status = StatusSettled
	rec.UpdatedBy = &updatedBy
	return s.receptions.Update(ctx, rec)
}

func (s *Service) Cancel(ctx context.Context, receptionID, updatedBy uuid.UUID) error {
	rec, err := s.receptions.GetByID(ctx, receptionID)
	if err != nil {
		return err
	}
	if rec.Status == StatusSettled {
		return fmt.Errorf("settled receptions cannot be cancelled")
	}
	if rec.Status == StatusCancelled {
		return fmt.Errorf("reception is already cancelled")
	}
	rec.Status = StatusCancelled
	rec.UpdatedBy = &updatedBy
	return s.receptions.Update(ctx, rec)
}

func (s *Service) Delete(ctx context.Context, id, deletedBy uuid.UUID) error {
	return s.receptions.SoftDelete(ctx, id, deletedBy)
}

func newReceptionNumber(visit time.Time) string {
	return fmt.Sprintf("R-%s-%s", visit.Format("20060102"), strings.ToUpper(uuid.NewString()[:6]))
}
