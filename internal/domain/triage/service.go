package triage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicapp/clinicapp/internal/platform/validation"
)

type Service struct {
	records Repository
}

func NewService(records Repository) *Service {
	return &Service{records: records}
}

// Intake validates the vitals, computes the acuity level and stores the
// record. The caller never supplies the level directly.
func (s *Service) Intake(ctx context.Context, rec *TriageRecord) error {
	if rec.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if rec.NurseID == uuid.Nil {
		return fmt.Errorf("nurse_id is required")
	}
	if strings.TrimSpace(rec.ChiefComplaint) == "" {
		return fmt.Errorf("chief_complaint is required")
	}
	errs := &validation.Errors{}
	validation.Struct(rec.Vitals, errs)
	if !errs.Empty() {
		return fmt.Errorf("invalid vitals: %s", strings.Join(errs.List(), "; "))
	}
	if rec.TriageTime.IsZero() {
		rec.TriageTime = time.Now()
	}
	rec.ESILevel = ComputeESILevel(rec.Vitals)
	rec.CreatedBy = rec.NurseID
	return s.records.Create(ctx, rec)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*TriageRecord, error) {
	return s.records.GetByID(ctx, id)
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*TriageRecord, int, error) {
	return s.records.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByLevel(ctx context.Context, level, limit, offset int) ([]*TriageRecord, int, error) {
	if level < 1 || level > 5 {
		return nil, 0, fmt.Errorf("esi level must be between 1 and 5")
	}
	return s.records.ListByLevel(ctx, level, limit, offset)
}

// OverrideLevel lets a nurse sharpen the stored acuity. Lower numbers are
// more acute; moves toward 5 are refused so an override can never downgrade
// a patient.
func (s *Service) OverrideLevel(ctx context.Context, id uuid.UUID, level int, nurseID uuid.UUID) (*TriageRecord, error) {
	if level < 1 || level > 5 {
		return nil, fmt.Errorf("esi level must be between 1 and 5")
	}
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if level >= rec.ESILevel {
		return nil, fmt.Errorf("override must be more acute than level %d", rec.ESILevel)
	}
	rec.ESILevel = level
	rec.UpdatedBy = &nurseID
	if err := s.records.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, id, deletedBy uuid.UUID) error {
	return s.records.SoftDelete(ctx, id, deletedBy)
}
