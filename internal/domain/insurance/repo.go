package insurance

import (
	"context"

	"github.com/google/uuid"
)

// PlanRepository persists insurance plans.
type PlanRepository interface {
	Create(ctx context.Context, p *InsurancePlan) error
	GetByID(ctx context.Context, id uuid.UUID) (*InsurancePlan, error)
	GetByIDIncludeDeleted(ctx context.Context, id uuid.UUID) (*InsurancePlan, error)
	Update(ctx context.Context, p *InsurancePlan) error
	SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*InsurancePlan, int, error)
}

// PatientInsuranceRepository persists patient-to-plan links.
type PatientInsuranceRepository interface {
	Create(ctx context.Context, pi *PatientInsurance) error
	GetByID(ctx context.Context, id uuid.UUID) (*PatientInsurance, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*PatientInsurance, error)
	// GetPrimaryByPatient returns the single primary non-deleted link, or
	// validation.ErrNotFound when the patient carries no primary insurance.
	GetPrimaryByPatient(ctx context.Context, patientID uuid.UUID) (*PatientInsurance, error)
	// SetPrimary atomically clears any existing primary flag for the patient
	// and marks the given link as primary.
	SetPrimary(ctx context.Context, patientID, id, updatedBy uuid.UUID) error
	SoftDelete(ctx context.Context, id, deletedBy uuid.UUID) error
}
