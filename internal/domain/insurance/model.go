package insurance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InsurancePlan maps to the insurance_plan table. CoveragePercent is the
// fraction of the coverable amount the payor pays; Deductible is subtracted
// from the service charge before the percentage applies; CoverageOverride,
// when set, caps the payor share at a fixed amount per service.
type InsurancePlan struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	Name             string           `db:"name" json:"name"`
	PayorName        string           `db:"payor_name" json:"payor_name"`
	CoveragePercent  decimal.Decimal  `db:"coverage_percent" json:"coverage_percent"`
	Deductible       decimal.Decimal  `db:"deductible" json:"deductible"`
	Copay            decimal.Decimal  `db:"copay" json:"copay"`
	CoverageOverride *decimal.Decimal `db:"coverage_override" json:"coverage_override,omitempty"`
	IsSupplementary  bool             `db:"is_supplementary" json:"is_supplementary"`
	IsActive         bool             `db:"is_active" json:"is_active"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	CreatedBy        uuid.UUID        `db:"created_by" json:"created_by"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
	UpdatedBy        *uuid.UUID       `db:"updated_by" json:"updated_by,omitempty"`
	IsDeleted        bool             `db:"is_deleted" json:"is_deleted"`
	DeletedAt        *time.Time       `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedBy        *uuid.UUID       `db:"deleted_by" json:"deleted_by,omitempty"`
}

// PatientInsurance links a patient to a plan. At most one primary record per
// patient among non-deleted rows; SetPrimary enforces it transactionally.
type PatientInsurance struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	PlanID       uuid.UUID  `db:"plan_id" json:"plan_id"`
	PolicyNumber *string    `db:"policy_number" json:"policy_number,omitempty"`
	IsPrimary    bool       `db:"is_primary" json:"is_primary"`
	ValidFrom    *time.Time `db:"valid_from" json:"valid_from,omitempty"`
	ValidTo      *time.Time `db:"valid_to" json:"valid_to,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	CreatedBy    uuid.UUID  `db:"created_by" json:"created_by"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
	UpdatedBy    *uuid.UUID `db:"updated_by" json:"updated_by,omitempty"`
	IsDeleted    bool       `db:"is_deleted" json:"is_deleted"`
	DeletedAt    *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	DeletedBy    *uuid.UUID `db:"deleted_by" json:"deleted_by,omitempty"`
}

// ValidOn reports whether the record covers the given date.
func (pi *PatientInsurance) ValidOn(day time.Time) bool {
	if pi.ValidFrom != nil && day.Before(*pi.ValidFrom) {
		return false
	}
	if pi.ValidTo != nil && day.After(*pi.ValidTo) {
		return false
	}
	return true
}

// CalculationResult is the derived outcome of a coverage calculation. It is
// returned to the caller, not persisted here.
type CalculationResult struct {
	ServiceAmount      decimal.Decimal `json:"service_amount"`
	DeductibleApplied  decimal.Decimal `json:"deductible_applied"`
	CoverableAmount    decimal.Decimal `json:"coverable_amount"`
	PrimaryShare       decimal.Decimal `json:"primary_share"`
	SupplementaryShare decimal.Decimal `json:"supplementary_share"`
	InsuranceShare     decimal.Decimal `json:"insurance_share"`
	PatientShare       decimal.Decimal `json:"patient_share"`
	ComputedAt         time.Time       `json:"computed_at"`
}
