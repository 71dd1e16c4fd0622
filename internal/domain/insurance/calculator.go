package insurance

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Coverage carries the plan terms a calculation applies. Percent is in
// [0,100]; Override, when set, caps the payor share at a fixed amount.
type Coverage struct {
	Percent    decimal.Decimal
	Deductible decimal.Decimal
	Override   *decimal.Decimal
}

var hundred = decimal.NewFromInt(100)

// Calculate splits a service amount between the payor(s) and the patient.
//
// The primary plan covers its percentage of the amount remaining after the
// deductible. A supplementary plan, when present, applies its percentage to
// the patient responsibility left by the primary. Shares are clamped so the
// patient share is never negative and the conservation law
// primary + supplementary + patient == serviceAmount always holds.
//
// Pure function: no side effects, identical inputs yield identical results
// apart from ComputedAt.
func Calculate(serviceAmount decimal.Decimal, primary, supplementary *Coverage) (*CalculationResult, error) {
	if serviceAmount.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("service amount must be positive, got %s", serviceAmount)
	}
	if err := checkCoverage("primary", primary); err != nil {
		return nil, err
	}
	if err := checkCoverage("supplementary", supplementary); err != nil {
		return nil, err
	}
	if primary == nil && supplementary != nil {
		return nil, fmt.Errorf("supplementary coverage requires a primary plan")
	}

	result := &CalculationResult{
		ServiceAmount: serviceAmount,
		ComputedAt:    time.Now(),
	}

	if primary == nil {
		// No insurance: the whole charge is the patient's.
		result.PatientShare = serviceAmount
		return result, nil
	}

	// A deductible larger than the charge leaves nothing coverable.
	result.DeductibleApplied = decimal.Min(primary.Deductible, serviceAmount)
	result.CoverableAmount = serviceAmount.Sub(result.DeductibleApplied)

	primaryShare := result.CoverableAmount.Mul(primary.Percent).Div(hundred)
	if primary.Override != nil {
		primaryShare = decimal.Min(primaryShare, *primary.Override)
	}
	primaryShare = clampShare(primaryShare, serviceAmount)
	result.PrimaryShare = primaryShare

	remaining := serviceAmount.Sub(primaryShare)
	if supplementary != nil {
		suppShare := remaining.Mul(supplementary.Percent).Div(hundred)
		if supplementary.Override != nil {
			suppShare = decimal.Min(suppShare, *supplementary.Override)
		}
		result.SupplementaryShare = clampShare(suppShare, remaining)
	}

	result.InsuranceShare = result.PrimaryShare.Add(result.SupplementaryShare)
	result.PatientShare = serviceAmount.Sub(result.InsuranceShare)
	return result, nil
}

func checkCoverage(label string, c *Coverage) error {
	if c == nil {
		return nil
	}
	if c.Percent.IsNegative() || c.Percent.GreaterThan(hundred) {
		return fmt.Errorf("%s coverage percent must be between 0 and 100, got %s", label, c.Percent)
	}
	if c.Deductible.IsNegative() {
		return fmt.Errorf("%s deductible cannot be negative, got %s", label, c.Deductible)
	}
	if c.Override != nil && c.Override.IsNegative() {
		return fmt.Errorf("%s coverage override cannot be negative, got %s", label, c.Override)
	}
	return nil
}

// clampShare keeps a payor share inside [0, max] so the patient share can
// never go negative even when coverage percentages sum past 100.
func clampShare(share, max decimal.Decimal) decimal.Decimal {
	if share.IsNegative() {
		return decimal.Zero
	}
	return decimal.Min(share, max)
}
