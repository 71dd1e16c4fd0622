package insurance

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func pct(v int64) Coverage { return Coverage{Percent: dec(v)} }

func assertEq(t *testing.T, label string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", label, got, want)
	}
}

func TestCalculate_PrimaryOnly(t *testing.T) {
	primary := pct(70)
	res, err := Calculate(dec(1_000_000), &primary, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEq(t, "primary share", res.PrimaryShare, dec(700_000))
	assertEq(t, "patient share", res.PatientShare, dec(300_000))
	assertEq(t, "insurance share", res.InsuranceShare, dec(700_000))
}

func TestCalculate_WithSupplementary(t *testing.T) {
	primary := pct(70)
	supp := pct(50)
	res, err := Calculate(dec(1_000_000), &primary, &supp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEq(t, "primary share", res.PrimaryShare, dec(700_000))
	assertEq(t, "supplementary share", res.SupplementaryShare, dec(150_000))
	assertEq(t, "patient share", res.PatientShare, dec(150_000))
}

func TestCalculate_NoInsurance(t *testing.T) {
	res, err := Calculate(dec(250_000), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEq(t, "patient share", res.PatientShare, dec(250_000))
	assertEq(t, "insurance share", res.InsuranceShare, decimal.Zero)
}

func TestCalculate_DeductibleAppliedFirst(t *testing.T) {
	primary := Coverage{Percent: dec(80), Deductible: dec(200_000)}
	res, err := Calculate(dec(1_000_000), &primary, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEq(t, "deductible applied", res.DeductibleApplied, dec(200_000))
	assertEq(t, "coverable amount", res.CoverableAmount, dec(800_000))
	assertEq(t, "primary share", res.PrimaryShare, dec(640_000))
	assertEq(t, "patient share", res.PatientShare, dec(360_000))
}

func TestCalculate_DeductibleExceedsAmount(t *testing.T) {
	primary := Coverage{Percent: dec(90), Deductible: dec(500_000)}
	res, err := Calculate(dec(300_000), &primary, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEq(t, "coverable amount", res.CoverableAmount, decimal.Zero)
	assertEq(t, "primary share", res.PrimaryShare, decimal.Zero)
	assertEq(t, "patient share", res.PatientShare, dec(300_000))
}

func TestCalculate_OverrideCapsPrimaryShare(t *testing.T) {
	cap := dec(500_000)
	primary := Coverage{Percent: dec(90), Override: &cap}
	res, err := Calculate(dec(1_000_000), &primary, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEq(t, "primary share", res.PrimaryShare, dec(500_000))
	assertEq(t, "patient share", res.PatientShare, dec(500_000))
}

func TestCalculate_FullCoverageLeavesZeroPatientShare(t *testing.T) {
	primary := pct(100)
	supp := pct(100)
	res, err := Calculate(dec(1_000_000), &primary, &supp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEq(t, "primary share", res.PrimaryShare, dec(1_000_000))
	assertEq(t, "supplementary share", res.SupplementaryShare, decimal.Zero)
	assertEq(t, "patient share", res.PatientShare, decimal.Zero)
	if res.PatientShare.IsNegative() {
		t.Error("patient share must never be negative")
	}
}

func TestCalculate_Conservation(t *testing.T) {
	cap := dec(400_000)
	cases := []struct {
		name   string
		amount decimal.Decimal
		prim   *Coverage
		supp   *Coverage
	}{
		{"plain", dec(1_000_000), &Coverage{Percent: dec(70)}, nil},
		{"with supp", dec(1_000_000), &Coverage{Percent: dec(70)}, &Coverage{Percent: dec(50)}},
		{"deductible", dec(750_000), &Coverage{Percent: dec(65), Deductible: dec(100_000)}, nil},
		{"override", dec(2_000_000), &Coverage{Percent: dec(95), Override: &cap}, &Coverage{Percent: dec(30)}},
		{"odd amount", dec(333_333), &Coverage{Percent: dec(33)}, &Coverage{Percent: dec(17)}},
		{"uninsured", dec(42_000), nil, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Calculate(tc.amount, tc.prim, tc.supp)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			sum := res.PrimaryShare.Add(res.SupplementaryShare).Add(res.PatientShare)
			assertEq(t, "share sum", sum, tc.amount)
			if res.PatientShare.IsNegative() || res.PrimaryShare.IsNegative() || res.SupplementaryShare.IsNegative() {
				t.Error("no share may be negative")
			}
		})
	}
}

func TestCalculate_RepeatedCallsAgree(t *testing.T) {
	cap := dec(400_000)
	primary := Coverage{Percent: dec(70), Deductible: dec(100_000), Override: &cap}
	supp := pct(50)

	first, err := Calculate(dec(1_000_000), &primary, &supp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Calculate(dec(1_000_000), &primary, &supp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertEq(t, "service amount", second.ServiceAmount, first.ServiceAmount)
	assertEq(t, "deductible applied", second.DeductibleApplied, first.DeductibleApplied)
	assertEq(t, "coverable amount", second.CoverableAmount, first.CoverableAmount)
	assertEq(t, "primary share", second.PrimaryShare, first.PrimaryShare)
	assertEq(t, "supplementary share", second.SupplementaryShare, first.SupplementaryShare)
	assertEq(t, "insurance share", second.InsuranceShare, first.InsuranceShare)
	assertEq(t, "patient share", second.PatientShare, first.PatientShare)
}

func TestCalculate_RejectsBadInput(t *testing.T) {
	primary := pct(70)
	if _, err := Calculate(decimal.Zero, &primary, nil); err == nil {
		t.Error("expected error for zero amount")
	}
	if _, err := Calculate(dec(-100), &primary, nil); err == nil {
		t.Error("expected error for negative amount")
	}
	over := pct(120)
	if _, err := Calculate(dec(1_000), &over, nil); err == nil {
		t.Error("expected error for percent over 100")
	}
	neg := Coverage{Percent: dec(50), Deductible: dec(-1)}
	if _, err := Calculate(dec(1_000), &neg, nil); err == nil {
		t.Error("expected error for negative deductible")
	}
	supp := pct(50)
	if _, err := Calculate(dec(1_000), nil, &supp); err == nil {
		t.Error("expected error for supplementary without primary")
	}
}
