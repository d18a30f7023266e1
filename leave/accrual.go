/*
accrual.go - Entitlement calculation and tenure evaluation

PURPOSE:
  Computes how many days of each balance-eligible leave type an employee
  has earned as of a reference date.

ACCRUAL RULES (single policy, externalized in Rules):
  casual: monthsElapsed * rate, capped - for every employee
  sick:   monthsElapsed * rate, capped - zero until the tenure gate passes
  earned: flat lump sum              - granted the instant tenure flips,
                                       independent of elapsed months

  monthsElapsed counts whole calendar months from the effective start
  through the month containing the reference date, clamped to the window.
  Within one window the resulting curve is monotonically non-decreasing;
  at window rollover it resets.

TENURE GATE:
  Sick and earned leave require service of TenureMonths (default 6) from
  the hire date. The gate is evaluated independently at creation and again
  at approval - an employee can cross it between the two.

EXAMPLE:
  Hired 2025-01-01, asOf 2025-04-01, default rules:
    monthsElapsed = 3, not tenured
    casual = 2.25, sick = 0, earned = 0
  Same employee, asOf 2025-08-01:
    monthsElapsed = 7, tenured (gate passed 2025-07-01)
    casual = 5.25, sick = 5.25, earned = 7.5
*/
package leave

import "github.com/shopspring/decimal"

// =============================================================================
// RULES - Externalized policy constants
// =============================================================================

// Rules carries the accrual policy constants. They are configuration, not
// code: a policy change must not require an edit here.
type Rules struct {
	AccrualRatePerMonth decimal.Decimal // days earned per whole month
	MonthlyCap          decimal.Decimal // ceiling on monthly-accrued types
	EarnedLumpSum       decimal.Decimal // flat earned-leave grant at tenure
	TenureMonths        int             // service months gating sick/earned
	MonthlyQuota        decimal.Decimal // approved days per type per month
}

// DefaultRules returns the policy constants in force.
func DefaultRules() Rules {
	return Rules{
		AccrualRatePerMonth: decimal.NewFromFloat(0.75),
		MonthlyCap:          decimal.NewFromInt(9),
		EarnedLumpSum:       decimal.NewFromFloat(7.5),
		TenureMonths:        6,
		MonthlyQuota:        decimal.NewFromInt(1),
	}
}

// =============================================================================
// TENURE EVALUATOR
// =============================================================================

// Tenured reports whether the employee has reached the service milestone as
// of the reference date. Callers on tenure-gated paths must resolve a
// missing hire date to ErrMissingHireDate before getting here.
func (r Rules) Tenured(hire, ref Date) bool {
	if hire.IsZero() {
		return false
	}
	return hire.AddMonths(r.TenureMonths).BeforeOrEqual(ref)
}

// =============================================================================
// ACCRUAL CALCULATOR
// =============================================================================

// MonthsElapsed counts the whole calendar months elapsed from the effective
// start to the reference date, clamped to the window. A reference date
// before the window (or an effective start past its end) yields zero.
func MonthsElapsed(w Window, effectiveStart, ref Date) int {
	if ref.Before(w.Start) || effectiveStart.After(w.End) {
		return 0
	}
	ref = MinDate(ref, w.End)
	effectiveStart = MaxDate(effectiveStart, w.Start)

	n := (ref.Year()-effectiveStart.Year())*12 + int(ref.Month()) - int(effectiveStart.Month())
	if n < 0 {
		return 0
	}
	return n
}

// ComputeAccrual returns the entitled days per balance-eligible type for
// the given elapsed months and tenure state.
func (r Rules) ComputeAccrual(monthsElapsed int, tenured bool) PerType {
	months := decimal.NewFromInt(int64(monthsElapsed))
	accrued := months.Mul(r.AccrualRatePerMonth)
	if accrued.GreaterThan(r.MonthlyCap) {
		accrued = r.MonthlyCap
	}

	out := PerType{Casual: accrued, Sick: decimal.Zero, Earned: decimal.Zero}
	if tenured {
		out.Sick = accrued
		out.Earned = r.EarnedLumpSum
	}
	return out
}

// AccrualFor composes window resolution, tenure and month counting into the
// entitlement for one employee as of a reference date.
func (r Rules) AccrualFor(hire Date, asOf Date) (PerType, Window, error) {
	w, err := ResolveWindow(asOf)
	if err != nil {
		return PerType{}, Window{}, err
	}
	effective := w.EffectiveStart(hire)
	months := MonthsElapsed(w, effective, asOf)
	return r.ComputeAccrual(months, r.Tenured(hire, asOf)), w, nil
}
