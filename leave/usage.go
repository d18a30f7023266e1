package leave

import (
	"context"
	"fmt"
)

// =============================================================================
// USAGE AGGREGATOR
// =============================================================================

// UsedDays sums the approved days per balance-eligible type for one
// employee, restricted to [effectiveStart, min(window.End, endOfMonth(asOf))].
// The upper bound is clamped to the reference month's end so that usage and
// entitlement are measured over the same stretch of the window.
func UsedDays(ctx context.Context, records RecordStore, employeeID string, w Window, effectiveStart, asOf Date) (PerType, error) {
	upper := MinDate(w.End, asOf.EndOfMonth())

	var out PerType
	if upper.Before(effectiveStart) {
		return out, nil
	}

	for _, t := range BalanceTypes {
		sum, err := records.SumApprovedDays(ctx, employeeID, t, effectiveStart, upper)
		if err != nil {
			return PerType{}, fmt.Errorf("sum approved %s days: %w", t, err)
		}
		out.Set(t, sum)
	}
	return out, nil
}
