package leave

// =============================================================================
// WINDOW - The fiscal accrual year
// =============================================================================

// Window is the 12-month period over which accrual and usage are measured
// and reset. Balance is always computed for a window, never at a bare point
// in time.
type Window struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Contains returns true if the date is within the window [Start, End].
func (w Window) Contains(d Date) bool {
	return d.AfterOrEqual(w.Start) && d.BeforeOrEqual(w.End)
}

func (w Window) String() string {
	return "[" + w.Start.String() + ", " + w.End.String() + "]"
}

// ResolveWindow returns the accrual window containing the reference date.
//
// The policy in force uses the plain calendar year: January 1 through
// December 31 of the reference date's year. An earlier June-through-March
// fiscal window existed historically; it must not be reintroduced piecemeal,
// because mixing window definitions between entitlement and usage silently
// corrupts balances. One definition, applied everywhere.
func ResolveWindow(ref Date) (Window, error) {
	if ref.IsZero() {
		return Window{}, ErrInvalidDate
	}
	return Window{
		Start: StartOfYear(ref.Year()),
		End:   EndOfYear(ref.Year()),
	}, nil
}

// EffectiveStart returns the date accrual begins within the window: the
// later of the window's first day and the first day of the hire month.
// Months before employment began never earn accrual.
func (w Window) EffectiveStart(hire Date) Date {
	if hire.IsZero() {
		return w.Start
	}
	return MaxDate(w.Start, hire.StartOfMonth())
}
