/*
request.go - Creation-path validation

PURPOSE:
  Turns a normalized CreateInput into a persisted pending LeaveRequest, or
  rejects it with a structured error.

STEPS:
  1. Derive TotalDays from the duration type and date range
  2. Non-balance types (unpaid, maternity, ...) skip straight to persist -
     no ceiling applies to them
  3. Balance types: resolve the employee's hire date, the accrual window
     and the effective start
  4. Sick/earned additionally require the tenure milestone; a missing hire
     date is a hard block, not a silent pass
  5. Compare requested days against remaining = max(0, accrual - used);
     a shortage carries accrued/used/remaining/requested for the client
  6. Persist with status pending

  Steps 5-6 run under the per-(employee, type, window) lock so two
  concurrent submissions cannot both pass the check against the same stale
  usage total.

SEE ALSO:
  - payload.go: Produces CreateInput
  - approve.go: The symmetric approval-side checks
*/
package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Create validates a leave request for the calling employee and persists it
// with status pending.
func (s *Service) Create(ctx context.Context, caller Identity, in *CreateInput) (*LeaveRequest, error) {
	total, err := TotalDays(in.Duration, in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	req := &LeaveRequest{
		ID:           uuid.NewString(),
		EmployeeID:   caller.ID,
		EmployeeName: caller.Name,
		EmployeeRole: caller.Role,
		Type:         in.Type,
		Reason:       in.Reason,
		StartDate:    in.StartDate,
		EndDate:      in.EndDate,
		Duration:     in.Duration,
		TotalDays:    total,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if !in.Type.BalanceEligible() {
		if err := s.records.CreateRequest(ctx, req); err != nil {
			return nil, fmt.Errorf("persist leave request: %w", err)
		}
		return req, nil
	}

	emp, err := s.directory.GetEmployee(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	var hire Date
	if emp.HireDate != nil {
		hire = *emp.HireDate
	}

	asOf := s.now()
	w, err := ResolveWindow(asOf)
	if err != nil {
		return nil, err
	}

	if in.Type.TenureGated() {
		if hire.IsZero() {
			return nil, fmt.Errorf("%s leave: %w", in.Type, ErrMissingHireDate)
		}
		if !s.rules.Tenured(hire, asOf) {
			return nil, fmt.Errorf("%s leave before %d months of service: %w",
				in.Type, s.rules.TenureMonths, ErrNotEligible)
		}
	}

	// Serialize the balance check and insert per (employee, type, window).
	lock := s.locks.get(balanceKey(caller.ID, in.Type, w.Start.Year()))
	lock.Lock()
	defer lock.Unlock()

	effective := w.EffectiveStart(hire)
	months := MonthsElapsed(w, effective, asOf)
	accrual := s.rules.ComputeAccrual(months, s.rules.Tenured(hire, asOf))

	used, err := UsedDays(ctx, s.records, caller.ID, w, effective, asOf)
	if err != nil {
		return nil, err
	}

	remaining := RemainingOf(accrual, used)
	if total.GreaterThan(remaining.Get(in.Type)) {
		return nil, &InsufficientBalanceError{
			Type:      in.Type,
			Accrued:   accrual.Get(in.Type),
			Used:      used.Get(in.Type),
			Remaining: remaining.Get(in.Type),
			Requested: total,
		}
	}

	if err := s.records.CreateRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("persist leave request: %w", err)
	}
	return req, nil
}
