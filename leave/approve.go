/*
approve.go - Approval-path quota enforcement

PURPOSE:
  Guards the pending -> approved transition. Approval is where days are
  actually charged, so two rules are re-checked here even though creation
  already checked them once:

  1. Tenure: evaluated against the *request's* start date, not "now".
     An approver working through a backlog must not approve sick leave
     that predates the employee's tenure milestone - and conversely a
     request created ineligible may have become approvable.
  2. Monthly bucket quota: at most MonthlyQuota approved days per
     employee, per leave type, per calendar month. The bucket is the
     month containing the request's start date.

  The quota read and the status transition run under the same per-key
  lock the creation path uses, and the transition itself is conditional
  on the row still being pending - a concurrent decision surfaces as
  ErrConcurrentModification, never as a double approval.

  Rejection is unconditional for the moderator roles: no balance or
  quota re-check, the days were never charged.
*/
package leave

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Approve transitions a pending request to approved, enforcing the tenure
// gate and the monthly bucket quota for balance-eligible types.
func (s *Service) Approve(ctx context.Context, approver Identity, requestID string) (*LeaveRequest, error) {
	if !CanModerate(approver.Role) {
		return nil, fmt.Errorf("role %q cannot approve: %w", approver.Role, ErrForbidden)
	}

	req, err := s.records.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if !req.Type.BalanceEligible() {
		return s.records.TransitionStatus(ctx, requestID, StatusApproved, "")
	}

	monthStart := req.StartDate.StartOfMonth()
	monthEnd := req.StartDate.EndOfMonth()

	if req.Type.TenureGated() {
		emp, err := s.directory.GetEmployee(ctx, req.EmployeeID)
		if err != nil {
			return nil, err
		}
		if emp.HireDate == nil {
			return nil, fmt.Errorf("%s leave: %w", req.Type, ErrMissingHireDate)
		}
		// Reference point is the request's own start date: tenure state at
		// approval time is irrelevant to leave taken in an earlier month.
		if !s.rules.Tenured(*emp.HireDate, req.StartDate) {
			return nil, fmt.Errorf("%s leave starting %s before %d months of service: %w",
				req.Type, req.StartDate, s.rules.TenureMonths, ErrNotEligible)
		}
	}

	lock := s.locks.get(balanceKey(req.EmployeeID, req.Type, req.StartDate.Year()))
	lock.Lock()
	defer lock.Unlock()

	approved, err := s.records.SumApprovedDays(ctx, req.EmployeeID, req.Type, monthStart, monthEnd)
	if err != nil {
		return nil, fmt.Errorf("sum approved days for quota: %w", err)
	}

	if approved.Add(req.TotalDays).GreaterThan(s.rules.MonthlyQuota) {
		remaining := s.rules.MonthlyQuota.Sub(approved)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		return nil, &QuotaExceededError{
			Type:      req.Type,
			Month:     monthStart,
			Quota:     s.rules.MonthlyQuota,
			Used:      approved,
			Remaining: remaining,
			Requested: req.TotalDays,
		}
	}

	return s.records.TransitionStatus(ctx, requestID, StatusApproved, "")
}

// Reject transitions a pending request to rejected. No balance or quota
// re-check applies; the optional note is stored for the employee.
func (s *Service) Reject(ctx context.Context, approver Identity, requestID, note string) (*LeaveRequest, error) {
	if !CanModerate(approver.Role) {
		return nil, fmt.Errorf("role %q cannot reject: %w", approver.Role, ErrForbidden)
	}

	if _, err := s.records.GetRequest(ctx, requestID); err != nil {
		return nil, err
	}
	return s.records.TransitionStatus(ctx, requestID, StatusRejected, note)
}
