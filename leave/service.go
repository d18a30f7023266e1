/*
service.go - The leave engine service and the balance query paths

PURPOSE:
  Service composes the pure policy functions (window, tenure, accrual) with
  the two collaborators (Directory, RecordStore) and owns the per-key locks
  that make the check-then-act sequences atomic.

LOCKING:
  Balance checks and quota checks are read-then-decide against shared
  storage with no transactional isolation. Two concurrent creations for the
  same employee/type could both observe the same stale "used" total and
  double-spend the balance; the same holds for two approvals against one
  monthly bucket. Writes that charge a balance are therefore serialized per
  (employeeID, leaveType, windowYear) - the month bucket folds into the
  same key family, so creation and approval for one employee/type/year
  contend on one mutex.

SEE ALSO:
  - request.go: Creation path (validation)
  - approve.go: Approval path (quota guard)
*/
package leave

import (
	"context"
	"fmt"
	"sync"
)

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	directory Directory
	records   RecordStore
	rules     Rules
	locks     keyedLocks

	// now is injectable for tests; defaults to Today.
	now func() Date
}

func NewService(directory Directory, records RecordStore, rules Rules) *Service {
	return &Service{
		directory: directory,
		records:   records,
		rules:     rules,
		locks:     keyedLocks{locks: make(map[string]*sync.Mutex)},
		now:       Today,
	}
}

// WithClock overrides the service clock. Intended for tests.
func (s *Service) WithClock(now func() Date) *Service {
	s.now = now
	return s
}

// Rules returns the policy constants the service runs with.
func (s *Service) Rules() Rules { return s.rules }

// =============================================================================
// BALANCE SERVICE
// =============================================================================

// Balance computes the entitlement, usage and remaining balance for one
// employee as of the given date (zero date = now).
func (s *Service) Balance(ctx context.Context, employeeID string, asOf Date) (*Balance, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}

	emp, err := s.directory.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return s.balanceFor(ctx, emp, asOf)
}

func (s *Service) balanceFor(ctx context.Context, emp *Employee, asOf Date) (*Balance, error) {
	var hire Date
	if emp.HireDate != nil {
		hire = *emp.HireDate
	}

	accrual, w, err := s.rules.AccrualFor(hire, asOf)
	if err != nil {
		return nil, err
	}

	used, err := UsedDays(ctx, s.records, emp.ID, w, w.EffectiveStart(hire), asOf)
	if err != nil {
		return nil, err
	}

	return &Balance{
		Window:    w,
		Accrual:   accrual,
		Used:      used,
		Remaining: RemainingOf(accrual, used),
	}, nil
}

// EmployeeBalance pairs a directory record with its computed balance for
// the privileged dashboard view.
type EmployeeBalance struct {
	Employee Employee `json:"employee"`
	Balance  Balance  `json:"balance"`
}

// Balances computes balances for a role/department-filtered employee set.
func (s *Service) Balances(ctx context.Context, filter EmployeeFilter, asOf Date) ([]EmployeeBalance, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}

	employees, err := s.directory.ListEmployees(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}

	out := make([]EmployeeBalance, 0, len(employees))
	for i := range employees {
		bal, err := s.balanceFor(ctx, &employees[i], asOf)
		if err != nil {
			return nil, err
		}
		out = append(out, EmployeeBalance{Employee: employees[i], Balance: *bal})
	}
	return out, nil
}

// =============================================================================
// READ PATHS
// =============================================================================

// RequestsFor returns an employee's own requests, newest first.
func (s *Service) RequestsFor(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	return s.records.ListByEmployee(ctx, employeeID)
}

// AllRequests returns every request, newest first. Role gating happens at
// the HTTP boundary.
func (s *Service) AllRequests(ctx context.Context) ([]LeaveRequest, error) {
	return s.records.ListAll(ctx)
}

// =============================================================================
// KEYED LOCKS
// =============================================================================

// keyedLocks hands out one mutex per balance key. Entries are never evicted;
// the key space is bounded by employees x types x window years.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedLocks) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	return m
}

func balanceKey(employeeID string, t Type, windowYear int) string {
	return fmt.Sprintf("%s/%s/%d", employeeID, t, windowYear)
}
