package leave_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbushr/leave-engine/leave"
	"github.com/nimbushr/leave-engine/store/memory"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

func newTestService(t *testing.T, today leave.Date) (*leave.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := leave.NewService(store, store, leave.DefaultRules()).
		WithClock(func() leave.Date { return today })
	return svc, store
}

func seedEmployee(t *testing.T, store *memory.Store, id, role string, hire leave.Date) leave.Identity {
	t.Helper()
	emp := leave.Employee{ID: id, Name: "Employee " + id, Role: role}
	if !hire.IsZero() {
		emp.HireDate = &hire
	}
	require.NoError(t, store.SaveEmployee(context.Background(), emp))
	return leave.Identity{ID: emp.ID, Name: emp.Name, Role: emp.Role}
}

func casualInput(start, end leave.Date) *leave.CreateInput {
	return &leave.CreateInput{
		Type:      leave.TypeCasual,
		Reason:    "personal",
		Duration:  leave.DurationMultipleDays,
		StartDate: start,
		EndDate:   end,
	}
}

// =============================================================================
// CREATION PATH
// =============================================================================

func TestCreate_WithinBalance_Pending(t *testing.T) {
	// GIVEN: hired 2025-01-01, today 2025-08-01 => casual remaining 5.25
	svc, store := newTestService(t, date(2025, time.August, 1))
	caller := seedEmployee(t, store, "e1", "employee", date(2025, time.January, 1))

	// WHEN: requesting 2 casual days
	req, err := svc.Create(context.Background(), caller,
		casualInput(date(2025, time.August, 4), date(2025, time.August, 5)))

	// THEN: request persists as pending with the derived total
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, leave.StatusPending, req.Status)
	assert.True(t, req.TotalDays.Equal(days(2)), "totalDays: got %s", req.TotalDays)
	assert.Equal(t, caller.Name, req.EmployeeName)

	stored, err := store.GetRequest(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, stored.Status)
}

func TestCreate_ExceedsRemaining_Rejected(t *testing.T) {
	// GIVEN: hired 2025-01-01, today 2025-04-01 => casual accrued 2.25,
	//        zero used
	svc, store := newTestService(t, date(2025, time.April, 1))
	caller := seedEmployee(t, store, "e1", "employee", date(2025, time.January, 1))

	// WHEN: requesting 3 casual days
	_, err := svc.Create(context.Background(), caller,
		casualInput(date(2025, time.April, 7), date(2025, time.April, 9)))

	// THEN: rejection carries the full balance arithmetic
	var bal *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &bal)
	assert.Equal(t, leave.TypeCasual, bal.Type)
	assert.True(t, bal.Accrued.Equal(days(2.25)), "accrued: got %s", bal.Accrued)
	assert.True(t, bal.Used.IsZero())
	assert.True(t, bal.Remaining.Equal(days(2.25)), "remaining: got %s", bal.Remaining)
	assert.True(t, bal.Requested.Equal(days(3)), "requested: got %s", bal.Requested)
}

func TestCreate_PendingDoesNotReserve(t *testing.T) {
	// Only approved requests consume balance: a large pending request does
	// not block a later one that still fits the accrual.
	svc, store := newTestService(t, date(2025, time.April, 1))
	caller := seedEmployee(t, store, "e1", "employee", date(2025, time.January, 1))

	_, err := svc.Create(context.Background(), caller,
		casualInput(date(2025, time.April, 7), date(2025, time.April, 8)))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), caller,
		casualInput(date(2025, time.April, 14), date(2025, time.April, 15)))
	assert.NoError(t, err)
}

func TestCreate_ApprovedUsageCountsAgainstBalance(t *testing.T) {
	// GIVEN: 2 of the 2.25 accrued casual days already approved
	svc, store := newTestService(t, date(2025, time.April, 1))
	caller := seedEmployee(t, store, "e1", "employee", date(2025, time.January, 1))

	require.NoError(t, store.CreateRequest(context.Background(), &leave.LeaveRequest{
		ID:         "feb-break",
		EmployeeID: caller.ID,
		Type:       leave.TypeCasual,
		StartDate:  date(2025, time.February, 3),
		EndDate:    date(2025, time.February, 4),
		Duration:   leave.DurationMultipleDays,
		TotalDays:  days(2),
		Status:     leave.StatusApproved,
	}))

	// WHEN: requesting 1 more full day (0.25 remaining)
	_, err := svc.Create(context.Background(), caller,
		casualInput(date(2025, time.April, 7), date(2025, time.April, 7)))

	// THEN: the shortage reflects the approved usage
	var bal *leave.InsufficientBalanceError
	require.ErrorAs(t, err, &bal)
	assert.True(t, bal.Used.Equal(days(2)), "used: got %s", bal.Used)
	assert.True(t, bal.Remaining.Equal(days(0.25)), "remaining: got %s", bal.Remaining)
}

func TestCreate_TenureGatedType_BeforeMilestone(t *testing.T) {
	svc, store := newTestService(t, date(2025, time.April, 1))
	caller := seedEmployee(t, store, "e1", "employee", date(2025, time.January, 1))

	in := casualInput(date(2025, time.April, 7), date(2025, time.April, 7))
	in.Type = leave.TypeSick

	_, err := svc.Create(context.Background(), caller, in)
	assert.ErrorIs(t, err, leave.ErrNotEligible)
}

func TestCreate_TenureGatedType_NoHireDate(t *testing.T) {
	// A missing hire date hard-blocks tenure-gated types instead of
	// defaulting to eligible or ineligible silently.
	svc, store := newTestService(t, date(2025, time.August, 1))
	caller := seedEmployee(t, store, "e1", "employee", leave.Date{})

	in := casualInput(date(2025, time.August, 4), date(2025, time.August, 4))
	in.Type = leave.TypeEarned

	_, err := svc.Create(context.Background(), caller, in)
	assert.ErrorIs(t, err, leave.ErrMissingHireDate)
}

func TestCreate_CasualWithoutHireDate_Allowed(t *testing.T) {
	// Casual is not tenure gated; with no hire date accrual runs from the
	// window start.
	svc, store := newTestService(t, date(2025, time.April, 1))
	caller := seedEmployee(t, store, "e1", "employee", leave.Date{})

	req, err := svc.Create(context.Background(), caller,
		casualInput(date(2025, time.April, 7), date(2025, time.April, 8)))
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, req.Status)
}

func TestCreate_NonBalanceType_SkipsAllChecks(t *testing.T) {
	// GIVEN: an employee with no hire date and no conceivable balance
	svc, store := newTestService(t, date(2025, time.February, 1))
	caller := seedEmployee(t, store, "e1", "employee", leave.Date{})

	// WHEN: requesting a long unpaid stretch
	req, err := svc.Create(context.Background(), caller, &leave.CreateInput{
		Type:      leave.TypeUnpaid,
		Reason:    "relocation",
		Duration:  leave.DurationMultipleDays,
		StartDate: date(2025, time.March, 3),
		EndDate:   date(2025, time.March, 21),
	})

	// THEN: no ceiling applies
	require.NoError(t, err)
	assert.Equal(t, leave.StatusPending, req.Status)
	assert.True(t, req.TotalDays.Equal(days(19)), "totalDays: got %s", req.TotalDays)
}

func TestCreate_UnknownEmployee(t *testing.T) {
	svc, _ := newTestService(t, date(2025, time.April, 1))

	_, err := svc.Create(context.Background(), leave.Identity{ID: "ghost"},
		casualInput(date(2025, time.April, 7), date(2025, time.April, 7)))
	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
}

func TestCreate_InvalidRange(t *testing.T) {
	svc, store := newTestService(t, date(2025, time.April, 1))
	caller := seedEmployee(t, store, "e1", "employee", date(2025, time.January, 1))

	_, err := svc.Create(context.Background(), caller,
		casualInput(date(2025, time.April, 9), date(2025, time.April, 7)))
	assert.ErrorIs(t, err, leave.ErrInvalidDateRange)
}

// =============================================================================
// BALANCE QUERIES
// =============================================================================

func TestBalance_ScenarioArithmetic(t *testing.T) {
	// GIVEN: hired 2025-01-01, one approved half-day casual in March
	svc, store := newTestService(t, date(2025, time.August, 1))
	caller := seedEmployee(t, store, "e1", "employee", date(2025, time.January, 1))
	approver := seedEmployee(t, store, "m1", "manager", date(2023, time.January, 1))

	req, err := svc.Create(context.Background(), caller, &leave.CreateInput{
		Type:      leave.TypeCasual,
		Reason:    "appointment",
		Duration:  leave.DurationHalfDay,
		StartDate: date(2025, time.March, 10),
		EndDate:   date(2025, time.March, 10),
	})
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), approver, req.ID)
	require.NoError(t, err)

	// WHEN: reading the balance as of 2025-08-01
	bal, err := svc.Balance(context.Background(), caller.ID, leave.Date{})
	require.NoError(t, err)

	// THEN: accrual 5.25/5.25/7.5, used 0.5 casual, remaining 4.75
	assert.True(t, bal.Accrual.Casual.Equal(days(5.25)), "accrued casual: %s", bal.Accrual.Casual)
	assert.True(t, bal.Accrual.Sick.Equal(days(5.25)), "accrued sick: %s", bal.Accrual.Sick)
	assert.True(t, bal.Accrual.Earned.Equal(days(7.5)), "accrued earned: %s", bal.Accrual.Earned)
	assert.True(t, bal.Used.Casual.Equal(days(0.5)), "used casual: %s", bal.Used.Casual)
	assert.True(t, bal.Remaining.Casual.Equal(days(4.75)), "remaining casual: %s", bal.Remaining.Casual)
	assert.True(t, bal.Remaining.Earned.Equal(days(7.5)), "remaining earned: %s", bal.Remaining.Earned)
}

func TestBalance_NeverNegative(t *testing.T) {
	// Usage seeded above the accrual (policy drift, manual import) clamps
	// remaining at zero rather than going negative.
	svc, store := newTestService(t, date(2025, time.April, 1))
	caller := seedEmployee(t, store, "e1", "employee", date(2025, time.January, 1))

	require.NoError(t, store.CreateRequest(context.Background(), &leave.LeaveRequest{
		ID:         "imported",
		EmployeeID: caller.ID,
		Type:       leave.TypeCasual,
		StartDate:  date(2025, time.February, 3),
		EndDate:    date(2025, time.February, 7),
		Duration:   leave.DurationMultipleDays,
		TotalDays:  days(5),
		Status:     leave.StatusApproved,
	}))

	bal, err := svc.Balance(context.Background(), caller.ID, leave.Date{})
	require.NoError(t, err)

	assert.True(t, bal.Used.Casual.Equal(days(5)))
	assert.True(t, bal.Remaining.Casual.IsZero(),
		"remaining must clamp at zero, got %s", bal.Remaining.Casual)
}

func TestBalance_UsageOutsideWindowIgnored(t *testing.T) {
	// Approved leave from the previous window never bleeds into this one.
	svc, store := newTestService(t, date(2025, time.April, 1))
	caller := seedEmployee(t, store, "e1", "employee", date(2024, time.January, 1))

	require.NoError(t, store.CreateRequest(context.Background(), &leave.LeaveRequest{
		ID:         "last-year",
		EmployeeID: caller.ID,
		Type:       leave.TypeCasual,
		StartDate:  date(2024, time.November, 4),
		EndDate:    date(2024, time.November, 5),
		Duration:   leave.DurationMultipleDays,
		TotalDays:  days(2),
		Status:     leave.StatusApproved,
	}))

	bal, err := svc.Balance(context.Background(), caller.ID, leave.Date{})
	require.NoError(t, err)
	assert.True(t, bal.Used.Casual.IsZero(), "used: got %s", bal.Used.Casual)
}

func TestBalance_FutureUsageBeyondAsOfMonthIgnored(t *testing.T) {
	// Usage counts through the end of the as-of month; leave booked deeper
	// into the future is not charged yet.
	svc, store := newTestService(t, date(2025, time.April, 1))
	caller := seedEmployee(t, store, "e1", "employee", date(2025, time.January, 1))

	require.NoError(t, store.CreateRequest(context.Background(), &leave.LeaveRequest{
		ID:         "december-trip",
		EmployeeID: caller.ID,
		Type:       leave.TypeCasual,
		StartDate:  date(2025, time.December, 22),
		EndDate:    date(2025, time.December, 23),
		Duration:   leave.DurationMultipleDays,
		TotalDays:  days(2),
		Status:     leave.StatusApproved,
	}))

	bal, err := svc.Balance(context.Background(), caller.ID, leave.Date{})
	require.NoError(t, err)
	assert.True(t, bal.Used.Casual.IsZero(), "used: got %s", bal.Used.Casual)
}

func TestBalance_UnknownEmployee(t *testing.T) {
	svc, _ := newTestService(t, date(2025, time.April, 1))
	_, err := svc.Balance(context.Background(), "ghost", leave.Date{})
	assert.ErrorIs(t, err, leave.ErrEmployeeNotFound)
}

func TestBalances_FilterByRole(t *testing.T) {
	svc, store := newTestService(t, date(2025, time.August, 1))
	seedEmployee(t, store, "e1", "employee", date(2025, time.January, 1))
	seedEmployee(t, store, "e2", "employee", date(2025, time.March, 15))
	seedEmployee(t, store, "m1", "manager", date(2023, time.January, 1))

	all, err := svc.Balances(context.Background(), leave.EmployeeFilter{}, leave.Date{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	managers, err := svc.Balances(context.Background(),
		leave.EmployeeFilter{Role: "manager"}, leave.Date{})
	require.NoError(t, err)
	require.Len(t, managers, 1)
	assert.Equal(t, "m1", managers[0].Employee.ID)
}

func TestRequestsFor_NewestFirst(t *testing.T) {
	svc, store := newTestService(t, date(2025, time.August, 1))
	caller := seedEmployee(t, store, "e1", "employee", date(2025, time.January, 1))
	other := seedEmployee(t, store, "e2", "employee", date(2025, time.January, 1))

	older := &leave.LeaveRequest{
		ID: "r-old", EmployeeID: caller.ID, Type: leave.TypeCasual,
		StartDate: date(2025, time.February, 3), EndDate: date(2025, time.February, 3),
		Duration: leave.DurationFullDay, TotalDays: days(1),
		Status: leave.StatusPending, CreatedAt: time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
	}
	newer := &leave.LeaveRequest{
		ID: "r-new", EmployeeID: caller.ID, Type: leave.TypeCasual,
		StartDate: date(2025, time.March, 3), EndDate: date(2025, time.March, 3),
		Duration: leave.DurationFullDay, TotalDays: days(1),
		Status: leave.StatusPending, CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	foreign := &leave.LeaveRequest{
		ID: "r-other", EmployeeID: other.ID, Type: leave.TypeCasual,
		StartDate: date(2025, time.March, 3), EndDate: date(2025, time.March, 3),
		Duration: leave.DurationFullDay, TotalDays: days(1),
		Status: leave.StatusPending, CreatedAt: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	for _, r := range []*leave.LeaveRequest{older, newer, foreign} {
		require.NoError(t, store.CreateRequest(context.Background(), r))
	}

	mine, err := svc.RequestsFor(context.Background(), caller.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "r-new", mine[0].ID)
	assert.Equal(t, "r-old", mine[1].ID)
}
