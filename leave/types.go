/*
Package leave implements the leave accrual, eligibility and quota engine.

PURPOSE:
  This package contains the business rules that decide, for any employee at
  any point in time, how many days of each leave type they have earned, how
  many they have used, how many remain, and whether a specific request may
  be submitted or approved.

KEY CONCEPTS IN THIS FILE (types.go):
  - Date: A day-granularity point in time (all policy arithmetic is in days)
  - Type: A leave type; only casual/sick/earned carry a balance
  - LeaveRequest: The persisted request entity with its status lifecycle
  - PerType: A per-leave-type map of day quantities
  - Identity: The authenticated caller (employee or approver)

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
     (half days and 0.75/month accrual rates are exact)
  2. Purity: Window resolution, tenure and accrual are pure functions;
     all I/O goes through the Directory and RecordStore interfaces
  3. Explicitness: Balance-eligible types are an enumerated set, not a
     convention

SEE ALSO:
  - window.go:  Fiscal window resolution
  - accrual.go: Entitlement calculation
  - request.go: Creation-path validation
  - approve.go: Approval-path quota enforcement
*/
package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DATE - Day-granularity time point
// =============================================================================

// Date is a calendar day. All comparisons and arithmetic normalize to
// midnight UTC so that two timestamps on the same day compare equal.
type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now().UTC())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.normalize().Before(other.normalize()) }
func (d Date) Equal(other Date) bool         { return d.normalize().Equal(other.normalize()) }
func (d Date) After(other Date) bool         { return d.normalize().After(other.normalize()) }
func (d Date) BeforeOrEqual(other Date) bool { return d.Before(other) || d.Equal(other) }
func (d Date) AfterOrEqual(other Date) bool  { return d.After(other) || d.Equal(other) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date   { return Date{Time: d.normalize().AddDate(0, 0, n)} }
func (d Date) AddMonths(n int) Date { return Date{Time: d.normalize().AddDate(0, n, 0)} }

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }

func (d Date) String() string { return d.normalize().Format("2006-01-02") }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(`"2006-01-02"`, s)
	if err != nil {
		return err
	}
	*d = DateOf(t)
	return nil
}

// StartOfMonth returns the first day of the month containing d.
func (d Date) StartOfMonth() Date { return NewDate(d.Year(), d.Month(), 1) }

// EndOfMonth returns the last day of the month containing d.
func (d Date) EndOfMonth() Date {
	return NewDate(d.Year(), d.Month()+1, 1).AddDays(-1)
}

func StartOfYear(year int) Date { return NewDate(year, time.January, 1) }
func EndOfYear(year int) Date   { return NewDate(year, time.December, 31) }

// DaysBetween returns the number of whole days from one date to another.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// MinDate returns the earlier of two dates.
func MinDate(a, b Date) Date {
	if a.Before(b) {
		return a
	}
	return b
}

// MaxDate returns the later of two dates.
func MaxDate(a, b Date) Date {
	if a.After(b) {
		return a
	}
	return b
}

// =============================================================================
// LEAVE TYPES
// =============================================================================

type Type string

const (
	TypeSick      Type = "sick"
	TypeCasual    Type = "casual"
	TypeEarned    Type = "earned"
	TypeUnpaid    Type = "unpaid"
	TypeMaternity Type = "maternity"
	TypePaternity Type = "paternity"
	TypeCompOff   Type = "comp_off"
	TypeOther     Type = "other"
)

// BalanceTypes are the leave types subject to entitlement/usage tracking.
// Everything else is granted without a balance ceiling.
var BalanceTypes = []Type{TypeCasual, TypeSick, TypeEarned}

func (t Type) BalanceEligible() bool {
	return t == TypeCasual || t == TypeSick || t == TypeEarned
}

// TenureGated reports whether the type requires the tenure milestone
// before any entitlement exists.
func (t Type) TenureGated() bool {
	return t == TypeSick || t == TypeEarned
}

// =============================================================================
// DURATION AND STATUS
// =============================================================================

type DurationType string

const (
	DurationFullDay      DurationType = "full_day"
	DurationHalfDay      DurationType = "half_day"
	DurationMultipleDays DurationType = "multiple_days"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// =============================================================================
// LEAVE REQUEST - The persisted request entity
// =============================================================================

// LeaveRequest is created by the validation path with status pending and is
// only ever mutated by the approval/rejection paths. TotalDays is fixed at
// creation: it is the unit charged against both the creation-time balance
// check and the approval-time monthly quota.
type LeaveRequest struct {
	ID           string          `json:"id"`
	EmployeeID   string          `json:"employeeId"`
	EmployeeName string          `json:"employeeName"`
	EmployeeRole string          `json:"employeeRole"`
	Type         Type            `json:"leaveType"`
	Reason       string          `json:"reason"`
	StartDate    Date            `json:"startDate"`
	EndDate      Date            `json:"endDate"`
	Duration     DurationType    `json:"durationType"`
	TotalDays    decimal.Decimal `json:"totalDays"`
	Status       Status          `json:"status"`
	ApproverNote string          `json:"approverNote,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// =============================================================================
// EMPLOYEE - Read-only view from the directory collaborator
// =============================================================================

// Employee is the directory record this engine consumes. HireDate may be
// nil: a missing hire date is a distinct condition from a missing employee
// and hard-blocks tenure-gated paths.
type Employee struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	HireDate   *Date  `json:"joiningDate,omitempty"`
}

// Identity is the authenticated caller extracted at the HTTP boundary.
type Identity struct {
	ID   string
	Name string
	Role string
}

// ModeratorRoles may approve or reject requests.
var ModeratorRoles = []string{"admin", "manager", "hr"}

func CanModerate(role string) bool {
	for _, r := range ModeratorRoles {
		if role == r {
			return true
		}
	}
	return false
}

// =============================================================================
// PER-TYPE QUANTITIES
// =============================================================================

// PerType holds a day quantity for each balance-eligible leave type.
type PerType struct {
	Casual decimal.Decimal `json:"casual"`
	Sick   decimal.Decimal `json:"sick"`
	Earned decimal.Decimal `json:"earned"`
}

func (p PerType) Get(t Type) decimal.Decimal {
	switch t {
	case TypeCasual:
		return p.Casual
	case TypeSick:
		return p.Sick
	case TypeEarned:
		return p.Earned
	default:
		return decimal.Zero
	}
}

func (p *PerType) Set(t Type, v decimal.Decimal) {
	switch t {
	case TypeCasual:
		p.Casual = v
	case TypeSick:
		p.Sick = v
	case TypeEarned:
		p.Earned = v
	}
}

// RemainingOf computes max(0, accrual - used) per type. Remaining balance
// is never negative, even when historical usage exceeds entitlement.
func RemainingOf(accrual, used PerType) PerType {
	var out PerType
	for _, t := range BalanceTypes {
		r := accrual.Get(t).Sub(used.Get(t))
		if r.IsNegative() {
			r = decimal.Zero
		}
		out.Set(t, r)
	}
	return out
}

// Balance is the composed per-type view returned to balance queries.
type Balance struct {
	Window    Window  `json:"window"`
	Accrual   PerType `json:"accrual"`
	Used      PerType `json:"used"`
	Remaining PerType `json:"remaining"`
}
