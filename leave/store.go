/*
store.go - Persistence interfaces for the leave engine

PURPOSE:
  Defines the boundary between the business rules and the two external
  collaborators: the employee directory and the leave record store.
  Implementations live in store/sqlite (production) and store/memory
  (testing/dev).

CONTRACTS:
  Directory:   Read-only employee lookups. A resolved employee with no
               hire date is a distinct condition (nil HireDate) from an
               unresolved id (ErrEmployeeNotFound).
  RecordStore: Leave request persistence. Status transitions go through
               TransitionStatus, which is conditional on the current
               status being pending - a lost race surfaces as
               ErrConcurrentModification rather than a double decision.

AGGREGATION:
  SumApprovedDays is the store-side sum-by-group primitive: the engine
  never loads full request lists to compute usage.

SEE ALSO:
  - store/sqlite/sqlite.go: Production implementation
  - store/memory/memory.go: In-memory implementation for tests
*/
package leave

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// DIRECTORY - Employee lookups (external collaborator)
// =============================================================================

type Directory interface {
	// GetEmployee resolves an employee id. Returns ErrEmployeeNotFound if
	// the id does not resolve; a nil HireDate on the result means the hire
	// date is simply not on file.
	GetEmployee(ctx context.Context, id string) (*Employee, error)

	// ListEmployees returns employees matching the filter, for the batch
	// balance view. A zero filter returns everyone.
	ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
}

type EmployeeFilter struct {
	Role       string
	Department string
}

// =============================================================================
// RECORD STORE - Leave request persistence (external collaborator)
// =============================================================================

type RecordStore interface {
	// CreateRequest persists a new request. The caller sets all fields
	// including status.
	CreateRequest(ctx context.Context, req *LeaveRequest) error

	// GetRequest resolves a request id. Returns ErrRequestNotFound if the
	// id does not resolve.
	GetRequest(ctx context.Context, id string) (*LeaveRequest, error)

	// TransitionStatus moves a pending request to a terminal status and
	// returns the updated record. If the request exists but is no longer
	// pending, returns ErrConcurrentModification.
	TransitionStatus(ctx context.Context, id string, to Status, note string) (*LeaveRequest, error)

	// SumApprovedDays returns the total approved days for one employee and
	// leave type with a start date in [from, to].
	SumApprovedDays(ctx context.Context, employeeID string, t Type, from, to Date) (decimal.Decimal, error)

	// ListByEmployee returns an employee's requests, newest first.
	ListByEmployee(ctx context.Context, employeeID string) ([]LeaveRequest, error)

	// ListAll returns every request, newest first.
	ListAll(ctx context.Context) ([]LeaveRequest, error)
}
