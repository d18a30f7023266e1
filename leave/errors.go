/*
errors.go - Centralized error types for the leave engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The HTTP layer maps these onto status codes without string matching.

ERROR CATEGORIES:
  1. Input errors        - unparseable dates, missing fields
  2. Eligibility errors  - tenure gate, balance ceiling, monthly quota
  3. Authorization/NotFound
  4. Storage errors      - collaborator failures, propagated wrapped

PROPAGATION POLICY:
  Validation and eligibility failures are recovered locally and surfaced
  as structured 4xx responses with enough metadata for the caller to
  render a precise message. Storage failures surface as 5xx with no
  business metadata.

USAGE:
  var bal *leave.InsufficientBalanceError
  if errors.As(err, &bal) {
      // bal.Remaining, bal.Requested ...
  }
*/
package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned when a supplied date cannot be parsed in
	// any accepted format, or a reference date is unusable.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidDateRange is returned when the end date precedes the start.
	ErrInvalidDateRange = errors.New("end date cannot be earlier than start date")

	// ErrMissingRequiredField is returned when a required creation field is
	// absent after alias resolution.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrMissingHireDate is returned when a tenure check is attempted for
	// an employee with no hire date on file. This is a hard block for
	// tenure-gated types, never a silent default.
	ErrMissingHireDate = errors.New("hire date not on file")

	// ErrNotEligible is returned when the tenure milestone has not been
	// reached for a tenure-gated leave type.
	ErrNotEligible = errors.New("tenure milestone not reached")

	// ErrInsufficientBalance is returned when the requested days exceed the
	// remaining balance. Usually wrapped in InsufficientBalanceError.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrQuotaExceeded is returned when the monthly approval bucket is full.
	// Usually wrapped in QuotaExceededError.
	ErrQuotaExceeded = errors.New("monthly quota exceeded")

	// ErrForbidden is returned when the caller's role is not permitted.
	ErrForbidden = errors.New("role not permitted")

	// ErrEmployeeNotFound is returned when an employee id does not resolve.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrRequestNotFound is returned when a leave request id does not resolve.
	ErrRequestNotFound = errors.New("leave request not found")

	// ErrConcurrentModification is returned when a status transition loses a
	// race: the request was already decided by the time the update ran.
	ErrConcurrentModification = errors.New("request already decided")
)

// =============================================================================
// STRUCTURED ERRORS - Carry metadata for client display
// =============================================================================

// MissingFieldsError lists the creation fields absent after alias resolution.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing/invalid fields: %v", e.Fields)
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingRequiredField }

// InsufficientBalanceError reports a creation-time balance shortage.
type InsufficientBalanceError struct {
	Type      Type
	Accrued   decimal.Decimal
	Used      decimal.Decimal
	Remaining decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient %s balance: remaining %s, requested %s",
		e.Type, e.Remaining, e.Requested)
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }

// QuotaExceededError reports an approval-time monthly bucket overflow.
type QuotaExceededError struct {
	Type      Type
	Month     Date // first day of the bucket's calendar month
	Quota     decimal.Decimal
	Used      decimal.Decimal
	Remaining decimal.Decimal
	Requested decimal.Decimal
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("monthly %s quota exceeded for %s: quota %s, already approved %s, requested %s",
		e.Type, e.Month.Time.Format("2006-01"), e.Quota, e.Used, e.Requested)
}

func (e *QuotaExceededError) Unwrap() error { return ErrQuotaExceeded }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid or ineligible
// client input and should surface as a 4xx.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrMissingRequiredField) ||
		errors.Is(err, ErrMissingHireDate) ||
		errors.Is(err, ErrNotEligible) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrQuotaExceeded) ||
		errors.Is(err, ErrConcurrentModification)
}

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrRequestNotFound)
}
