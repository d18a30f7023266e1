/*
dto.go - Response envelopes and error mapping

PURPOSE:
  Every response carries the {status, message, ...} envelope the clients
  already speak. Business failures are 4xx with a meta block holding the
  numbers the UI renders (accrued/used/remaining/requested, or
  quota/used/remaining); storage failures are 5xx with no business
  metadata.
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nimbushr/leave-engine/leave"
)

// =============================================================================
// ENVELOPES
// =============================================================================

type errorResponse struct {
	Status  string         `json:"status"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// CreateEmployeeRequest is the directory seeding/registration payload.
type CreateEmployeeRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Department  string `json:"department"`
	JoiningDate string `json:"joiningDate"`
}

// RejectRequest carries the optional approver note on rejection.
type RejectRequest struct {
	Note string `json:"note"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, meta map[string]any) {
	writeJSON(w, status, errorResponse{Status: "error", Message: message, Meta: meta})
}

// =============================================================================
// DOMAIN ERROR MAPPING
// =============================================================================

// writeDomainError maps engine errors onto HTTP statuses. Structured
// errors contribute their metadata; unknown errors are treated as
// storage/infrastructure failures.
func writeDomainError(w http.ResponseWriter, err error) {
	var balErr *leave.InsufficientBalanceError
	if errors.As(err, &balErr) {
		writeError(w, http.StatusBadRequest, "Insufficient leave balance", map[string]any{
			"leaveType": balErr.Type,
			"accrued":   balErr.Accrued,
			"used":      balErr.Used,
			"remaining": balErr.Remaining,
			"requested": balErr.Requested,
		})
		return
	}

	var quotaErr *leave.QuotaExceededError
	if errors.As(err, &quotaErr) {
		writeError(w, http.StatusBadRequest, "Monthly leave quota exceeded", map[string]any{
			"leaveType": quotaErr.Type,
			"month":     quotaErr.Month.Time.Format("2006-01"),
			"quota":     quotaErr.Quota,
			"used":      quotaErr.Used,
			"remaining": quotaErr.Remaining,
			"requested": quotaErr.Requested,
		})
		return
	}

	var missingErr *leave.MissingFieldsError
	if errors.As(err, &missingErr) {
		writeError(w, http.StatusBadRequest, missingErr.Error(), map[string]any{
			"fields": missingErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, leave.ErrForbidden):
		writeError(w, http.StatusForbidden, "Only Admin, Manager or HR allowed", nil)
	case leave.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case leave.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error", nil)
	}
}
