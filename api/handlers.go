/*
handlers.go - HTTP handlers for the leave engine

PURPOSE:
  Exposes the engine over REST. Handlers parse HTTP, delegate every
  decision to the leave service and serialize the envelope back. No
  business rule lives here.

ENDPOINTS:
  POST   /api/leaves                Create a leave request
  GET    /api/leaves                All requests (admin/manager/hr)
  GET    /api/leaves/me             Caller's own requests
  GET    /api/leaves/balance/me     Caller's balance
  GET    /api/leaves/balance        Batch balances (admin/manager/hr)
  PUT    /api/leaves/{id}/approve   Approve (admin/manager/hr)
  PUT    /api/leaves/{id}/reject    Reject (admin/manager/hr)
  GET    /api/employees/{id}        Directory lookup
  POST   /api/employees             Directory seeding boundary

ERROR HANDLING:
  Business failures: 400 with {status:"error", message, meta}
  Authorization:     403
  Unknown ids:       404
  Storage failures:  500, no business metadata

SEE ALSO:
  - dto.go:    Envelope and error mapping
  - server.go: Router and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nimbushr/leave-engine/leave"
)

// EmployeeWriter is the directory's write side, used only by the seeding
// boundary endpoint.
type EmployeeWriter interface {
	SaveEmployee(ctx context.Context, emp leave.Employee) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service   *leave.Service
	Directory leave.Directory
	Writer    EmployeeWriter
}

func NewHandler(service *leave.Service, directory leave.Directory, writer EmployeeWriter) *Handler {
	return &Handler{Service: service, Directory: directory, Writer: writer}
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

// CreateLeave creates a leave request for the authenticated caller.
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	// The body is decoded loosely: clients send the same logical fields
	// under several historical names, resolved by the engine's alias list.
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	in, err := leave.ParsePayload(body)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	req, err := h.Service.Create(r.Context(), caller, in)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":  "success",
		"message": "Leave request created",
		"leave":   req,
	})
}

// MyLeaves returns the caller's own requests, newest first.
func (h *Handler) MyLeaves(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	leaves, err := h.Service.RequestsFor(r.Context(), caller.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "leaves": leaves})
}

// ListLeaves returns every request. Moderator roles only.
func (h *Handler) ListLeaves(w http.ResponseWriter, r *http.Request) {
	caller, _ := identityFrom(r.Context())
	if !leave.CanModerate(caller.Role) {
		writeError(w, http.StatusForbidden, "Only Admin, Manager or HR allowed", nil)
		return
	}

	leaves, err := h.Service.AllRequests(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "leaves": leaves})
}

// =============================================================================
// BALANCES
// =============================================================================

// MyBalance returns the caller's balance for the current window.
func (h *Handler) MyBalance(w http.ResponseWriter, r *http.Request) {
	caller, ok := identityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	bal, err := h.Service.Balance(r.Context(), caller.ID, leave.Date{})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bal)
}

// Balances returns balances for a filtered employee set. Moderator roles only.
func (h *Handler) Balances(w http.ResponseWriter, r *http.Request) {
	caller, _ := identityFrom(r.Context())
	if !leave.CanModerate(caller.Role) {
		writeError(w, http.StatusForbidden, "Only Admin, Manager or HR allowed", nil)
		return
	}

	filter := leave.EmployeeFilter{
		Role:       r.URL.Query().Get("role"),
		Department: r.URL.Query().Get("department"),
	}

	balances, err := h.Service.Balances(r.Context(), filter, leave.Date{})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "balances": balances})
}

// =============================================================================
// APPROVAL
// =============================================================================

// ApproveLeave transitions a pending request to approved.
func (h *Handler) ApproveLeave(w http.ResponseWriter, r *http.Request) {
	caller, _ := identityFrom(r.Context())
	id := chi.URLParam(r, "id")

	req, err := h.Service.Approve(r.Context(), caller, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "leave": req})
}

// RejectLeave transitions a pending request to rejected.
func (h *Handler) RejectLeave(w http.ResponseWriter, r *http.Request) {
	caller, _ := identityFrom(r.Context())
	id := chi.URLParam(r, "id")

	var body RejectRequest
	if r.Body != nil {
		// The note is optional; an empty or absent body is fine.
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	req, err := h.Service.Reject(r.Context(), caller, id, body.Note)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "leave": req})
}

// =============================================================================
// EMPLOYEES (directory boundary)
// =============================================================================

// GetEmployee resolves a directory record.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	emp, err := h.Directory.GetEmployee(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "employee": emp})
}

// CreateEmployee stores a directory record. This is the seeding boundary
// for the external user directory, not an HR onboarding flow.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}
	if req.ID == "" || req.Name == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "id, name and role are required", nil)
		return
	}

	emp := leave.Employee{
		ID:         req.ID,
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		Department: req.Department,
	}
	if req.JoiningDate != "" {
		hire, err := leave.ParseDateFlexible(req.JoiningDate)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		emp.HireDate = &hire
	}

	if err := h.Writer.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", nil)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"status": "success", "employee": emp})
}
