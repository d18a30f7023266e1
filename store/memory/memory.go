// Package memory provides in-memory implementations of the leave engine's
// storage interfaces, for testing and local development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/nimbushr/leave-engine/leave"
)

// =============================================================================
// MEMORY STORE - implements leave.Directory and leave.RecordStore
// =============================================================================

type Store struct {
	mu        sync.RWMutex
	employees map[string]leave.Employee
	requests  map[string]leave.LeaveRequest
}

func New() *Store {
	return &Store{
		employees: make(map[string]leave.Employee),
		requests:  make(map[string]leave.LeaveRequest),
	}
}

// -----------------------------------------------------------------------------
// Directory
// -----------------------------------------------------------------------------

// SaveEmployee inserts or replaces a directory record.
func (s *Store) SaveEmployee(_ context.Context, emp leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[emp.ID] = emp
	return nil
}

func (s *Store) GetEmployee(_ context.Context, id string) (*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	emp, ok := s.employees[id]
	if !ok {
		return nil, leave.ErrEmployeeNotFound
	}
	out := emp
	return &out, nil
}

func (s *Store) ListEmployees(_ context.Context, filter leave.EmployeeFilter) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []leave.Employee
	for _, emp := range s.employees {
		if filter.Role != "" && emp.Role != filter.Role {
			continue
		}
		if filter.Department != "" && emp.Department != filter.Department {
			continue
		}
		out = append(out, emp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// -----------------------------------------------------------------------------
// RecordStore
// -----------------------------------------------------------------------------

func (s *Store) CreateRequest(_ context.Context, req *leave.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[req.ID] = *req
	return nil
}

func (s *Store) GetRequest(_ context.Context, id string) (*leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	req, ok := s.requests[id]
	if !ok {
		return nil, leave.ErrRequestNotFound
	}
	out := req
	return &out, nil
}

func (s *Store) TransitionStatus(_ context.Context, id string, to leave.Status, note string) (*leave.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return nil, leave.ErrRequestNotFound
	}
	if req.Status != leave.StatusPending {
		return nil, leave.ErrConcurrentModification
	}
	req.Status = to
	req.ApproverNote = note
	s.requests[id] = req
	out := req
	return &out, nil
}

func (s *Store) SumApprovedDays(_ context.Context, employeeID string, t leave.Type, from, to leave.Date) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum := decimal.Zero
	for _, req := range s.requests {
		if req.EmployeeID != employeeID || req.Type != t || req.Status != leave.StatusApproved {
			continue
		}
		if req.StartDate.AfterOrEqual(from) && req.StartDate.BeforeOrEqual(to) {
			sum = sum.Add(req.TotalDays)
		}
	}
	return sum, nil
}

func (s *Store) ListByEmployee(_ context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []leave.LeaveRequest
	for _, req := range s.requests {
		if req.EmployeeID == employeeID {
			out = append(out, req)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *Store) ListAll(_ context.Context) ([]leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]leave.LeaveRequest, 0, len(s.requests))
	for _, req := range s.requests {
		out = append(out, req)
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(reqs []leave.LeaveRequest) {
	sort.Slice(reqs, func(i, j int) bool {
		if reqs[i].CreatedAt.Equal(reqs[j].CreatedAt) {
			return reqs[i].ID < reqs[j].ID
		}
		return reqs[i].CreatedAt.After(reqs[j].CreatedAt)
	})
}
