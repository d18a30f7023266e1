/*
Package sqlite provides the SQLite-backed implementation of the leave
engine's storage interfaces.

PURPOSE:
  Implements leave.Directory and leave.RecordStore using SQLite. In
  production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

KEY TABLES:
  employees:      The directory view this engine consumes (hire_date is
                  nullable; missing is a meaningful state, not a default)
  leave_requests: The request records, with a CHECK enforcing
                  end_date >= start_date at the storage layer too

CONDITIONAL TRANSITIONS:
  Status updates are guarded with "... AND status = 'pending'" so that a
  race between two approvers is decided by the database: the loser's
  UPDATE affects zero rows and surfaces as ErrConcurrentModification.

AGGREGATION:
  SumApprovedDays pushes the usage sum into SQL (COALESCE(SUM(...), 0))
  rather than loading rows; total_days is stored as a decimal string and
  summed as a numeric, which is exact for the 0.25-granularity values
  this policy produces.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): multiple readers don't
  block, single writer at a time, better crash recovery.

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/nimbushr/leave-engine/leave"
)

// Store implements leave.Directory and leave.RecordStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		role TEXT NOT NULL,
		department TEXT,
		hire_date TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_role
		ON employees(role);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		employee_name TEXT NOT NULL,
		employee_role TEXT NOT NULL,
		leave_type TEXT NOT NULL,
		reason TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		duration_type TEXT NOT NULL,
		total_days TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		approver_note TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		CHECK (end_date >= start_date)
	);

	-- Hot path: usage and quota aggregation
	CREATE INDEX IF NOT EXISTS idx_requests_usage
		ON leave_requests(employee_id, leave_type, status, start_date);

	CREATE INDEX IF NOT EXISTS idx_requests_employee_created
		ON leave_requests(employee_id, created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DIRECTORY
// =============================================================================

// SaveEmployee inserts or replaces a directory record.
func (s *Store) SaveEmployee(ctx context.Context, emp leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var hire sql.NullString
	if emp.HireDate != nil {
		hire = sql.NullString{String: emp.HireDate.String(), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO employees (id, name, email, role, department, hire_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		emp.ID, emp.Name, emp.Email, emp.Role, emp.Department, hire,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save employee: %w", err)
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(email, ''), role, COALESCE(department, ''), hire_date
		FROM employees WHERE id = ?`, id)

	emp, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, leave.ErrEmployeeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return emp, nil
}

func (s *Store) ListEmployees(ctx context.Context, filter leave.EmployeeFilter) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, name, COALESCE(email, ''), role, COALESCE(department, ''), hire_date
		FROM employees WHERE 1=1`
	var args []any
	if filter.Role != "" {
		query += " AND role = ?"
		args = append(args, filter.Role)
	}
	if filter.Department != "" {
		query += " AND department = ?"
		args = append(args, filter.Department)
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var out []leave.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee: %w", err)
		}
		out = append(out, *emp)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*leave.Employee, error) {
	var emp leave.Employee
	var hire sql.NullString
	if err := row.Scan(&emp.ID, &emp.Name, &emp.Email, &emp.Role, &emp.Department, &hire); err != nil {
		return nil, err
	}
	if hire.Valid && hire.String != "" {
		d, err := leave.ParseDateFlexible(hire.String)
		if err != nil {
			return nil, fmt.Errorf("employee %s hire_date %q: %w", emp.ID, hire.String, err)
		}
		emp.HireDate = &d
	}
	return &emp, nil
}

// =============================================================================
// RECORD STORE
// =============================================================================

func (s *Store) CreateRequest(ctx context.Context, req *leave.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_requests
			(id, employee_id, employee_name, employee_role, leave_type, reason,
			 start_date, end_date, duration_type, total_days, status,
			 approver_note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.EmployeeID, req.EmployeeName, req.EmployeeRole,
		string(req.Type), req.Reason,
		req.StartDate.String(), req.EndDate.String(),
		string(req.Duration), req.TotalDays.String(), string(req.Status),
		req.ApproverNote,
		req.CreatedAt.UTC().Format(time.RFC3339Nano),
		req.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("create leave request: %w", err)
	}
	return nil
}

func (s *Store) GetRequest(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getRequest(ctx, id)
}

func (s *Store) getRequest(ctx context.Context, id string) (*leave.LeaveRequest, error) {
	row := s.db.QueryRowContext(ctx, selectRequest+" WHERE id = ?", id)
	req, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, leave.ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get leave request: %w", err)
	}
	return req, nil
}

// TransitionStatus is the conditional pending -> terminal update. The
// status predicate makes the check-then-act atomic at the database level.
func (s *Store) TransitionStatus(ctx context.Context, id string, to leave.Status, note string) (*leave.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE leave_requests
		SET status = ?, approver_note = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		string(to), note, time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return nil, fmt.Errorf("transition leave request: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("transition leave request: %w", err)
	}
	if affected == 0 {
		// Either the id is unknown or the request was already decided.
		if _, err := s.getRequest(ctx, id); err != nil {
			return nil, err
		}
		return nil, leave.ErrConcurrentModification
	}
	return s.getRequest(ctx, id)
}

func (s *Store) SumApprovedDays(ctx context.Context, employeeID string, t leave.Type, from, to leave.Date) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CAST(total_days AS REAL)), 0)
		FROM leave_requests
		WHERE employee_id = ? AND leave_type = ? AND status = 'approved'
		  AND start_date >= ? AND start_date <= ?`,
		employeeID, string(t), from.String(), to.String(),
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum approved days: %w", err)
	}
	return decimal.NewFromFloat(sum), nil
}

func (s *Store) ListByEmployee(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listRequests(ctx,
		selectRequest+" WHERE employee_id = ? ORDER BY created_at DESC", employeeID)
}

func (s *Store) ListAll(ctx context.Context) ([]leave.LeaveRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listRequests(ctx, selectRequest+" ORDER BY created_at DESC")
}

func (s *Store) listRequests(ctx context.Context, query string, args ...any) ([]leave.LeaveRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	defer rows.Close()

	var out []leave.LeaveRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leave request: %w", err)
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

const selectRequest = `
	SELECT id, employee_id, employee_name, employee_role, leave_type, reason,
	       start_date, end_date, duration_type, total_days, status,
	       COALESCE(approver_note, ''), created_at, updated_at
	FROM leave_requests`

func scanRequest(row rowScanner) (*leave.LeaveRequest, error) {
	var req leave.LeaveRequest
	var leaveType, duration, status string
	var startDate, endDate, totalDays, createdAt, updatedAt string

	if err := row.Scan(
		&req.ID, &req.EmployeeID, &req.EmployeeName, &req.EmployeeRole,
		&leaveType, &req.Reason, &startDate, &endDate, &duration,
		&totalDays, &status, &req.ApproverNote, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	req.Type = leave.Type(leaveType)
	req.Duration = leave.DurationType(duration)
	req.Status = leave.Status(status)

	var err error
	if req.StartDate, err = leave.ParseDateFlexible(startDate); err != nil {
		return nil, fmt.Errorf("start_date %q: %w", startDate, err)
	}
	if req.EndDate, err = leave.ParseDateFlexible(endDate); err != nil {
		return nil, fmt.Errorf("end_date %q: %w", endDate, err)
	}
	if req.TotalDays, err = decimal.NewFromString(totalDays); err != nil {
		return nil, fmt.Errorf("total_days %q: %w", totalDays, err)
	}
	if req.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("created_at %q: %w", createdAt, err)
	}
	if req.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("updated_at %q: %w", updatedAt, err)
	}
	return &req, nil
}
