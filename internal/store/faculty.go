// ABOUTME: Faculty entity and store methods for the role-binding record
// ABOUTME: Binds a user identity to an institution with lifecycle flags

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Faculty represents the role binding between a user identity and an
// institution. Designation/date, department, course list, active flag, and
// in-charge flag are independently addressable mutations.
type Faculty struct {
	ID            string
	UserID        string
	InstitutionID string
	DepartmentRef string
	Designation   string
	DateOfJoining string
	Active        bool
	InCharge      bool
	Courses       []CourseAssignment
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CreateFaculty inserts a new faculty record. The referenced user must exist;
// a user may hold at most one faculty record.
func (s *SQLiteStore) CreateFaculty(ctx context.Context, f *Faculty) error {
	query := `
		INSERT INTO faculty (id, user_id, institution_id, department_ref, designation,
			date_of_joining, is_active, is_in_charge, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := f.CreatedAt.UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		f.ID,
		f.UserID,
		f.InstitutionID,
		f.DepartmentRef,
		f.Designation,
		f.DateOfJoining,
		f.Active,
		f.InCharge,
		now,
		now,
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateFaculty
		}
		return fmt.Errorf("creating faculty record: %w", err)
	}

	s.logger.Debug("created faculty record", "faculty_id", f.ID, "user_id", f.UserID)
	return nil
}

// GetFaculty retrieves a faculty record with its open course assignments
func (s *SQLiteStore) GetFaculty(ctx context.Context, id string) (*Faculty, error) {
	query := `
		SELECT id, user_id, institution_id, department_ref, designation,
			date_of_joining, is_active, is_in_charge, created_at, updated_at
		FROM faculty WHERE id = ?
	`

	f, err := s.scanFaculty(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	f.Courses, err = s.listAssignments(ctx, id)
	if err != nil {
		return nil, err
	}

	return f, nil
}

// GetFacultyByUser retrieves the faculty record bound to a user identity
func (s *SQLiteStore) GetFacultyByUser(ctx context.Context, userID string) (*Faculty, error) {
	query := `
		SELECT id, user_id, institution_id, department_ref, designation,
			date_of_joining, is_active, is_in_charge, created_at, updated_at
		FROM faculty WHERE user_id = ?
	`

	f, err := s.scanFaculty(s.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, err
	}

	f.Courses, err = s.listAssignments(ctx, f.ID)
	if err != nil {
		return nil, err
	}

	return f, nil
}

// ListFaculty returns all faculty records for an institution, with assignments
func (s *SQLiteStore) ListFaculty(ctx context.Context, institutionID string) ([]*Faculty, error) {
	query := `
		SELECT id, user_id, institution_id, department_ref, designation,
			date_of_joining, is_active, is_in_charge, created_at, updated_at
		FROM faculty WHERE institution_id = ? ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, institutionID)
	if err != nil {
		return nil, fmt.Errorf("listing faculty: %w", err)
	}
	defer rows.Close()

	var records []*Faculty
	for rows.Next() {
		f, err := scanFacultyRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, f := range records {
		f.Courses, err = s.listAssignments(ctx, f.ID)
		if err != nil {
			return nil, err
		}
	}

	return records, nil
}

// UpdateFacultyProfile updates the designation and date of joining
func (s *SQLiteStore) UpdateFacultyProfile(ctx context.Context, id, designation, dateOfJoining string) error {
	query := `
		UPDATE faculty SET designation = ?, date_of_joining = ?, updated_at = ?
		WHERE id = ?
	`
	return s.execFacultyUpdate(ctx, query, designation, dateOfJoining, nowRFC3339(), id)
}

// UpdateFacultyDepartment moves the faculty record to another department
func (s *SQLiteStore) UpdateFacultyDepartment(ctx context.Context, id, departmentRef string) error {
	query := `UPDATE faculty SET department_ref = ?, updated_at = ? WHERE id = ?`
	return s.execFacultyUpdate(ctx, query, departmentRef, nowRFC3339(), id)
}

// SetFacultyActive flips the active flag
func (s *SQLiteStore) SetFacultyActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE faculty SET is_active = ?, updated_at = ? WHERE id = ?`
	return s.execFacultyUpdate(ctx, query, active, nowRFC3339(), id)
}

// SetFacultyInCharge flips the in-charge flag
func (s *SQLiteStore) SetFacultyInCharge(ctx context.Context, id string, inCharge bool) error {
	query := `UPDATE faculty SET is_in_charge = ?, updated_at = ? WHERE id = ?`
	return s.execFacultyUpdate(ctx, query, inCharge, nowRFC3339(), id)
}

// DeleteFaculty removes a faculty record and its assignments
func (s *SQLiteStore) DeleteFaculty(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM faculty WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting faculty record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// ReplaceAssignments replaces the full course list for a faculty record.
// The list is validated for duplicates before any write.
func (s *SQLiteStore) ReplaceAssignments(ctx context.Context, facultyID string, assignments []CourseAssignment) error {
	if err := ValidateAssignments(assignments); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM course_assignments WHERE faculty_id = ?`, facultyID); err != nil {
		return fmt.Errorf("clearing assignments: %w", err)
	}

	now := nowRFC3339()
	for _, a := range assignments {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO course_assignments (faculty_id, course_id, semester, batch, created_at)
			VALUES (?, ?, ?, ?, ?)
		`, facultyID, a.CourseID, a.Semester, a.Batch, now)
		if err != nil {
			return fmt.Errorf("inserting assignment %s: %w", a.Key(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing assignments: %w", err)
	}

	s.logger.Debug("replaced assignments", "faculty_id", facultyID, "count", len(assignments))
	return nil
}

// FinishAssignment removes a single open assignment from a faculty record.
// Returns ErrNotFound if the assignment is not open.
func (s *SQLiteStore) FinishAssignment(ctx context.Context, facultyID string, a CourseAssignment) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM course_assignments
		WHERE faculty_id = ? AND course_id = ? AND semester = ? AND batch = ?
	`, facultyID, a.CourseID, a.Semester, a.Batch)
	if err != nil {
		return fmt.Errorf("finishing assignment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	s.logger.Debug("finished assignment", "faculty_id", facultyID, "assignment", a.Key())
	return nil
}

func (s *SQLiteStore) listAssignments(ctx context.Context, facultyID string) ([]CourseAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT course_id, semester, batch FROM course_assignments
		WHERE faculty_id = ? ORDER BY course_id, semester, batch
	`, facultyID)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	defer rows.Close()

	var assignments []CourseAssignment
	for rows.Next() {
		var a CourseAssignment
		if err := rows.Scan(&a.CourseID, &a.Semester, &a.Batch); err != nil {
			return nil, fmt.Errorf("scanning assignment: %w", err)
		}
		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}

func (s *SQLiteStore) execFacultyUpdate(ctx context.Context, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating faculty record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *SQLiteStore) scanFaculty(row *sql.Row) (*Faculty, error) {
	f, err := scanFacultyRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

func scanFacultyRow(row rowScanner) (*Faculty, error) {
	var f Faculty
	var createdAt, updatedAt string

	err := row.Scan(&f.ID, &f.UserID, &f.InstitutionID, &f.DepartmentRef, &f.Designation,
		&f.DateOfJoining, &f.Active, &f.InCharge, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning faculty record: %w", err)
	}

	if f.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if f.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &f, nil
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339)
}
