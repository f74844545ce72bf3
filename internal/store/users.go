// ABOUTME: User entity and store methods for identity records
// ABOUTME: Users carry a role discriminant (student, faculty, admin)

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UserRole represents the role discriminant on a user identity
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleFaculty UserRole = "faculty"
	RoleAdmin   UserRole = "admin"
)

// ValidUserRoles lists all valid user roles
var ValidUserRoles = []UserRole{RoleStudent, RoleFaculty, RoleAdmin}

// Valid reports whether the role is a known role
func (r UserRole) Valid() bool {
	switch r {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

// User represents an identity record
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	Role         UserRole
	PasswordHash string
	CreatedAt    time.Time
}

// CreateUser inserts a new user identity
func (s *SQLiteStore) CreateUser(ctx context.Context, u *User) error {
	if !u.Role.Valid() {
		return fmt.Errorf("invalid role %q", u.Role)
	}

	query := `
		INSERT INTO users (id, name, email, phone, role, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		u.ID,
		u.Name,
		u.Email,
		u.Phone,
		u.Role,
		u.PasswordHash,
		u.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("creating user: %w", err)
	}

	s.logger.Debug("created user", "user_id", u.ID, "role", u.Role)
	return nil
}

// GetUser retrieves a user by ID
func (s *SQLiteStore) GetUser(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, name, email, phone, role, password_hash, created_at
		FROM users WHERE id = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// GetUserByEmail retrieves a user by email for login
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT id, name, email, phone, role, password_hash, created_at
		FROM users WHERE email = ?
	`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

// DeleteUser removes a user identity. Faculty records referencing the user are
// removed by the ON DELETE CASCADE constraint. Returns ErrNotFound if the user
// does not exist.
func (s *SQLiteStore) DeleteUser(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	s.logger.Debug("deleted user", "user_id", id)
	return nil
}

// ListUsers returns all users, optionally filtered by role. Pass an empty role
// to list everyone.
func (s *SQLiteStore) ListUsers(ctx context.Context, role UserRole) ([]*User, error) {
	query := `
		SELECT id, name, email, phone, role, password_hash, created_at
		FROM users
	`
	args := []any{}
	if role != "" {
		query += ` WHERE role = ?`
		args = append(args, role)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var u User
		var createdAt string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.PasswordHash, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		users = append(users, &u)
	}

	return users, rows.Err()
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*User, error) {
	var u User
	var createdAt string

	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	u.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &u, nil
}
