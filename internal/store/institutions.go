// ABOUTME: Institution entity and store methods
// ABOUTME: Institutions own faculty records and authenticate with email/password

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Institution represents an institution account
type Institution struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// CreateInstitution inserts a new institution account
func (s *SQLiteStore) CreateInstitution(ctx context.Context, inst *Institution) error {
	query := `
		INSERT INTO institutions (id, name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		inst.ID,
		inst.Name,
		inst.Email,
		inst.PasswordHash,
		inst.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("creating institution: %w", err)
	}

	s.logger.Debug("created institution", "institution_id", inst.ID, "email", inst.Email)
	return nil
}

// GetInstitution retrieves an institution by ID
func (s *SQLiteStore) GetInstitution(ctx context.Context, id string) (*Institution, error) {
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM institutions WHERE id = ?
	`
	return s.scanInstitution(s.db.QueryRowContext(ctx, query, id))
}

// GetInstitutionByEmail retrieves an institution by email for login
func (s *SQLiteStore) GetInstitutionByEmail(ctx context.Context, email string) (*Institution, error) {
	query := `
		SELECT id, name, email, password_hash, created_at
		FROM institutions WHERE email = ?
	`
	return s.scanInstitution(s.db.QueryRowContext(ctx, query, email))
}

func (s *SQLiteStore) scanInstitution(row *sql.Row) (*Institution, error) {
	var inst Institution
	var createdAt string

	err := row.Scan(&inst.ID, &inst.Name, &inst.Email, &inst.PasswordHash, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning institution: %w", err)
	}

	inst.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}

	return &inst, nil
}
