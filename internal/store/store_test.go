// ABOUTME: Shared test helpers for store tests
// ABOUTME: Provides a temporary SQLite store and entity seeding

package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// seedInstitution creates a test institution.
func seedInstitution(t *testing.T, s *SQLiteStore, id string) *Institution {
	t.Helper()

	inst := &Institution{
		ID:           id,
		Name:         "Test Institute",
		Email:        id + "@example.edu",
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.CreateInstitution(context.Background(), inst))
	return inst
}

// seedUser creates a test user with the given role.
func seedUser(t *testing.T, s *SQLiteStore, id string, role UserRole) *User {
	t.Helper()

	u := &User{
		ID:           id,
		Name:         "Test User " + id,
		Email:        id + "@example.edu",
		Phone:        "5550100",
		Role:         role,
		PasswordHash: "$2a$10$hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

// seedFaculty creates a faculty record bound to a fresh user.
func seedFaculty(t *testing.T, s *SQLiteStore, id, institutionID string) *Faculty {
	t.Helper()

	u := seedUser(t, s, "user-for-"+id, RoleFaculty)
	f := &Faculty{
		ID:            id,
		UserID:        u.ID,
		InstitutionID: institutionID,
		DepartmentRef: "dept-cs",
		Designation:   "Assistant Professor",
		DateOfJoining: "2023-07-01",
		Active:        true,
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.CreateFaculty(context.Background(), f))
	return f
}
