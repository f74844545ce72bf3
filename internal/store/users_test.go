// ABOUTME: Tests for user and institution store operations
// ABOUTME: Covers creation, lookup, deletion cascade, and duplicate emails

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore_CreateAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "user-001", RoleFaculty)

	retrieved, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, retrieved.ID)
	assert.Equal(t, u.Email, retrieved.Email)
	assert.Equal(t, RoleFaculty, retrieved.Role)
}

func TestUserStore_GetByEmail(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "user-001", RoleStudent)

	retrieved, err := s.GetUserByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, retrieved.ID)

	_, err = s.GetUserByEmail(ctx, "nobody@example.edu")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStore_DuplicateEmail(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "user-001", RoleStudent)

	dup := *u
	dup.ID = "user-002"
	err := s.CreateUser(ctx, &dup)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestUserStore_InvalidRole(t *testing.T) {
	s := setupTestStore(t)

	u := &User{ID: "user-001", Name: "X", Email: "x@example.edu", Role: UserRole("janitor")}
	err := s.CreateUser(context.Background(), u)
	assert.Error(t, err)
}

func TestUserStore_Delete(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "user-001", RoleFaculty)

	require.NoError(t, s.DeleteUser(ctx, u.ID))

	_, err := s.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again reports not found
	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), ErrNotFound)
}

func TestUserStore_DeleteCascadesFaculty(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	inst := seedInstitution(t, s, "inst-001")
	f := seedFaculty(t, s, "fac-001", inst.ID)

	require.NoError(t, s.DeleteUser(ctx, f.UserID))

	_, err := s.GetFaculty(ctx, f.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStore_ListByRole(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	seedUser(t, s, "user-001", RoleStudent)
	seedUser(t, s, "user-002", RoleFaculty)
	seedUser(t, s, "user-003", RoleFaculty)

	faculty, err := s.ListUsers(ctx, RoleFaculty)
	require.NoError(t, err)
	assert.Len(t, faculty, 2)

	all, err := s.ListUsers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestInstitutionStore_CreateAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	inst := seedInstitution(t, s, "inst-001")

	retrieved, err := s.GetInstitution(ctx, inst.ID)
	require.NoError(t, err)
	assert.Equal(t, inst.Name, retrieved.Name)

	byEmail, err := s.GetInstitutionByEmail(ctx, inst.Email)
	require.NoError(t, err)
	assert.Equal(t, inst.ID, byEmail.ID)
}

func TestInstitutionStore_DuplicateEmail(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	inst := seedInstitution(t, s, "inst-001")

	dup := *inst
	dup.ID = "inst-002"
	assert.ErrorIs(t, s.CreateInstitution(ctx, &dup), ErrDuplicateEmail)
}
