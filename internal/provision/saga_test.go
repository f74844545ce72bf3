// ABOUTME: Tests for the provisioning saga against the real API stack
// ABOUTME: Covers the happy path, compensating rollback, and orphan reporting

package provision

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/registrar/internal/api"
	"github.com/campushq/registrar/internal/auth"
	"github.com/campushq/registrar/internal/client"
	"github.com/campushq/registrar/internal/store"
)

const testPassword = "correct-horse"

// sagaEnv is a full API over a temporary store with a logged-in institution
type sagaEnv struct {
	client *client.Client
	store  *store.SQLiteStore
	token  string
}

// newSagaEnv stands the stack up behind an optional middleware so tests can
// sabotage individual requests.
func newSagaEnv(t *testing.T, wrap func(http.Handler) http.Handler) *sagaEnv {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	verifier := auth.NewJWTVerifier([]byte("test-secret"))
	handler := http.Handler(api.New(st, verifier, time.Hour, nil).Handler())
	if wrap != nil {
		handler = wrap(handler)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	inst := &store.Institution{
		ID:           "inst-001",
		Name:         "Test Institute",
		Email:        "inst-001@example.edu",
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, st.CreateInstitution(context.Background(), inst))

	c := client.New(srv.URL)
	resp, err := c.InstitutionLogin(context.Background(), inst.Email, testPassword)
	require.NoError(t, err)

	return &sagaEnv{client: c, store: st, token: resp.Token}
}

func testUserFields(email string) UserFields {
	return UserFields{Name: "New Faculty", Email: email, Phone: "555-0100", Password: "longenough"}
}

func testFacultyFields() FacultyFields {
	return FacultyFields{DepartmentRef: "dept-cs", Designation: "Lecturer", DateOfJoining: "2026-01-05"}
}

func TestSaga_CreateFaculty(t *testing.T) {
	env := newSagaEnv(t, nil)
	ctx := context.Background()

	saga := New(env.client, env.token, nil)
	view, err := saga.CreateFaculty(ctx, testUserFields("f1@example.edu"), testFacultyFields())
	require.NoError(t, err)
	assert.Equal(t, "complete", saga.State())
	assert.Equal(t, "dept-cs", view.DepartmentRef)
	assert.True(t, view.Active)

	// Both halves exist remotely
	fetched, err := env.client.GetFaculty(ctx, env.token, view.ID)
	require.NoError(t, err)
	assert.Equal(t, view.UserID, fetched.UserID)

	users, err := env.client.ListUsers(ctx, env.token, store.RoleFaculty)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSaga_BindingWithoutIdentity(t *testing.T) {
	env := newSagaEnv(t, nil)

	saga := New(env.client, env.token, nil)
	_, err := saga.CreateBinding(context.Background(), testFacultyFields())
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestSaga_BindingFailureRollsBackIdentity(t *testing.T) {
	env := newSagaEnv(t, nil)
	ctx := context.Background()

	saga := New(env.client, env.token, nil)
	require.NoError(t, saga.CreateIdentity(ctx, testUserFields("f1@example.edu")))

	// Bind the identity out from under the saga so its own binding conflicts
	users, err := env.client.ListUsers(ctx, env.token, store.RoleFaculty)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.NoError(t, env.store.CreateFaculty(ctx, &store.Faculty{
		ID:            "fac-rival",
		UserID:        users[0].ID,
		InstitutionID: "inst-001",
		DepartmentRef: "dept-cs",
		CreatedAt:     time.Now().UTC(),
	}))

	_, err = saga.CreateBinding(ctx, testFacultyFields())
	require.Error(t, err)
	assert.Equal(t, "failed", saga.State())

	var bindErr *BindingError
	require.ErrorAs(t, err, &bindErr)
	assert.True(t, bindErr.Compensated)
	assert.Empty(t, bindErr.OrphanedIdentity)

	// The compensating delete removed the identity
	remaining, err := env.client.ListUsers(ctx, env.token, store.RoleFaculty)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestSaga_CompensationFailureReportsOrphan(t *testing.T) {
	// Sabotage every DELETE so the compensating action cannot succeed
	env := newSagaEnv(t, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodDelete {
				http.Error(w, `{"data":null,"message":"storage offline"}`, http.StatusServiceUnavailable)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	ctx := context.Background()

	saga := New(env.client, env.token, nil)
	require.NoError(t, saga.CreateIdentity(ctx, testUserFields("f1@example.edu")))

	users, err := env.client.ListUsers(ctx, env.token, store.RoleFaculty)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.NoError(t, env.store.CreateFaculty(ctx, &store.Faculty{
		ID:            "fac-rival",
		UserID:        users[0].ID,
		InstitutionID: "inst-001",
		DepartmentRef: "dept-cs",
		CreatedAt:     time.Now().UTC(),
	}))

	_, err = saga.CreateBinding(ctx, testFacultyFields())
	require.Error(t, err)

	var bindErr *BindingError
	require.ErrorAs(t, err, &bindErr)
	assert.False(t, bindErr.Compensated)
	assert.Equal(t, users[0].ID, bindErr.OrphanedIdentity)
	require.Error(t, bindErr.CompensationErr)

	// The primary failure, not the compensation failure, is what unwraps
	var apiErr *client.APIError
	require.ErrorAs(t, bindErr.Err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestSaga_SingleUse(t *testing.T) {
	env := newSagaEnv(t, nil)
	ctx := context.Background()

	saga := New(env.client, env.token, nil)
	_, err := saga.CreateFaculty(ctx, testUserFields("f1@example.edu"), testFacultyFields())
	require.NoError(t, err)

	err = saga.CreateIdentity(ctx, testUserFields("f2@example.edu"))
	assert.ErrorContains(t, err, "already complete")
}

func TestSaga_IdentityFailureStopsEverything(t *testing.T) {
	env := newSagaEnv(t, nil)
	ctx := context.Background()

	saga := New(env.client, env.token, nil)
	require.NoError(t, saga.CreateIdentity(ctx, testUserFields("f1@example.edu")))

	// A second saga reusing the email fails in phase one and never binds
	rival := New(env.client, env.token, nil)
	_, err := rival.CreateFaculty(ctx, testUserFields("f1@example.edu"), testFacultyFields())
	require.Error(t, err)
	assert.Equal(t, "failed", rival.State())

	var bindErr *BindingError
	assert.False(t, errors.As(err, &bindErr), "phase-one failure must not be a BindingError")
}
