// ABOUTME: Shared test helpers for API handler tests
// ABOUTME: Builds a server over a temporary store with seeded accounts

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/registrar/internal/auth"
	"github.com/campushq/registrar/internal/store"
)

const testPassword = "correct-horse"

type testEnv struct {
	server   *Server
	handler  http.Handler
	store    *store.SQLiteStore
	verifier *auth.JWTVerifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	verifier := auth.NewJWTVerifier([]byte("test-secret"))
	srv := New(st, verifier, time.Hour, nil)

	return &testEnv{
		server:   srv,
		handler:  srv.Handler(),
		store:    st,
		verifier: verifier,
	}
}

func (e *testEnv) seedInstitution(t *testing.T, id string) (*store.Institution, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	inst := &store.Institution{
		ID:           id,
		Name:         "Test Institute",
		Email:        id + "@example.edu",
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, e.store.CreateInstitution(context.Background(), inst))

	token, err := e.verifier.Generate(inst.ID, auth.KindInstitution, time.Hour)
	require.NoError(t, err)

	return inst, token
}

func (e *testEnv) seedUser(t *testing.T, id string, role store.UserRole) *store.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	u := &store.User{
		ID:           id,
		Name:         "Test User " + id,
		Email:        id + "@example.edu",
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

// do performs a JSON request against the handler. A non-empty token is sent as
// a bearer header; cookies can be added via the returned request hook.
func (e *testEnv) do(t *testing.T, method, path, token string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

// decodeData unmarshals the envelope's data field into dst and returns the message.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) string {
	t.Helper()

	var env struct {
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	if dst != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		require.NoError(t, json.Unmarshal(env.Data, dst))
	}
	return env.Message
}
