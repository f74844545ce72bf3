// ABOUTME: Tests for login, who-am-I, and user creation/deletion endpoints
// ABOUTME: Covers credential kinds, envelope shape, and error statuses

package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/registrar/internal/auth"
	"github.com/campushq/registrar/internal/store"
)

func TestInstitutionLogin_Success(t *testing.T) {
	e := newTestEnv(t)
	inst, _ := e.seedInstitution(t, "inst-001")

	rec := e.do(t, http.MethodPost, "/api/v1/institution/login", "", map[string]string{
		"email":    inst.Email,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp InstitutionLoginResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, inst.ID, resp.Institution.ID)
	assert.NotEmpty(t, resp.Token)

	// The issued token authenticates the institution kind
	me := e.do(t, http.MethodGet, "/api/v1/institution/me", resp.Token, nil)
	assert.Equal(t, http.StatusOK, me.Code)
}

func TestInstitutionLogin_WrongPassword(t *testing.T) {
	e := newTestEnv(t)
	inst, _ := e.seedInstitution(t, "inst-001")

	rec := e.do(t, http.MethodPost, "/api/v1/institution/login", "", map[string]string{
		"email":    inst.Email,
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	msg := decodeData(t, rec, nil)
	assert.Equal(t, "invalid email or password", msg)
}

func TestInstitutionLogin_UnknownEmail(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(t, http.MethodPost, "/api/v1/institution/login", "", map[string]string{
		"email":    "nobody@example.edu",
		"password": testPassword,
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserLogin_SetsCookie(t *testing.T) {
	e := newTestEnv(t)
	u := e.seedUser(t, "user-001", store.RoleFaculty)

	rec := e.do(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email":    u.Email,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp UserLoginResponse
	decodeData(t, rec, &resp)
	assert.Equal(t, u.ID, resp.User.ID)
	assert.Equal(t, "faculty", resp.User.Role)
	require.NotEmpty(t, resp.Token)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.UserTokenCookie, cookies[0].Name)
	assert.Equal(t, resp.Token, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	// The cookie authenticates the user kind
	me := e.do(t, http.MethodGet, "/api/v1/users/me", "", nil, cookies[0])
	require.Equal(t, http.StatusOK, me.Code)

	var meView UserView
	decodeData(t, me, &meView)
	assert.Equal(t, u.ID, meView.ID)
}

func TestUserMe_RejectsInstitutionToken(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.seedInstitution(t, "inst-001")

	rec := e.do(t, http.MethodGet, "/api/v1/users/me", "", nil,
		&http.Cookie{Name: auth.UserTokenCookie, Value: token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInstitutionMe_RequiresToken(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/api/v1/institution/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateUser(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.seedInstitution(t, "inst-001")

	rec := e.do(t, http.MethodPost, "/api/v1/users", token, CreateUserRequest{
		Name:     "New Faculty",
		Email:    "newfaculty@example.edu",
		Phone:    "5550101",
		Role:     "faculty",
		Password: "longenough",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var view UserView
	decodeData(t, rec, &view)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, "faculty", view.Role)
}

func TestCreateUser_Validation(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.seedInstitution(t, "inst-001")

	tests := []struct {
		name string
		req  CreateUserRequest
		want int
	}{
		{"missing fields", CreateUserRequest{Name: "X"}, http.StatusBadRequest},
		{"bad role", CreateUserRequest{Name: "X", Email: "x@e.edu", Role: "janitor", Password: "longenough"}, http.StatusBadRequest},
		{"short password", CreateUserRequest{Name: "X", Email: "x@e.edu", Role: "faculty", Password: "short"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/api/v1/users", token, tt.req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.seedInstitution(t, "inst-001")
	u := e.seedUser(t, "user-001", store.RoleFaculty)

	rec := e.do(t, http.MethodPost, "/api/v1/users", token, CreateUserRequest{
		Name:     "Dup",
		Email:    u.Email,
		Role:     "faculty",
		Password: "longenough",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeleteUser(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.seedInstitution(t, "inst-001")
	u := e.seedUser(t, "user-001", store.RoleFaculty)

	rec := e.do(t, http.MethodDelete, "/api/v1/users/"+u.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodDelete, "/api/v1/users/"+u.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListUsers_FilterByRole(t *testing.T) {
	e := newTestEnv(t)
	_, token := e.seedInstitution(t, "inst-001")
	e.seedUser(t, "user-001", store.RoleFaculty)
	e.seedUser(t, "user-002", store.RoleStudent)

	rec := e.do(t, http.MethodGet, "/api/v1/users?role=faculty", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var views []UserView
	decodeData(t, rec, &views)
	require.Len(t, views, 1)
	assert.Equal(t, "user-001", views[0].ID)
}
