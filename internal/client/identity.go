// ABOUTME: Identity operations: logins, who-am-I verification, user lifecycle
// ABOUTME: User creation and deletion back the provisioning saga's two phases

package client

import (
	"context"
	"net/http"

	"github.com/campushq/registrar/internal/api"
	"github.com/campushq/registrar/internal/store"
)

// Health checks that the API is reachable and healthy.
func (c *Client) Health(ctx context.Context) error {
	return c.doPublic(ctx, http.MethodGet, "/api/v1/health", nil, nil)
}

// InstitutionLogin exchanges credentials for an institution identity and bearer token.
func (c *Client) InstitutionLogin(ctx context.Context, email, password string) (*api.InstitutionLoginResponse, error) {
	var resp api.InstitutionLoginResponse
	err := c.doPublic(ctx, http.MethodPost, "/api/v1/institution/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// UserLogin exchanges credentials for a user identity and session token.
// The caller is responsible for enforcing any expected role.
func (c *Client) UserLogin(ctx context.Context, email, password string) (*api.UserLoginResponse, error) {
	var resp api.UserLoginResponse
	err := c.doPublic(ctx, http.MethodPost, "/api/v1/users/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// InstitutionMe verifies an institution credential and returns its identity.
func (c *Client) InstitutionMe(ctx context.Context, token string) (*api.InstitutionView, error) {
	var view api.InstitutionView
	if err := c.doInstitution(ctx, http.MethodGet, "/api/v1/institution/me", token, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// UserMe verifies a user credential and returns its identity.
func (c *Client) UserMe(ctx context.Context, token string) (*api.UserView, error) {
	var view api.UserView
	if err := c.doUser(ctx, http.MethodGet, "/api/v1/users/me", token, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// CreateUser creates a new identity record.
func (c *Client) CreateUser(ctx context.Context, token string, req api.CreateUserRequest) (*api.UserView, error) {
	var view api.UserView
	if err := c.doInstitution(ctx, http.MethodPost, "/api/v1/users", token, req, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// DeleteUser removes an identity record. Used as the saga's compensating action.
func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.doInstitution(ctx, http.MethodDelete, "/api/v1/users/"+id, token, nil, nil)
}

// ListUsers lists identities, optionally filtered by role.
func (c *Client) ListUsers(ctx context.Context, token string, role store.UserRole) ([]api.UserView, error) {
	path := "/api/v1/users"
	if role != "" {
		path += "?role=" + string(role)
	}
	var views []api.UserView
	if err := c.doInstitution(ctx, http.MethodGet, path, token, nil, &views); err != nil {
		return nil, err
	}
	return views, nil
}
