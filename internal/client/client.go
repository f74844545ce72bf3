// ABOUTME: HTTP client for the registrar API with per-kind credential transport
// ABOUTME: Decodes the data/message envelope and maps failures to APIError

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/campushq/registrar/internal/auth"
)

// DefaultTimeout bounds every request so a hung server never wedges a flow
const DefaultTimeout = 15 * time.Second

// APIError represents a non-success response from the API. Message is the
// server's human-readable envelope message, surfaced verbatim.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// IsUnauthorized reports whether the error is a 401-class authentication
// failure. Callers treat these as "not authenticated", never retrying.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// Client calls the registrar API. Institution credentials are sent as bearer
// headers; user credentials are sent in the session cookie. The two transports
// are fixed per kind and never mixed.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a client for the API at baseURL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  slog.Default().With("component", "client"),
	}
}

// envelope mirrors the server's fixed response shape
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// doPublic performs an unauthenticated request.
func (c *Client) doPublic(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, "", "", body, out)
}

// doInstitution performs a request authenticated with an institution bearer token.
func (c *Client) doInstitution(ctx context.Context, method, path, token string, body, out any) error {
	return c.do(ctx, method, path, token, "", body, out)
}

// doUser performs a request authenticated with a user session cookie.
func (c *Client) doUser(ctx context.Context, method, path, token string, body, out any) error {
	return c.do(ctx, method, path, "", token, body, out)
}

func (c *Client) do(ctx context.Context, method, path, bearer, cookie string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: auth.UserTokenCookie, Value: cookie})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return fmt.Errorf("decoding response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}

	return nil
}
