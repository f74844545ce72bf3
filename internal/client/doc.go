// Package client provides a typed HTTP client for the registrar API.
//
// All responses are decoded from the {data, message} envelope; non-success
// statuses become *APIError with the server's message intact. IsUnauthorized
// classifies 401-class failures so callers can force the owning session slot
// to logout.
//
// Requests carry at most one credential: institution operations send a bearer
// header, user operations send the session cookie.
package client
