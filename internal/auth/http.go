// ABOUTME: HTTP middleware enforcing per-kind credential transport
// ABOUTME: Institutions authenticate via bearer header, users via session cookie

package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// UserTokenCookie is the cookie carrying the user credential. Institution
// credentials travel in the Authorization header instead; the two transports
// are fixed per kind and never mixed.
const UserTokenCookie = "registrar_user_token"

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// InstitutionLookup resolves an institution subject ID to its role-free auth context.
type InstitutionLookup func(r *http.Request, id string) (*AuthContext, error)

// UserLookup resolves a user subject ID to an auth context carrying its role.
type UserLookup func(r *http.Request, id string) (*AuthContext, error)

// RequireInstitution creates middleware that authenticates the institution kind
// from a bearer token and attaches the AuthContext to the request context.
func RequireInstitution(verifier TokenVerifier, lookup InstitutionLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				writeUnauthorized(w, errMsg)
				return
			}

			subjectID, err := verifier.Verify(token, KindInstitution)
			if err != nil {
				writeUnauthorized(w, "invalid token")
				return
			}

			authCtx, err := lookup(r, subjectID)
			if err != nil {
				writeUnauthorized(w, "institution not found")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), authCtx)))
		})
	}
}

// RequireUser creates middleware that authenticates the user kind from the
// session cookie and attaches the AuthContext to the request context.
func RequireUser(verifier TokenVerifier, lookup UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(UserTokenCookie)
			if err != nil || cookie.Value == "" {
				writeUnauthorized(w, "missing session cookie")
				return
			}

			subjectID, err := verifier.Verify(cookie.Value, KindUser)
			if err != nil {
				writeUnauthorized(w, "invalid token")
				return
			}

			authCtx, err := lookup(r, subjectID)
			if err != nil {
				writeUnauthorized(w, "user not found")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), authCtx)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"data":    nil,
		"message": message,
	})
}
