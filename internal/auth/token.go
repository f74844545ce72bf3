// ABOUTME: JWT credential generation and verification for API requests
// ABOUTME: Uses HS256 signing with an actor-kind claim scoping each token

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ActorKind identifies which principal kind a credential belongs to.
// Institution and user credentials are never interchangeable.
type ActorKind string

const (
	KindInstitution ActorKind = "institution"
	KindUser        ActorKind = "user"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
	ErrMissingClaim = errors.New("missing required claim")
	ErrWrongKind    = errors.New("token issued for a different actor kind")
)

// TokenVerifier defines the interface for credential verification
type TokenVerifier interface {
	Verify(tokenString string, kind ActorKind) (subjectID string, err error)
}

// JWTVerifier implements TokenVerifier using HS256 signed JWTs
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a new JWT verifier with the given secret
func NewJWTVerifier(secret []byte) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// Verify validates the token, checks the embedded actor kind, and extracts the
// subject ID from the "sub" claim.
func (v *JWTVerifier) Verify(tokenString string, kind ActorKind) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	tokenKind, ok := claims["kind"].(string)
	if !ok || tokenKind == "" {
		return "", fmt.Errorf("%w: kind", ErrMissingClaim)
	}
	if ActorKind(tokenKind) != kind {
		return "", ErrWrongKind
	}

	return sub, nil
}

// Generate creates a new JWT credential for the given subject and actor kind
func (v *JWTVerifier) Generate(subjectID string, kind ActorKind, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  subjectID,
		"kind": string(kind),
		"iat":  now.Unix(),
		"exp":  now.Add(expiresIn).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
