// Package auth validates the bearer tokens that identify API callers.
// Tokens are issued by the identity service; GenerateToken exists for
// tooling and tests that need a token signed with the shared secret.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AccessTokenType is the "type" claim carried by access tokens.
const AccessTokenType = "access"

// JWTService signs and verifies HMAC access tokens.
type JWTService interface {
	// GenerateToken creates a signed JWT access token for the user.
	GenerateToken(ctx context.Context, userID uuid.UUID) (string, error)

	// ValidateToken validates the provided access token string and extracts the claims.
	// Returns ErrExpiredToken, ErrTokenNotYetValid, ErrWrongTokenType or
	// ErrInvalidToken when validation fails.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the validated view of a token. UserID falls back to the
// subject claim when the uid claim is absent.
type Claims struct {
	UserID    uuid.UUID `json:"uid,omitempty"`
	TokenType string    `json:"type,omitempty"`

	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
