package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/recite-api/internal/service/auth"
)

// MockJWTService is a configurable auth.JWTService. A non-nil function field
// takes precedence over the canned return values.
type MockJWTService struct {
	GenerateTokenFn func(ctx context.Context, userID uuid.UUID) (string, error)
	ValidateTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	Token       string
	Err         error
	Claims      *auth.Claims
	ValidateErr error

	// Validated records every token string passed to ValidateToken.
	Validated []string
}

var _ auth.JWTService = (*MockJWTService)(nil)

// ClaimsFor returns a mock that accepts any token as belonging to userID.
func ClaimsFor(userID uuid.UUID) *MockJWTService {
	return &MockJWTService{Claims: &auth.Claims{UserID: userID, TokenType: auth.AccessTokenType}}
}

func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID)
	}
	return m.Token, m.Err
}

func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	m.Validated = append(m.Validated, tokenString)
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}
