package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/recite-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func newTestService(t *testing.T, secret string, at time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newJWTService(config.AuthConfig{JWTSecret: secret, TokenLifetimeMinutes: 60}, func() time.Time {
		return at
	})
	require.NoError(t, err)
	return svc
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 0})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	svc := newTestService(t, testSecret, fixedTime)

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, AccessTokenType, claims.TokenType)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	signed := func(t *testing.T, claims jwt.Claims, method jwt.SigningMethod, key any) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		at      time.Time
		wantErr error
	}{
		{
			name: "valid token",
			token: func(t *testing.T) string {
				token, err := newTestService(t, testSecret, fixedTime).GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return token
			},
			at: fixedTime.Add(30 * time.Minute),
		},
		{
			name: "expired token",
			token: func(t *testing.T) string {
				token, err := newTestService(t, testSecret, fixedTime).GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return token
			},
			at:      fixedTime.Add(2 * time.Hour),
			wantErr: ErrExpiredToken,
		},
		{
			name: "within clock skew",
			token: func(t *testing.T) string {
				token, err := newTestService(t, testSecret, fixedTime).GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return token
			},
			at: fixedTime.Add(time.Hour + time.Minute),
		},
		{
			name: "not yet valid",
			token: func(t *testing.T) string {
				return signed(t, jwtCustomClaims{
					UserID:    userID,
					TokenType: AccessTokenType,
					RegisteredClaims: jwt.RegisteredClaims{
						Subject:   userID.String(),
						NotBefore: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(2 * time.Hour)),
					},
				}, jwt.SigningMethodHS256, []byte(testSecret))
			},
			at:      fixedTime,
			wantErr: ErrTokenNotYetValid,
		},
		{
			name: "invalid signature",
			token: func(t *testing.T) string {
				token, err := newTestService(t, "wrong-secret-that-is-long-enough-for-testing", fixedTime).
					GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return token
			},
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name:    "malformed token",
			token:   func(t *testing.T) string { return "this.is.not.a.valid.jwt.token" },
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong signing method",
			token: func(t *testing.T) string {
				return signed(t, jwtCustomClaims{
					UserID:    userID,
					TokenType: AccessTokenType,
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}, jwt.SigningMethodHS512, []byte(testSecret))
			},
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
		{
			name: "refresh token",
			token: func(t *testing.T) string {
				return signed(t, jwtCustomClaims{
					UserID:    userID,
					TokenType: "refresh",
					RegisteredClaims: jwt.RegisteredClaims{
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}, jwt.SigningMethodHS256, []byte(testSecret))
			},
			at:      fixedTime,
			wantErr: ErrWrongTokenType,
		},
		{
			name: "subject only",
			token: func(t *testing.T) string {
				return signed(t, jwtCustomClaims{
					TokenType: AccessTokenType,
					RegisteredClaims: jwt.RegisteredClaims{
						Subject:   userID.String(),
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}, jwt.SigningMethodHS256, []byte(testSecret))
			},
			at: fixedTime,
		},
		{
			name: "no user",
			token: func(t *testing.T) string {
				return signed(t, jwtCustomClaims{
					TokenType: AccessTokenType,
					RegisteredClaims: jwt.RegisteredClaims{
						Subject:   "not-a-uuid",
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
					},
				}, jwt.SigningMethodHS256, []byte(testSecret))
			},
			at:      fixedTime,
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			token := tt.token(t)
			claims, err := newTestService(t, testSecret, tt.at).ValidateToken(context.Background(), token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}
