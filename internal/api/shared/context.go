// Package shared holds the request context, decoding and response helpers
// used by the handlers and middleware.
package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/phrazzld/recite-api/internal/platform/logger"
)

// ContextKey is the type of request context keys set by this package.
type ContextKey string

const (
	// UserIDContextKey holds the authenticated requester's ID.
	UserIDContextKey ContextKey = "userID"

	// TraceIDLength is the number of random bytes in a trace ID.
	TraceIDLength = 16
)

// WithUserID stores the authenticated requester in ctx.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// UserIDFromContext returns the authenticated requester. A missing or nil ID
// reports false.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// SetTraceID stores a fresh trace ID in ctx.
func SetTraceID(ctx context.Context) context.Context {
	return logger.WithTraceID(ctx, generateTraceID())
}

// GetTraceID returns the trace ID of ctx, or "" if none was set.
func GetTraceID(ctx context.Context) string {
	return logger.TraceID(ctx)
}

// generateTraceID returns 32 hex characters. If the random source fails the
// bytes of a v4 UUID are used instead.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if _, err := rand.Read(b); err != nil {
		id := uuid.New()
		return hex.EncodeToString(id[:])
	}
	return hex.EncodeToString(b)
}
