// File: internal/middleware/constants.go
package middleware

import (
	"context"

	"github.com/iyunix/go-counselor/internal/domain"
)

// Context keys for middleware communication
type contextKey string

const (
	UserIDKey    contextKey = "user_id"
	UserKey      contextKey = "user"
	RequestIDKey contextKey = "request_id"
)

// AuthCookieName carries the signed session token.
const AuthCookieName = "auth_token"

// Logger defines the logging interface used by middleware
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(UserKey).(*domain.User)
	return u, ok && u != nil
}

// UserIDFromContext returns the authenticated user's id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserIDKey).(string)
	return id, ok && id != ""
}

func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
