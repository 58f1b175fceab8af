// File: internal/services/user_services/types.go
package user_services

import (
	"context"
	"errors"
	"time"

	"github.com/iyunix/go-counselor/internal/domain"
)

// Logger interface for all user services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Mailer delivers account mail.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
}

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrEmailTaken          = errors.New("an account with this email already exists")
	ErrInvalidRegistration = errors.New("invalid registration details")
	ErrAccountLocked       = errors.New("too many failed attempts, try again later")
	ErrInvalidSession      = errors.New("session is invalid or expired")
	ErrInvalidVerification = errors.New("verification link is invalid or expired")
	ErrInvalidOAuthState   = errors.New("oauth state is invalid or expired")
	ErrInvalidProfile      = errors.New("invalid profile update")
)

// LoginResult is what a successful sign-in hands to the HTTP layer.
type LoginResult struct {
	User    *domain.User
	Token   string
	Expires time.Time
}

// maskEmail keeps enough of an address to correlate log lines.
func maskEmail(email string) string {
	return email[:min(3, len(email))] + "****"
}
