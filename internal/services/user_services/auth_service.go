// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iyunix/go-counselor/internal/auth"
	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/repository/account"
	"github.com/iyunix/go-counselor/internal/repository/user"
)

// SessionTTL is the lifetime of a login session and of the token issued for it.
const SessionTTL = 7 * 24 * time.Hour

type AuthService struct {
	userRepo     user.UserRepository
	accountRepo  account.AccountRepository
	verification *VerificationService
	lockout      *LockoutService
	jwtSecretKey []byte
	logger       Logger
}

func NewAuthService(
	userRepo user.UserRepository,
	accountRepo account.AccountRepository,
	verification *VerificationService,
	lockout *LockoutService,
	jwtSecretKey string,
	logger Logger,
) (*AuthService, error) {
	if userRepo == nil || accountRepo == nil {
		return nil, errors.New("user and account repositories are required")
	}
	if jwtSecretKey == "" {
		return nil, errors.New("JWT secret key is required")
	}
	if lockout == nil {
		lockout = NewLockoutService(logger)
	}
	return &AuthService{
		userRepo:     userRepo,
		accountRepo:  accountRepo,
		verification: verification,
		lockout:      lockout,
		jwtSecretKey: []byte(jwtSecretKey),
		logger:       logger,
	}, nil
}

// Register creates a credentials account and starts email verification. A
// verification mail failure is logged and does not fail registration.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	u := &domain.User{Name: strings.TrimSpace(name), Email: email}
	if err := u.IsValid(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegistration, err)
	}
	if err := u.HashPassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRegistration, err)
	}

	if existing, err := s.userRepo.FindByEmail(ctx, email); err == nil && existing != nil {
		s.logger.Warn("registration failed - email already exists", "email", maskEmail(email))
		return nil, ErrEmailTaken
	} else if err != nil && !errors.Is(err, user.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	created, err := s.userRepo.Create(ctx, u)
	if err != nil {
		s.logger.Error("user creation failed", "error", err, "email", maskEmail(email))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.accountRepo.Upsert(ctx, &domain.Account{
		Provider:          domain.ProviderCredentials,
		ProviderAccountID: created.ID,
		UserID:            created.ID,
		Type:              domain.ProviderCredentials,
	}); err != nil {
		s.logger.Error("failed to link credentials account", "error", err, "user_id", created.ID)
		return nil, fmt.Errorf("failed to link account: %w", err)
	}

	if s.verification != nil {
		if err := s.verification.SendVerification(ctx, created); err != nil {
			s.logger.Warn("verification mail not delivered", "user_id", created.ID, "error", err)
		}
	}

	s.logger.Info("user registered successfully", "user_id", created.ID, "email", maskEmail(email))
	return created, nil
}

// Login checks credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, email, password, sourceIP string) (*LoginResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if locked, remaining := s.lockout.IsAccountLocked(email); locked {
		s.logger.Warn("login attempt on locked account", "email", maskEmail(email), "remaining", remaining.String())
		return nil, ErrAccountLocked
	}

	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			s.lockout.RecordFailedAttempt(email, sourceIP)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := u.ValidatePassword(password); err != nil {
		if s.lockout.RecordFailedAttempt(email, sourceIP) {
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}
	s.lockout.ClearFailedAttempts(email)

	result, err := s.IssueSession(ctx, u)
	if err != nil {
		return nil, err
	}
	s.logger.Info("login successful", "user_id", u.ID, "verified", u.IsVerified())
	return result, nil
}

// IssueSession stores a new AuthSession for u and signs a token bound to it.
func (s *AuthService) IssueSession(ctx context.Context, u *domain.User) (*LoginResult, error) {
	sessionToken, err := randomToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}
	expires := time.Now().UTC().Add(SessionTTL)

	if err := s.accountRepo.CreateSession(ctx, &domain.AuthSession{
		SessionToken: sessionToken,
		UserID:       u.ID,
		Expires:      expires,
	}); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	token, err := auth.GenerateJWT(u.ID, sessionToken, s.jwtSecretKey, SessionTTL)
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", u.ID)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &LoginResult{User: u, Token: token, Expires: expires}, nil
}

// Authenticate resolves a token to its user. The token must verify and its
// session must still exist and be unexpired.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := auth.ValidateToken(token, s.jwtSecretKey)
	if err != nil {
		s.logger.Debug("JWT token validation failed", "error", err)
		return nil, ErrInvalidSession
	}

	session, err := s.accountRepo.FindSession(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, account.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session.UserID != claims.Subject || session.IsExpired(time.Now()) {
		return nil, ErrInvalidSession
	}

	u, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return u, nil
}

// Logout removes the session behind token. Unknown or invalid tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := auth.ValidateToken(token, s.jwtSecretKey)
	if err != nil {
		return nil
	}
	if err := s.accountRepo.DeleteSession(ctx, claims.SessionID); err != nil && !errors.Is(err, account.ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.logger.Info("user logged out", "user_id", claims.Subject)
	return nil
}

// PurgeExpiredSessions deletes sessions past their expiry.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.accountRepo.DeleteExpiredSessions(ctx, time.Now().UTC())
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
