// File: internal/services/user_services/verification_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/repository/user"
	"github.com/iyunix/go-counselor/internal/repository/verification"
)

// VerificationTTL is how long an emailed verification link stays valid.
const VerificationTTL = 24 * time.Hour

// VerificationService handles email verification workflows
type VerificationService struct {
	userRepo         user.UserRepository
	verificationRepo verification.VerificationRepository
	mailer           Mailer
	logger           Logger
}

func NewVerificationService(
	userRepo user.UserRepository,
	verificationRepo verification.VerificationRepository,
	mailer Mailer,
	logger Logger,
) *VerificationService {
	return &VerificationService{
		userRepo:         userRepo,
		verificationRepo: verificationRepo,
		mailer:           mailer,
		logger:           logger,
	}
}

// SendVerification replaces any outstanding token for u and mails a fresh link.
func (s *VerificationService) SendVerification(ctx context.Context, u *domain.User) error {
	if u.IsVerified() {
		s.logger.Info("verification requested for already verified user", "user_id", u.ID)
		return nil
	}

	token, err := randomToken(32)
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}

	if err := s.verificationRepo.DeleteByIdentifier(ctx, u.Email); err != nil {
		return fmt.Errorf("failed to clear old tokens: %w", err)
	}
	if err := s.verificationRepo.Create(ctx, &domain.VerificationToken{
		Identifier: u.Email,
		Token:      token,
		Expires:    time.Now().UTC().Add(VerificationTTL),
	}); err != nil {
		s.logger.Error("failed to save verification token", "error", err, "user_id", u.ID)
		return fmt.Errorf("failed to save verification token: %w", err)
	}

	if s.mailer == nil {
		return errors.New("no mailer configured")
	}
	if err := s.mailer.SendVerificationEmail(ctx, u.Email, u.Name, token); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	s.logger.Info("verification email queued", "user_id", u.ID)
	return nil
}

// VerifyEmail consumes a token and marks the address verified.
func (s *VerificationService) VerifyEmail(ctx context.Context, identifier, token string) (*domain.User, error) {
	identifier = domain.NormalizeEmail(identifier)
	if identifier == "" || token == "" {
		return nil, ErrInvalidVerification
	}

	record, err := s.verificationRepo.Find(ctx, identifier, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load verification token: %w", err)
	}
	if record == nil || !record.IsValid(time.Now()) {
		s.logger.Warn("invalid or expired verification token", "email", maskEmail(identifier))
		return nil, ErrInvalidVerification
	}

	if err := s.userRepo.MarkEmailVerified(ctx, identifier, time.Now().UTC()); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrInvalidVerification
		}
		return nil, fmt.Errorf("failed to verify email: %w", err)
	}
	if err := s.verificationRepo.DeleteByIdentifier(ctx, identifier); err != nil {
		s.logger.Warn("failed to delete used verification tokens", "error", err)
	}

	u, err := s.userRepo.FindByEmail(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	s.logger.Info("email verified", "user_id", u.ID)
	return u, nil
}

// Resend issues a new link for an unverified account. Unknown addresses are
// ignored so the endpoint does not reveal which emails are registered.
func (s *VerificationService) Resend(ctx context.Context, email string) error {
	u, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil
		}
		return fmt.Errorf("failed to load user: %w", err)
	}
	return s.SendVerification(ctx, u)
}
