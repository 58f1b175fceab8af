// File: internal/services/mail_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/iyunix/go-counselor/internal/services/mail"
)

var verificationMailTemplate = template.Must(template.New("verify").Parse(`<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
	<h2>Welcome, {{.Name}}!</h2>
	<p>Confirm your email address to keep your counseling sessions tied to your account.</p>
	<a href="{{.Link}}" style="background-color: #2563eb; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Verify email</a>
	<p>Or copy this link: {{.Link}}</p>
	<p>The link expires in 24 hours. If you did not sign up, ignore this email.</p>
</div>`))

// MailService sends account mail through the configured provider with retries.
type MailService struct {
	provider mail.Provider
	baseURL  string
	retry    *mail.RetryConfig
	logger   Logger
}

// NewMailService uses SMTP when a relay is configured and the log provider otherwise.
func NewMailService(config *mail.Config, logger Logger) (*MailService, error) {
	if logger == nil {
		logger = &NoOpLogger{}
	}

	var provider mail.Provider
	if config.Enabled() {
		smtp, err := mail.NewSMTPProvider(config)
		if err != nil {
			return nil, err
		}
		provider = smtp
	} else {
		logger.Warn("SMTP_HOST not set, verification mail will only be logged")
		provider = mail.NewLogProvider(logger)
	}

	return NewMailServiceWithProvider(provider, config.BaseURL, logger), nil
}

func NewMailServiceWithProvider(provider mail.Provider, baseURL string, logger Logger) *MailService {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &MailService{
		provider: provider,
		baseURL:  strings.TrimRight(baseURL, "/"),
		retry:    mail.DefaultRetryConfig(),
		logger:   logger,
	}
}

func (s *MailService) ProviderName() string {
	return s.provider.Name()
}

// VerificationLink is the URL a user follows to confirm their address.
func (s *MailService) VerificationLink(identifier, token string) string {
	q := url.Values{}
	q.Set("identifier", identifier)
	q.Set("token", token)
	return s.baseURL + "/auth/verify-email?" + q.Encode()
}

func (s *MailService) SendVerificationEmail(ctx context.Context, to, name, token string) error {
	link := s.VerificationLink(to, token)

	var html bytes.Buffer
	if err := verificationMailTemplate.Execute(&html, struct{ Name, Link string }{name, link}); err != nil {
		return fmt.Errorf("render verification mail: %w", err)
	}

	msg := mail.Message{
		To:       to,
		Subject:  "Verify your email address",
		HTMLBody: html.String(),
		TextBody: fmt.Sprintf("Hi %s,\n\nConfirm your email address by opening this link:\n%s\n\nThe link expires in 24 hours.", name, link),
	}

	err := mail.RetryWithBackoff(ctx, s.retry, func(ctx context.Context) error {
		return s.provider.Send(ctx, msg)
	})
	if err != nil {
		s.logger.Error("failed to send verification email", "to", to, "provider", s.provider.Name(), "error", err)
		return err
	}
	s.logger.Info("verification email sent", "to", to, "provider", s.provider.Name())
	return nil
}
