// File: internal/services/mail/smtp_provider.go
package mail

import (
	"context"
	"strings"

	"gopkg.in/gomail.v2"
)

type SMTPProvider struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPProvider(config *Config) (*SMTPProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, &MailError{Type: ErrTypeConfig, Message: err.Error()}
	}
	return &SMTPProvider{
		dialer: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		from:   config.From,
	}, nil
}

func (p *SMTPProvider) Name() string { return "smtp" }

func (p *SMTPProvider) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return &MailError{Type: ErrTypeValidation, Message: "recipient is required"}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", p.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	if msg.TextBody != "" {
		m.SetBody("text/plain", msg.TextBody)
		if msg.HTMLBody != "" {
			m.AddAlternative("text/html", msg.HTMLBody)
		}
	} else {
		m.SetBody("text/html", msg.HTMLBody)
	}

	if err := p.dialer.DialAndSend(m); err != nil {
		return &MailError{Type: ErrTypeNetwork, Message: "smtp delivery failed", Cause: err}
	}
	return nil
}
