// File: internal/services/mail/log_provider.go
package mail

import (
	"context"
	"sync"
)

// LogProvider writes mail to the log instead of sending it. It is used when no
// SMTP relay is configured and keeps the last messages for inspection.
type LogProvider struct {
	logger Logger

	mu   sync.Mutex
	sent []Message
}

func NewLogProvider(logger Logger) *LogProvider {
	return &LogProvider{logger: logger}
}

func (p *LogProvider) Name() string { return "log" }

func (p *LogProvider) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return &MailError{Type: ErrTypeValidation, Message: "recipient is required"}
	}
	p.mu.Lock()
	p.sent = append(p.sent, msg)
	if len(p.sent) > 50 {
		p.sent = p.sent[len(p.sent)-50:]
	}
	p.mu.Unlock()

	p.logger.Info("mail not sent, SMTP is not configured",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.TextBody)
	return nil
}

// Sent returns a copy of the retained messages, oldest first.
func (p *LogProvider) Sent() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Message(nil), p.sent...)
}
