// File: internal/services/mail/interface.go
package mail

import "context"

// Message is one outgoing email.
type Message struct {
	To       string
	Subject  string
	HTMLBody string
	TextBody string
}

type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Logger defines the logging interface used by mail providers
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
