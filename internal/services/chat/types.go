// File: internal/services/chat/types.go
package chat

import "github.com/iyunix/go-counselor/internal/domain"

// Logger defines the logging interface used across chat services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// SessionWithMessages is a session plus its full history, oldest first.
type SessionWithMessages struct {
	Session  *domain.ChatSession `json:"session"`
	Messages []domain.Message    `json:"messages"`
}

// Exchange is the pair of messages persisted by one send.
type Exchange struct {
	UserMessage      *domain.Message `json:"userMessage"`
	AssistantMessage *domain.Message `json:"assistantMessage"`
	// Title is set when the send renamed the session.
	Title string `json:"title,omitempty"`
}

// SessionPage is one page of a session listing.
type SessionPage struct {
	Sessions []domain.ChatSession `json:"sessions"`
	Total    int64                `json:"total"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
}

type CreateSessionInput struct {
	Title       *string
	Description *string
	UserID      *string
}
