// File: internal/services/chat/interface.go
package chat

import (
	"context"

	"github.com/iyunix/go-counselor/internal/domain"
)

// Service is the chat surface the HTTP layer depends on.
type Service interface {
	CreateSession(ctx context.Context, in CreateSessionInput) (*domain.ChatSession, error)
	ListSessions(ctx context.Context, userID *string, limit, offset int) (*SessionPage, error)
	GetSession(ctx context.Context, sessionID string) (*SessionWithMessages, error)
	SendMessage(ctx context.Context, sessionID, content string, isFirstMessage bool) (*Exchange, error)
	DeleteSession(ctx context.Context, sessionID string) error
	UpdateSessionTitle(ctx context.Context, sessionID, title string) (*domain.ChatSession, error)
	UpdateMessageStatus(ctx context.Context, messageID string, status domain.MessageStatus) (*domain.Message, error)
}
