package chat

import (
	"context"
	"time"

	"github.com/iyunix/go-counselor/internal/domain"
)

// ChatRepository handles chat session data operations.
type ChatRepository interface {
	Create(ctx context.Context, session *domain.ChatSession) (*domain.ChatSession, error)
	FindByID(ctx context.Context, id string) (*domain.ChatSession, error)
	ExistsByID(ctx context.Context, id string) (bool, error)
	// FindPage lists sessions newest activity first; a nil userID lists every session.
	FindPage(ctx context.Context, userID *string, limit, offset int) ([]domain.ChatSession, error)
	CountByUserID(ctx context.Context, userID *string) (int64, error)
	UpdateTitle(ctx context.Context, id, title string) error
	TouchUpdatedAt(ctx context.Context, id string, at time.Time) error
	// DeleteWithMessages removes the session and its messages in one transaction.
	DeleteWithMessages(ctx context.Context, id string) error
}
