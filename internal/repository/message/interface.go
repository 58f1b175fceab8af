// File: internal/repository/message/interface.go
package message

import (
	"context"

	"github.com/iyunix/go-counselor/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindByID(ctx context.Context, messageID string) (*domain.Message, error)
	// FindBySessionID returns the full history in chronological order.
	FindBySessionID(ctx context.Context, sessionID string) ([]domain.Message, error)
	CountBySessionID(ctx context.Context, sessionID string) (int64, error)
	UpdateStatus(ctx context.Context, messageID string, from, to domain.MessageStatus) error
}
