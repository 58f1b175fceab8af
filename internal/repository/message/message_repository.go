// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/iyunix/go-counselor/internal/domain"
)

var ErrMessageNotFound = errors.New("message not found")

// ErrStatusConflict means the message was no longer in the expected status when updated.
var ErrStatusConflict = errors.New("message status changed concurrently")

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if err := validateMessageInput(message); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return message, nil
}

func (r *gormMessageRepository) FindByID(ctx context.Context, messageID string) (*domain.Message, error) {
	if messageID == "" {
		return nil, ErrMessageNotFound
	}

	var message domain.Message
	err := r.db.WithContext(ctx).Where("id = ?", messageID).First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("find message: %w", err)
	}
	return &message, nil
}

func (r *gormMessageRepository) FindBySessionID(ctx context.Context, sessionID string) ([]domain.Message, error) {
	messages := []domain.Message{}
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list session messages: %w", err)
	}
	return messages, nil
}

func (r *gormMessageRepository) CountBySessionID(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Message{}).Where("session_id = ?", sessionID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count session messages: %w", err)
	}
	return count, nil
}

// UpdateStatus moves a message from one status to another, guarding against a
// concurrent change between read and write.
func (r *gormMessageRepository) UpdateStatus(ctx context.Context, messageID string, from, to domain.MessageStatus) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ? AND status = ?", messageID, from).
		Update("status", to)
	if result.Error != nil {
		return fmt.Errorf("update message status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}

func validateMessageInput(message *domain.Message) error {
	if message == nil {
		return errors.New("message cannot be nil")
	}
	if message.SessionID == "" {
		return errors.New("session ID is required")
	}
	if strings.TrimSpace(message.Content) == "" {
		return errors.New("message content cannot be empty")
	}
	if !message.Role.IsValid() {
		return fmt.Errorf("invalid message role %q", message.Role)
	}
	if message.Status != "" && !message.Status.IsValid() {
		return fmt.Errorf("invalid message status %q", message.Status)
	}
	return nil
}
