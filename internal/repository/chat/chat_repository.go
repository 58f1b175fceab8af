// File: internal/repository/chat/chat_repository.go
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/go-counselor/internal/domain"
)

var ErrChatSessionNotFound = errors.New("chat session not found")

const maxPageSize = 100

type gormChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &gormChatRepository{db: db}
}

func (r *gormChatRepository) Create(ctx context.Context, session *domain.ChatSession) (*domain.ChatSession, error) {
	if err := validateSessionInput(session); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("create chat session: %w", err)
	}
	return session, nil
}

func (r *gormChatRepository) FindByID(ctx context.Context, id string) (*domain.ChatSession, error) {
	if id == "" {
		return nil, ErrChatSessionNotFound
	}

	var session domain.ChatSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	return handleFindError(err, &session)
}

func (r *gormChatRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.ChatSession{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check chat session existence: %w", err)
	}
	return count > 0, nil
}

func (r *gormChatRepository) FindPage(ctx context.Context, userID *string, limit, offset int) ([]domain.ChatSession, error) {
	if limit <= 0 || limit > maxPageSize {
		return nil, fmt.Errorf("invalid limit: must be between 1 and %d", maxPageSize)
	}
	if offset < 0 {
		return nil, errors.New("invalid offset: must be >= 0")
	}

	query := r.db.WithContext(ctx).Model(&domain.ChatSession{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	sessions := []domain.ChatSession{}
	err := query.
		Order("updated_at DESC").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("list chat sessions: %w", err)
	}
	return sessions, nil
}

func (r *gormChatRepository) CountByUserID(ctx context.Context, userID *string) (int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.ChatSession{})
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count chat sessions: %w", err)
	}
	return count, nil
}

// UpdateTitle sets the title; gorm refreshes updated_at in the same statement.
func (r *gormChatRepository) UpdateTitle(ctx context.Context, id, title string) error {
	if err := validateTitle(title); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&domain.ChatSession{}).
		Where("id = ?", id).
		Update("title", title)
	if result.Error != nil {
		return fmt.Errorf("update chat session title: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrChatSessionNotFound
	}
	return nil
}

func (r *gormChatRepository) TouchUpdatedAt(ctx context.Context, id string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.ChatSession{}).
		Where("id = ?", id).
		UpdateColumn("updated_at", at.UTC())
	if result.Error != nil {
		return fmt.Errorf("touch chat session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrChatSessionNotFound
	}
	return nil
}

func (r *gormChatRepository) DeleteWithMessages(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&domain.Message{}).Error; err != nil {
			return fmt.Errorf("delete session messages: %w", err)
		}

		result := tx.Where("id = ?", id).Delete(&domain.ChatSession{})
		if result.Error != nil {
			return fmt.Errorf("delete chat session: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrChatSessionNotFound
		}
		return nil
	})
}

func validateSessionInput(session *domain.ChatSession) error {
	if session == nil {
		return errors.New("chat session cannot be nil")
	}
	return validateTitle(session.Title)
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("title is required")
	}
	if len([]rune(title)) > domain.MaxSessionTitleLength {
		return fmt.Errorf("title must be %d characters or less", domain.MaxSessionTitleLength)
	}
	return nil
}

func handleFindError(err error, session *domain.ChatSession) (*domain.ChatSession, error) {
	if err == nil {
		return session, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrChatSessionNotFound
	}
	return nil, fmt.Errorf("find chat session: %w", err)
}
