// File: internal/repository/account/account_repository.go
package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iyunix/go-counselor/internal/domain"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrSessionNotFound = errors.New("auth session not found")
)

// AccountRepository stores provider links and server-side login sessions.
type AccountRepository interface {
	Upsert(ctx context.Context, account *domain.Account) error
	FindByProvider(ctx context.Context, provider, providerAccountID string) (*domain.Account, error)
	ListByUserID(ctx context.Context, userID string) ([]domain.Account, error)

	CreateSession(ctx context.Context, session *domain.AuthSession) error
	FindSession(ctx context.Context, token string) (*domain.AuthSession, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type gormAccountRepository struct {
	db *gorm.DB
}

func NewGormAccountRepository(db *gorm.DB) AccountRepository {
	return &gormAccountRepository{db: db}
}

// Upsert inserts the account or refreshes its tokens when (provider, provider_account_id) exists.
func (r *gormAccountRepository) Upsert(ctx context.Context, account *domain.Account) error {
	if account == nil || account.Provider == "" || account.ProviderAccountID == "" || account.UserID == "" {
		return errors.New("account provider, provider account ID and user ID are required")
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider"}, {Name: "provider_account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_token", "refresh_token", "expires_at", "token_type", "scope", "id_token",
		}),
	}).Create(account).Error
	if err != nil {
		return fmt.Errorf("upsert account: %w", err)
	}
	return nil
}

func (r *gormAccountRepository) FindByProvider(ctx context.Context, provider, providerAccountID string) (*domain.Account, error) {
	var account domain.Account
	err := r.db.WithContext(ctx).
		Where("provider = ? AND provider_account_id = ?", provider, providerAccountID).
		First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return &account, nil
}

func (r *gormAccountRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Account, error) {
	accounts := []domain.Account{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (r *gormAccountRepository) CreateSession(ctx context.Context, session *domain.AuthSession) error {
	if session == nil || session.SessionToken == "" || session.UserID == "" {
		return errors.New("session token and user ID are required")
	}
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("create auth session: %w", err)
	}
	return nil
}

func (r *gormAccountRepository) FindSession(ctx context.Context, token string) (*domain.AuthSession, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	var session domain.AuthSession
	err := r.db.WithContext(ctx).Where("session_token = ?", token).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("find auth session: %w", err)
	}
	return &session, nil
}

func (r *gormAccountRepository) DeleteSession(ctx context.Context, token string) error {
	result := r.db.WithContext(ctx).Where("session_token = ?", token).Delete(&domain.AuthSession{})
	if result.Error != nil {
		return fmt.Errorf("delete auth session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteExpiredSessions removes sessions whose expiry has passed (cleanup job).
func (r *gormAccountRepository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires <= ?", now.UTC()).Delete(&domain.AuthSession{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete expired auth sessions: %w", result.Error)
	}
	return result.RowsAffected, nil
}
