// File: internal/repository/verification/verification_repository.go
package verification

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/go-counselor/internal/domain"
)

// VerificationRepository interface for email verification token operations
type VerificationRepository interface {
	Create(ctx context.Context, token *domain.VerificationToken) error
	Find(ctx context.Context, identifier, token string) (*domain.VerificationToken, error)
	DeleteByIdentifier(ctx context.Context, identifier string) error
	DeleteExpired(ctx context.Context, now time.Time) error
}

// GormVerificationRepository implements VerificationRepository using GORM
type GormVerificationRepository struct {
	db *gorm.DB
}

func NewGormVerificationRepository(db *gorm.DB) VerificationRepository {
	return &GormVerificationRepository{db: db}
}

func (r *GormVerificationRepository) Create(ctx context.Context, token *domain.VerificationToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// Find returns nil, nil when no matching token exists.
func (r *GormVerificationRepository) Find(ctx context.Context, identifier, token string) (*domain.VerificationToken, error) {
	var vt domain.VerificationToken
	err := r.db.WithContext(ctx).
		Where("identifier = ? AND token = ?", identifier, token).
		First(&vt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &vt, nil
}

// DeleteByIdentifier removes every outstanding token for an address.
func (r *GormVerificationRepository) DeleteByIdentifier(ctx context.Context, identifier string) error {
	return r.db.WithContext(ctx).
		Where("identifier = ?", identifier).
		Delete(&domain.VerificationToken{}).Error
}

// DeleteExpired removes expired tokens (cleanup job)
func (r *GormVerificationRepository) DeleteExpired(ctx context.Context, now time.Time) error {
	return r.db.WithContext(ctx).
		Where("expires < ?", now.UTC()).
		Delete(&domain.VerificationToken{}).Error
}
