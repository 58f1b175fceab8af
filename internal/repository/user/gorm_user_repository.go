// File: internal/repository/user/gorm_user_repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/go-counselor/internal/domain"
)

var ErrUserNotFound = errors.New("user not found")

type gormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user cannot be nil")
	}
	if err := user.IsValid(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, ErrUserNotFound
	}

	var user domain.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	return handleFindError(err, &user)
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, ErrUserNotFound
	}

	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return handleFindError(err, &user)
}

func (r *gormUserRepository) Update(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return errors.New("invalid user ID")
	}
	if err := user.IsValid(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *gormUserRepository) MarkEmailVerified(ctx context.Context, email string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("email = ?", domain.NormalizeEmail(email)).
		Update("email_verified", at.UTC())
	if result.Error != nil {
		return fmt.Errorf("mark email verified: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *gormUserRepository) Delete(ctx context.Context, userID string) error {
	result := r.db.WithContext(ctx).Where("id = ?", userID).Delete(&domain.User{})
	if result.Error != nil {
		return fmt.Errorf("delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func handleFindError(err error, user *domain.User) (*domain.User, error) {
	if err == nil {
		return user, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return nil, fmt.Errorf("find user: %w", err)
}
