package user

import (
	"context"
	"time"

	"github.com/iyunix/go-counselor/internal/domain"
)

// UserRepository handles user data operations.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	MarkEmailVerified(ctx context.Context, email string, at time.Time) error
	Delete(ctx context.Context, userID string) error
}
