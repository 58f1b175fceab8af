// File: internal/services/user_services/user_service.go
package user_services

import (
	"context"
	"fmt"
	"strings"

	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/repository/account"
	"github.com/iyunix/go-counselor/internal/repository/user"
)

// Profile is the public view of the signed-in user.
type Profile struct {
	User      *domain.User `json:"user"`
	Providers []string     `json:"providers"`
}

// UserService serves profile reads and edits for signed-in users.
type UserService struct {
	userRepo    user.UserRepository
	accountRepo account.AccountRepository
	logger      Logger
}

func NewUserService(userRepo user.UserRepository, accountRepo account.AccountRepository, logger Logger) *UserService {
	return &UserService{userRepo: userRepo, accountRepo: accountRepo, logger: logger}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	accounts, err := s.accountRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	providers := make([]string, 0, len(accounts))
	for _, a := range accounts {
		providers = append(providers, a.Provider)
	}
	return &Profile{User: u, Providers: providers}, nil
}

// UpdateProfile changes the display name and avatar. Nil fields are left as is.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, name, image *string) (*domain.User, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name != nil {
		if strings.TrimSpace(*name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidProfile)
		}
		u.Name = strings.TrimSpace(*name)
	}
	if image != nil {
		img := strings.TrimSpace(*image)
		if img == "" {
			u.Image = nil
		} else {
			u.Image = &img
		}
	}
	if err := s.userRepo.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	s.logger.Info("profile updated", "user_id", u.ID)
	return u, nil
}
