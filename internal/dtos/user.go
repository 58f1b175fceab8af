// File: internal/dtos/user.go
package dtos

import (
	"time"

	"github.com/iyunix/go-counselor/internal/domain"
)

// UserResponseDTO defines what fields to expose in user API responses.
// The password hash and provider tokens are never included.
type UserResponseDTO struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Image         *string  `json:"image,omitempty"`
	EmailVerified bool     `json:"emailVerified"`
	Providers     []string `json:"providers,omitempty"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
}

// RegisterRequestDTO represents the expected payload to create a new user.
type RegisterRequestDTO struct {
	Name     string `json:"name" validate:"required,min=1,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=128"`
}

// LoginRequestDTO represents the login payload.
type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// LoginResponseDTO represents the login response.
type LoginResponseDTO struct {
	User      UserResponseDTO `json:"user"`
	Token     string          `json:"token"`
	ExpiresAt string          `json:"expiresAt"`
}

// ResendVerificationRequestDTO asks for a fresh verification link.
type ResendVerificationRequestDTO struct {
	Email string `json:"email" validate:"required,email"`
}

// ProfileUpdateRequestDTO represents the payload to update the current user.
type ProfileUpdateRequestDTO struct {
	Name  *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Image *string `json:"image,omitempty" validate:"omitempty,max=2048"`
}

// FromDomain maps a domain.User to UserResponseDTO for public API responses.
func FromDomain(user domain.User) UserResponseDTO {
	return UserResponseDTO{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Image:         user.Image,
		EmailVerified: user.IsVerified(),
		CreatedAt:     user.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     user.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// WithProviders returns dto with the linked sign-in providers attached.
func (dto UserResponseDTO) WithProviders(providers []string) UserResponseDTO {
	dto.Providers = providers
	return dto
}

// ErrorResponse is the body of every failed API call.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

// Error codes carried in ErrorResponse.Code.
const (
	CodeBadRequest      = "BAD_REQUEST"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeInternal        = "INTERNAL_SERVER_ERROR"
)
