// File: internal/domain/user.go
package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// PasswordMinLength is the shortest password accepted at registration.
	PasswordMinLength = 6
	// PasswordHashCost is the bcrypt work factor for stored passwords.
	PasswordHashCost = 12
)

var ErrPasswordNotSet = errors.New("account has no password; sign in with the linked provider")

// User is an account holder. Password is nil for OAuth-only accounts.
type User struct {
	ID            string     `json:"id" gorm:"primaryKey;size:36"`
	Email         string     `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Name          string     `json:"name" gorm:"not null;size:255"`
	Image         *string    `json:"image,omitempty"`
	Password      *string    `json:"-"`
	EmailVerified *time.Time `json:"emailVerified,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	Accounts     []Account     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Sessions     []AuthSession `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	ChatSessions []ChatSession `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// HashPassword securely hashes the user's password.
func (u *User) HashPassword(password string) error {
	if len(password) < PasswordMinLength {
		return errors.New("password must be at least 6 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return err
	}
	h := string(hashed)
	u.Password = &h
	return nil
}

// ValidatePassword compares a plain-text password with the user's hashed password.
func (u *User) ValidatePassword(password string) error {
	if u.Password == nil {
		return ErrPasswordNotSet
	}
	return bcrypt.CompareHashAndPassword([]byte(*u.Password), []byte(password))
}

func (u *User) IsVerified() bool {
	return u.EmailVerified != nil
}

func (u *User) IsValid() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.New("name is required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return errors.New("a valid email is required")
	}
	return nil
}

// NormalizeEmail lowercases and trims an address so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
