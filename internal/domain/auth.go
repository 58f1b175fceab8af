// File: internal/domain/auth.go
package domain

import "time"

// Provider identifiers stored in Account.Provider.
const (
	ProviderCredentials = "credentials"
	ProviderGoogle      = "google"
)

// Account links a User to an external identity provider.
type Account struct {
	Provider          string  `json:"provider" gorm:"primaryKey;size:64"`
	ProviderAccountID string  `json:"providerAccountId" gorm:"primaryKey;size:255"`
	UserID            string  `json:"userId" gorm:"not null;index;size:36"`
	Type              string  `json:"type" gorm:"not null;size:32"`
	RefreshToken      *string `json:"-"`
	AccessToken       *string `json:"-"`
	ExpiresAt         *int64  `json:"expiresAt,omitempty"`
	TokenType         *string `json:"tokenType,omitempty"`
	Scope             *string `json:"scope,omitempty"`
	IDToken           *string `json:"-"`
	SessionState      *string `json:"-"`
}

// AuthSession is a server-side login session referenced by the sid claim of issued tokens.
type AuthSession struct {
	SessionToken string    `json:"-" gorm:"primaryKey;size:128"`
	UserID       string    `json:"userId" gorm:"not null;index;size:36"`
	Expires      time.Time `json:"expires" gorm:"not null"`
}

func (AuthSession) TableName() string {
	return "sessions"
}

// IsExpired reports whether the session can no longer authenticate requests.
func (s *AuthSession) IsExpired(now time.Time) bool {
	return !now.Before(s.Expires)
}

// VerificationToken is a single-use email verification token.
type VerificationToken struct {
	Identifier string    `json:"identifier" gorm:"primaryKey;size:255"`
	Token      string    `json:"-" gorm:"primaryKey;size:128"`
	Expires    time.Time `json:"expires" gorm:"not null"`
}

// IsValid checks if the verification token is still usable.
func (v *VerificationToken) IsValid(now time.Time) bool {
	return now.Before(v.Expires)
}
