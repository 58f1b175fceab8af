// File: internal/domain/chat.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultSessionTitle is used until a title is generated or set by the user.
const DefaultSessionTitle = "New Chat Session"

// MaxSessionTitleLength bounds user-provided and generated titles.
const MaxSessionTitleLength = 100

// ChatSession represents a single counseling conversation. UserID is nil for anonymous sessions.
type ChatSession struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	UserID      *string   `json:"userId,omitempty" gorm:"index;size:36"`
	Title       string    `json:"title" gorm:"not null"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" gorm:"index"`

	Messages []Message `json:"-" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

func (c *ChatSession) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// HasPlaceholderTitle reports whether the session still carries the default title.
func (c *ChatSession) HasPlaceholderTitle() bool {
	return c.Title == "" || c.Title == DefaultSessionTitle
}
