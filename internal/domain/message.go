// File: internal/domain/message.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

func (r MessageRole) IsValid() bool {
	return r == RoleUser || r == RoleAssistant
}

type MessageStatus string

const (
	StatusSending   MessageStatus = "sending"
	StatusSent      MessageStatus = "sent"
	StatusDelivered MessageStatus = "delivered"
	StatusError     MessageStatus = "error"
)

// statusTransitions lists the legal next states; delivered and error are terminal.
var statusTransitions = map[MessageStatus][]MessageStatus{
	StatusSending: {StatusSent, StatusError},
	StatusSent:    {StatusDelivered, StatusError},
}

func (s MessageStatus) IsValid() bool {
	switch s {
	case StatusSending, StatusSent, StatusDelivered, StatusError:
		return true
	}
	return false
}

// CanTransitionTo reports whether a message may move from s to next.
func (s MessageStatus) CanTransitionTo(next MessageStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Message represents a single turn within a chat session. Role is fixed at creation.
type Message struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	SessionID string         `json:"sessionId" gorm:"not null;index;size:36"`
	Content   string         `json:"content" gorm:"type:text;not null"`
	Role      MessageRole    `json:"role" gorm:"not null;size:16"`
	Status    MessageStatus  `json:"status" gorm:"not null;size:16;default:sent"`
	CreatedAt time.Time      `json:"timestamp" gorm:"index"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = StatusSent
	}
	return nil
}
