// File: internal/dtos/chat.go
package dtos

// CreateSessionRequestDTO is the body of POST /api/sessions.
type CreateSessionRequestDTO struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	UserID      *string `json:"userId,omitempty" validate:"omitempty,max=36"`
}

// SendMessageRequestDTO is the body of POST /api/sessions/{id}/messages.
type SendMessageRequestDTO struct {
	Content        string `json:"content" validate:"required,max=10000"`
	IsFirstMessage bool   `json:"isFirstMessage"`
}

// UpdateTitleRequestDTO is the body of PATCH /api/sessions/{id}.
type UpdateTitleRequestDTO struct {
	Title string `json:"title" validate:"required,max=100"`
}

// UpdateMessageStatusRequestDTO is the body of PATCH /api/messages/{id}/status.
type UpdateMessageStatusRequestDTO struct {
	Status string `json:"status" validate:"required,oneof=sending sent delivered error"`
}

// FrontendLogDTO is a log event reported by the browser.
type FrontendLogDTO struct {
	Level   string `json:"level" validate:"omitempty,oneof=debug info warn error"`
	Message string `json:"message" validate:"required,max=4000"`
	Context any    `json:"context,omitempty"`
}
