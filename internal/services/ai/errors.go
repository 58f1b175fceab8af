// File: internal/services/ai/errors.go
package ai

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeProvider   ErrorType = "PROVIDER"
	ErrTypeRateLimit  ErrorType = "RATE_LIMIT"
	ErrTypeQuota      ErrorType = "QUOTA"
	ErrTypeModel      ErrorType = "MODEL"
	ErrTypeValidation ErrorType = "VALIDATION"
)

// ErrInvalidConversationState means the conversation cannot be sent: it is empty
// or its last turn is not from the user.
var ErrInvalidConversationState = errors.New("invalid conversation state")

type AIError struct {
	Type      ErrorType
	Code      int
	Message   string
	Model     string
	Operation string
	Cause     error
}

func (e *AIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("AI %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("AI %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AIError) Unwrap() error {
	return e.Cause
}

func NewConfigError(msg string) *AIError {
	return &AIError{Type: ErrTypeConfig, Message: msg, Operation: "config"}
}

func NewProviderError(operation, msg string, cause error) *AIError {
	return &AIError{Type: ErrTypeProvider, Operation: operation, Message: msg, Cause: cause}
}

func newConversationError(msg string) *AIError {
	return &AIError{
		Type:      ErrTypeValidation,
		Operation: "reply",
		Message:   msg,
		Cause:     ErrInvalidConversationState,
	}
}

// IsConfigError reports whether err is a configuration problem that retries cannot fix.
func IsConfigError(err error) bool {
	var aiErr *AIError
	return errors.As(err, &aiErr) && aiErr.Type == ErrTypeConfig
}
