// File: internal/services/chat/errors.go
package chat

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeInternal   ErrorType = "INTERNAL"
	ErrTypeConflict   ErrorType = "CONFLICT"
)

type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	SessionID string
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error {
	return e.Cause
}

func NewValidationError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewNotFoundError(operation, sessionID string) *ChatError {
	return &ChatError{
		Type:      ErrTypeNotFound,
		Operation: operation,
		Message:   "chat session not found",
		SessionID: sessionID,
	}
}

func NewMessageNotFoundError(operation, messageID string) *ChatError {
	return &ChatError{Type: ErrTypeNotFound, Operation: operation, Message: "message not found: " + messageID}
}

func NewConflictError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeConflict, Operation: operation, Message: msg}
}

func NewInternalError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeInternal, Operation: operation, Message: msg, Cause: cause}
}

// TypeOf returns the ChatError type carried by err, or ErrTypeInternal.
func TypeOf(err error) ErrorType {
	var chatErr *ChatError
	if errors.As(err, &chatErr) {
		return chatErr.Type
	}
	return ErrTypeInternal
}

func IsNotFound(err error) bool   { return TypeOf(err) == ErrTypeNotFound }
func IsValidation(err error) bool { return TypeOf(err) == ErrTypeValidation }
