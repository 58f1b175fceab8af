// File: internal/handlers/response.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/iyunix/go-counselor/internal/dtos"
	chatservice "github.com/iyunix/go-counselor/internal/services/chat"
)

const maxBodyBytes = 1 << 20

// Logger defines the logging interface used by handlers
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

var errEmptyBody = errors.New("request body is empty")

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, status int, code, message string, details ...string) {
	writeJSON(w, status, dtos.ErrorResponse{Error: message, Code: code, Details: details})
}

func writeValidationError(w http.ResponseWriter, details []string) {
	writeError(w, http.StatusBadRequest, dtos.CodeBadRequest, strings.Join(details, "; "), details...)
}

// writeChatError maps a chat service failure onto the API error taxonomy.
// Internal causes are logged, never returned to the client.
func writeChatError(w http.ResponseWriter, logger Logger, err error) {
	var chatErr *chatservice.ChatError
	if !errors.As(err, &chatErr) {
		logger.Error("unexpected chat error", "error", err)
		writeError(w, http.StatusInternalServerError, dtos.CodeInternal, "Something went wrong on our end.")
		return
	}

	switch chatErr.Type {
	case chatservice.ErrTypeValidation:
		writeError(w, http.StatusBadRequest, dtos.CodeBadRequest, chatErr.Message)
	case chatservice.ErrTypeNotFound:
		writeError(w, http.StatusNotFound, dtos.CodeNotFound, capitalize(chatErr.Message))
	case chatservice.ErrTypeConflict:
		writeError(w, http.StatusConflict, dtos.CodeConflict, chatErr.Message)
	default:
		logger.Error("chat operation failed", "operation", chatErr.Operation, "error", err)
		writeError(w, http.StatusInternalServerError, dtos.CodeInternal, "Something went wrong on our end.")
	}
}

// decodeJSON reads a size-limited JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
