// File: internal/handlers/log_handler.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/iyunix/go-counselor/internal/dtos"
)

type LogHandler struct {
	logger Logger
}

func NewLogHandler(logger Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

// LogFrontendEvent handles incoming log requests from the frontend.
func (h *LogHandler) LogFrontendEvent(w http.ResponseWriter, r *http.Request) {
	var payload dtos.FrontendLogDTO
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, dtos.CodeBadRequest, "Invalid request body")
		return
	}
	if details := dtos.Validate(payload); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	fields := []interface{}{"source", "client", "context", payload.Context, "user_agent", r.UserAgent()}
	switch strings.ToLower(payload.Level) {
	case "error":
		h.logger.Error(payload.Message, fields...)
	case "warn":
		h.logger.Warn(payload.Message, fields...)
	case "debug":
		h.logger.Debug(payload.Message, fields...)
	default:
		h.logger.Info(payload.Message, fields...)
	}

	w.WriteHeader(http.StatusNoContent)
}
