// File: internal/handlers/chat_handler.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/dtos"
	"github.com/iyunix/go-counselor/internal/middleware"
	chatservice "github.com/iyunix/go-counselor/internal/services/chat"
)

var defaultPageSize = chatservice.DefaultConfig().DefaultPageSize

type ChatHandler struct {
	ChatService chatservice.Service
	logger      Logger
}

func NewChatHandler(cs chatservice.Service, logger Logger) *ChatHandler {
	return &ChatHandler{
		ChatService: cs,
		logger:      logger,
	}
}

// CreateSession handles POST /api/sessions. The body is optional.
func (h *ChatHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req dtos.CreateSessionRequestDTO
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, dtos.CodeBadRequest, "Invalid request body")
		return
	}
	if details := dtos.Validate(req); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	userID := req.UserID
	if userID == nil || strings.TrimSpace(*userID) == "" {
		if id, ok := middleware.UserIDFromContext(r.Context()); ok {
			userID = &id
		}
	}

	session, err := h.ChatService.CreateSession(r.Context(), chatservice.CreateSessionInput{
		Title:       req.Title,
		Description: req.Description,
		UserID:      userID,
	})
	if err != nil {
		writeChatError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// ListSessions handles GET /api/sessions?userId=&limit=&offset=.
func (h *ChatHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := intParam(q.Get("limit"), defaultPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, dtos.CodeBadRequest, "limit must be an integer")
		return
	}
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, dtos.CodeBadRequest, "offset must be an integer")
		return
	}

	var userID *string
	if id := strings.TrimSpace(q.Get("userId")); id != "" {
		userID = &id
	} else if id, ok := middleware.UserIDFromContext(r.Context()); ok {
		userID = &id
	}

	page, err := h.ChatService.ListSessions(r.Context(), userID, limit, offset)
	if err != nil {
		writeChatError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetSession handles GET /api/sessions/{id}.
func (h *ChatHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	result, err := h.ChatService.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeChatError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SendMessage handles POST /api/sessions/{id}/messages.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req dtos.SendMessageRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, dtos.CodeBadRequest, "Invalid request body")
		return
	}
	if details := dtos.Validate(req); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	exchange, err := h.ChatService.SendMessage(r.Context(), mux.Vars(r)["id"], req.Content, req.IsFirstMessage)
	if err != nil {
		writeChatError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, exchange)
}

// DeleteSession handles DELETE /api/sessions/{id}.
func (h *ChatHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.ChatService.DeleteSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeChatError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// UpdateSessionTitle handles PATCH /api/sessions/{id}.
func (h *ChatHandler) UpdateSessionTitle(w http.ResponseWriter, r *http.Request) {
	var req dtos.UpdateTitleRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, dtos.CodeBadRequest, "Invalid request body")
		return
	}
	if details := dtos.Validate(req); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	session, err := h.ChatService.UpdateSessionTitle(r.Context(), mux.Vars(r)["id"], req.Title)
	if err != nil {
		writeChatError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// UpdateMessageStatus handles PATCH /api/messages/{id}/status.
func (h *ChatHandler) UpdateMessageStatus(w http.ResponseWriter, r *http.Request) {
	var req dtos.UpdateMessageStatusRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, dtos.CodeBadRequest, "Invalid request body")
		return
	}
	if details := dtos.Validate(req); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	msg, err := h.ChatService.UpdateMessageStatus(r.Context(), mux.Vars(r)["id"], domain.MessageStatus(req.Status))
	if err != nil {
		writeChatError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func intParam(raw string, def int) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
