package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/dtos"
	"github.com/iyunix/go-counselor/internal/middleware"
	chatservice "github.com/iyunix/go-counselor/internal/services/chat"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type logLine struct {
	level string
	msg   string
}

type captureLogger struct {
	mu    sync.Mutex
	lines []logLine
}

func (l *captureLogger) add(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, logLine{level, msg})
}

func (l *captureLogger) Info(msg string, _ ...interface{})  { l.add("info", msg) }
func (l *captureLogger) Error(msg string, _ ...interface{}) { l.add("error", msg) }
func (l *captureLogger) Debug(msg string, _ ...interface{}) { l.add("debug", msg) }
func (l *captureLogger) Warn(msg string, _ ...interface{})  { l.add("warn", msg) }

// fakeChatService records its inputs and returns canned results.
type fakeChatService struct {
	err error

	createdWith  chatservice.CreateSessionInput
	listedUserID *string
	listedLimit  int
	listedOffset int
	sentContent  string
	sentFirst    bool
	session      *chatservice.SessionWithMessages
}

func (f *fakeChatService) CreateSession(_ context.Context, in chatservice.CreateSessionInput) (*domain.ChatSession, error) {
	f.createdWith = in
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ChatSession{ID: "s1", Title: domain.DefaultSessionTitle, UserID: in.UserID}, nil
}

func (f *fakeChatService) ListSessions(_ context.Context, userID *string, limit, offset int) (*chatservice.SessionPage, error) {
	f.listedUserID, f.listedLimit, f.listedOffset = userID, limit, offset
	if f.err != nil {
		return nil, f.err
	}
	return &chatservice.SessionPage{Sessions: []domain.ChatSession{}, Limit: limit, Offset: offset}, nil
}

func (f *fakeChatService) GetSession(_ context.Context, sessionID string) (*chatservice.SessionWithMessages, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

func (f *fakeChatService) SendMessage(_ context.Context, sessionID, content string, first bool) (*chatservice.Exchange, error) {
	f.sentContent, f.sentFirst = content, first
	if f.err != nil {
		return nil, f.err
	}
	return &chatservice.Exchange{
		UserMessage:      &domain.Message{ID: "m1", SessionID: sessionID, Role: domain.RoleUser, Content: content},
		AssistantMessage: &domain.Message{ID: "m2", SessionID: sessionID, Role: domain.RoleAssistant, Content: "ok"},
	}, nil
}

func (f *fakeChatService) DeleteSession(context.Context, string) error { return f.err }

func (f *fakeChatService) UpdateSessionTitle(_ context.Context, sessionID, title string) (*domain.ChatSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ChatSession{ID: sessionID, Title: title}, nil
}

func (f *fakeChatService) UpdateMessageStatus(_ context.Context, messageID string, status domain.MessageStatus) (*domain.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Message{ID: messageID, Status: status}, nil
}

func chatRouter(svc chatservice.Service) *mux.Router {
	h := NewChatHandler(svc, nopLogger{})
	r := mux.NewRouter()
	r.HandleFunc("/api/sessions", h.CreateSession).Methods("POST")
	r.HandleFunc("/api/sessions", h.ListSessions).Methods("GET")
	r.HandleFunc("/api/sessions/{id}", h.GetSession).Methods("GET")
	r.HandleFunc("/api/sessions/{id}", h.UpdateSessionTitle).Methods("PATCH")
	r.HandleFunc("/api/sessions/{id}", h.DeleteSession).Methods("DELETE")
	r.HandleFunc("/api/sessions/{id}/messages", h.SendMessage).Methods("POST")
	r.HandleFunc("/api/messages/{id}/status", h.UpdateMessageStatus).Methods("PATCH")
	return r
}

func do(t *testing.T, h http.Handler, method, target, body string, ctxUserID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if ctxUserID != "" {
		ctx := context.WithValue(req.Context(), middleware.UserIDKey, ctxUserID)
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dtos.ErrorResponse {
	t.Helper()
	var body dtos.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestChatHandler_CreateSession(t *testing.T) {
	svc := &fakeChatService{}
	r := chatRouter(svc)

	rec := do(t, r, http.MethodPost, "/api/sessions", "", "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, svc.createdWith.UserID)

	rec = do(t, r, http.MethodPost, "/api/sessions", `{"title":"Resume help"}`, "user-9")
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, svc.createdWith.UserID)
	assert.Equal(t, "user-9", *svc.createdWith.UserID)
	assert.Equal(t, "Resume help", *svc.createdWith.Title)

	rec = do(t, r, http.MethodPost, "/api/sessions", `{"userId":"explicit"}`, "user-9")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "explicit", *svc.createdWith.UserID)

	rec = do(t, r, http.MethodPost, "/api/sessions", `{"title":`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, dtos.CodeBadRequest, decodeError(t, rec).Code)
}

func TestChatHandler_ListSessions(t *testing.T) {
	svc := &fakeChatService{}
	r := chatRouter(svc)

	rec := do(t, r, http.MethodGet, "/api/sessions", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, svc.listedUserID)
	assert.Equal(t, 20, svc.listedLimit)
	assert.Equal(t, 0, svc.listedOffset)

	rec = do(t, r, http.MethodGet, "/api/sessions?limit=5&offset=10", "", "user-3")
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.listedUserID)
	assert.Equal(t, "user-3", *svc.listedUserID)
	assert.Equal(t, 5, svc.listedLimit)
	assert.Equal(t, 10, svc.listedOffset)

	rec = do(t, r, http.MethodGet, "/api/sessions?userId=other", "", "user-3")
	assert.Equal(t, "other", *svc.listedUserID)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/sessions?limit=ten", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", chatservice.NewNotFoundError("get_session", "x"), http.StatusNotFound, dtos.CodeNotFound},
		{"validation", chatservice.NewValidationError("send_message", "message content cannot be empty"), http.StatusBadRequest, dtos.CodeBadRequest},
		{"conflict", chatservice.NewConflictError("update_message_status", "nope"), http.StatusConflict, dtos.CodeConflict},
		{"internal", chatservice.NewInternalError("get_session", "db down", assert.AnError), http.StatusInternalServerError, dtos.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := chatRouter(&fakeChatService{err: tc.err})
			rec := do(t, r, http.MethodGet, "/api/sessions/x", "", "")
			assert.Equal(t, tc.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tc.code, body.Code)
			assert.NotContains(t, body.Error, "assert.AnError")
		})
	}
}

func TestChatHandler_SendMessage(t *testing.T) {
	svc := &fakeChatService{}
	r := chatRouter(svc)

	rec := do(t, r, http.MethodPost, "/api/sessions/s1/messages", `{"content":"Hi there","isFirstMessage":true}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hi there", svc.sentContent)
	assert.True(t, svc.sentFirst)

	var exchange chatservice.Exchange
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&exchange))
	assert.Equal(t, domain.RoleAssistant, exchange.AssistantMessage.Role)

	rec = do(t, r, http.MethodPost, "/api/sessions/s1/messages", `{"content":""}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []string{"content is required"}, decodeError(t, rec).Details)
}

func TestChatHandler_TitleDeleteAndStatus(t *testing.T) {
	r := chatRouter(&fakeChatService{})

	rec := do(t, r, http.MethodPatch, "/api/sessions/s1", `{"title":"Resume Review"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Resume Review"`)

	rec = do(t, r, http.MethodPatch, "/api/sessions/s1", `{"title":"`+strings.Repeat("x", 101)+`"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodDelete, "/api/sessions/s1", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = do(t, r, http.MethodPatch, "/api/messages/m1/status", `{"status":"delivered"}`, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, r, http.MethodPatch, "/api/messages/m1/status", `{"status":"read"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPageHandler_ChatPageRendersMarkdown(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 0, 0, time.UTC)
	svc := &fakeChatService{session: &chatservice.SessionWithMessages{
		Session: &domain.ChatSession{ID: "s1", Title: "Career Pivot", CreatedAt: now, UpdatedAt: now},
		Messages: []domain.Message{
			{ID: "m1", Role: domain.RoleUser, Content: "<b>hi</b>", CreatedAt: now},
			{ID: "m2", Role: domain.RoleAssistant, Content: "**Start** with <script>x</script> a list", CreatedAt: now},
		},
	}}
	h := NewPageHandler(svc, nopLogger{})
	r := mux.NewRouter()
	r.HandleFunc("/chat/{id}", h.ShowChatPage)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/s1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<title>Career Pivot</title>")
	assert.Contains(t, body, "<strong>Start</strong>")
	assert.Contains(t, body, "&lt;b&gt;hi&lt;/b&gt;")
	assert.NotContains(t, body, "<script>x</script>")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestPageHandler_MissingSession(t *testing.T) {
	h := NewPageHandler(&fakeChatService{err: chatservice.NewNotFoundError("get_session", "nope")}, nopLogger{})
	r := mux.NewRouter()
	r.HandleFunc("/chat/{id}", h.ShowChatPage)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Conversation not found")
}

func TestPageHandler_IndexScopesToSignedInUser(t *testing.T) {
	svc := &fakeChatService{}
	h := NewPageHandler(svc, nopLogger{})

	req := httptest.NewRequest(http.MethodGet, "/?verified=1", nil)
	ctx := context.WithValue(req.Context(), middleware.UserKey, &domain.User{ID: "u1", Name: "Ada"})
	rec := httptest.NewRecorder()
	h.ShowIndexPage(rec, req.WithContext(ctx))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.listedUserID)
	assert.Equal(t, "u1", *svc.listedUserID)
	assert.Contains(t, rec.Body.String(), "Signed in as Ada")
	assert.Contains(t, rec.Body.String(), "Your email address is verified.")
}

func TestLogHandler(t *testing.T) {
	lg := &captureLogger{}
	h := NewLogHandler(lg)

	rec := do(t, http.HandlerFunc(h.LogFrontendEvent), http.MethodPost, "/api/log", `{"level":"error","message":"render failed"}`, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []logLine{{"error", "render failed"}}, lg.lines)

	rec = do(t, http.HandlerFunc(h.LogFrontendEvent), http.MethodPost, "/api/log", `{"level":"fatal","message":"x"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
