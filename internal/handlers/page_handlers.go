// File: internal/handlers/page_handlers.go
package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/middleware"
	chatservice "github.com/iyunix/go-counselor/internal/services/chat"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = []string{"index.html", "chat.html", "error.html"}

// Template cache to avoid parsing templates on every request
var (
	templateCache     map[string]*template.Template
	templateCacheErr  error
	templateCacheOnce sync.Once
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// loadTemplateCache creates separate template sets for each page
func loadTemplateCache() {
	templateCache = make(map[string]*template.Template, len(pageTemplates))
	funcs := template.FuncMap{
		"markdown":   renderMarkdown,
		"formatTime": func(t time.Time) string { return t.UTC().Format("Jan 2, 2006 15:04") },
	}

	for _, page := range pageTemplates {
		ts, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			templateCacheErr = fmt.Errorf("parse %s: %w", page, err)
			return
		}
		templateCache[page] = ts
	}
}

// renderMarkdown converts assistant markdown to HTML. Raw HTML in the source
// is escaped by goldmark's default renderer.
func renderMarkdown(source string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return template.HTML(buf.String())
}

func addSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
}

type PageHandler struct {
	chat   chatservice.Service
	logger Logger
}

func NewPageHandler(chat chatservice.Service, logger Logger) *PageHandler {
	return &PageHandler{chat: chat, logger: logger}
}

func (h *PageHandler) render(w http.ResponseWriter, status int, page string, data map[string]interface{}) {
	templateCacheOnce.Do(loadTemplateCache)
	if templateCacheErr != nil {
		h.logger.Error("template cache unavailable", "error", templateCacheErr)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}
	t, ok := templateCache[page]
	if !ok {
		h.logger.Error("template not found in cache", "template", page)
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		h.logger.Error("template render error", "template", page, "error", err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}

	addSecurityHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// ShowIndexPage lists the most recent sessions of the signed-in user, or all
// sessions for anonymous visitors.
func (h *PageHandler) ShowIndexPage(w http.ResponseWriter, r *http.Request) {
	var userID *string
	user, signedIn := middleware.UserFromContext(r.Context())
	if signedIn {
		userID = &user.ID
	}

	page, err := h.chat.ListSessions(r.Context(), userID, defaultPageSize, 0)
	if err != nil {
		h.logger.Error("failed to list sessions for index page", "error", err)
		h.ShowErrorPage(w, http.StatusInternalServerError, "Something went wrong", "We could not load your conversations.")
		return
	}

	data := map[string]interface{}{
		"Title":    "Career Counselor",
		"Sessions": page.Sessions,
		"Total":    page.Total,
		"Verified": r.URL.Query().Get("verified"),
	}
	if signedIn {
		data["User"] = user
	}
	h.render(w, http.StatusOK, "index.html", data)
}

// ShowChatPage renders a session transcript.
func (h *PageHandler) ShowChatPage(w http.ResponseWriter, r *http.Request) {
	result, err := h.chat.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if chatservice.IsNotFound(err) {
			h.ShowErrorPage(w, http.StatusNotFound, "Conversation not found", "It may have been deleted.")
			return
		}
		h.logger.Error("failed to load session for chat page", "error", err)
		h.ShowErrorPage(w, http.StatusInternalServerError, "Something went wrong", "We could not load this conversation.")
		return
	}

	h.render(w, http.StatusOK, "chat.html", map[string]interface{}{
		"Title":         result.Session.Title,
		"Session":       result.Session,
		"Messages":      result.Messages,
		"RoleAssistant": domain.RoleAssistant,
	})
}

func (h *PageHandler) ShowErrorPage(w http.ResponseWriter, status int, message, description string) {
	h.render(w, status, "error.html", map[string]interface{}{
		"Title":       message,
		"Code":        status,
		"Message":     message,
		"Description": description,
	})
}

// NotFound renders the error page for unmatched routes.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.ShowErrorPage(w, http.StatusNotFound, "Page not found", "The page you requested does not exist.")
}
