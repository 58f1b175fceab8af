// File: cmd/server/routes.go
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iyunix/go-counselor/internal/handlers"
	"github.com/iyunix/go-counselor/internal/middleware"
)

// Router builds the HTTP surface.
func (app *Application) Router() http.Handler {
	r := mux.NewRouter()
	lg := app.Logger

	r.Use(middleware.RecoverPanic(lg))
	r.Use(middleware.LoggingMiddleware(lg))
	r.Use(middleware.Metrics)
	r.Use(middleware.OptionalAuth(app.AuthService, lg))

	authLimited := middleware.RateLimitMiddleware(app.AuthLimiter, handlers.AuthLimiterName, lg)
	chatLimited := middleware.RateLimitMiddleware(app.ChatLimiter, "chat", lg)

	// --- Operational ---
	r.HandleFunc("/health", app.health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// --- Pages ---
	r.HandleFunc("/", app.PageHandler.ShowIndexPage).Methods("GET")
	r.HandleFunc("/chat/{id}", app.PageHandler.ShowChatPage).Methods("GET")

	// --- Auth ---
	ah := app.AuthHandler
	auth := r.PathPrefix("/auth").Subrouter()
	auth.Handle("/register", authLimited(http.HandlerFunc(ah.Register))).Methods("POST")
	auth.Handle("/login", authLimited(http.HandlerFunc(ah.Login))).Methods("POST")
	auth.HandleFunc("/logout", ah.Logout).Methods("POST")
	auth.HandleFunc("/verify-email", ah.VerifyEmail).Methods("GET")
	auth.Handle("/verify-email/resend", authLimited(http.HandlerFunc(ah.ResendVerification))).Methods("POST")
	auth.HandleFunc("/oauth/google", ah.GoogleLogin).Methods("GET")
	auth.HandleFunc("/oauth/google/callback", ah.GoogleCallback).Methods("GET")

	// --- API ---
	ch := app.ChatHandler
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/log", app.LogHandler.LogFrontendEvent).Methods("POST")
	api.HandleFunc("/sessions", ch.CreateSession).Methods("POST")
	api.HandleFunc("/sessions", ch.ListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", ch.GetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", ch.UpdateSessionTitle).Methods("PATCH")
	api.HandleFunc("/sessions/{id}", ch.DeleteSession).Methods("DELETE")
	api.Handle("/sessions/{id}/messages", chatLimited(http.HandlerFunc(ch.SendMessage))).Methods("POST")
	api.HandleFunc("/messages/{id}/status", ch.UpdateMessageStatus).Methods("PATCH")

	me := api.PathPrefix("/me").Subrouter()
	me.Use(middleware.RequireAuth)
	me.HandleFunc("", ah.Me).Methods("GET")
	me.HandleFunc("", ah.UpdateMe).Methods("PATCH")

	// --- Custom Error Handlers ---
	r.NotFoundHandler = http.HandlerFunc(app.PageHandler.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.PageHandler.ShowErrorPage(w, http.StatusMethodNotAllowed, "Method not allowed", "The method is not allowed for this resource.")
	})

	return r
}

func (app *Application) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	if err := app.DB.HealthCheck(ctx); err != nil {
		app.Logger.Error("health check failed", "error", err)
		status, code = "unavailable", http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(`{"status":"` + status + `","database":"` + string(app.DB.Target) +
		`","aiProvider":"` + app.AIService.ProviderName() + `"}`))
}
