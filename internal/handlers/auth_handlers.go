// File: internal/handlers/auth_handlers.go
package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/iyunix/go-counselor/internal/dtos"
	"github.com/iyunix/go-counselor/internal/middleware"
	"github.com/iyunix/go-counselor/internal/ratelimit"
	"github.com/iyunix/go-counselor/internal/repository/user"
	"github.com/iyunix/go-counselor/internal/services/user_services"
)

// AuthLimiterName labels the limiter guarding credential endpoints.
const AuthLimiterName = "auth"

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	auth         *user_services.AuthService
	verification *user_services.VerificationService
	oauth        *user_services.OAuthService
	users        *user_services.UserService
	limiter      *ratelimit.MemoryRateLimiter
	logger       Logger
}

// NewAuthHandler creates a new AuthHandler. oauth and limiter may be nil.
func NewAuthHandler(
	auth *user_services.AuthService,
	verification *user_services.VerificationService,
	oauth *user_services.OAuthService,
	users *user_services.UserService,
	limiter *ratelimit.MemoryRateLimiter,
	logger Logger,
) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		verification: verification,
		oauth:        oauth,
		users:        users,
		limiter:      limiter,
		logger:       logger,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dtos.RegisterRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, dtos.CodeBadRequest, "Invalid request body")
		return
	}
	if details := dtos.Validate(req); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	created, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user_services.ErrEmailTaken):
			writeError(w, http.StatusConflict, dtos.CodeConflict, err.Error())
		case errors.Is(err, user_services.ErrInvalidRegistration):
			writeError(w, http.StatusBadRequest, dtos.CodeBadRequest, err.Error())
		default:
			h.logger.Error("registration failed", "error", err)
			writeError(w, http.StatusInternalServerError, dtos.CodeInternal, "Could not create account")
		}
		return
	}
	writeJSON(w, http.StatusCreated, dtos.FromDomain(*created))
}

// Login handles POST /auth/login, setting the auth cookie on success.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dtos.LoginRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, dtos.CodeBadRequest, "Invalid request body")
		return
	}
	if details := dtos.Validate(req); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password, ratelimit.GetClientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, user_services.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, dtos.CodeUnauthorized, "Invalid email or password")
		case errors.Is(err, user_services.ErrAccountLocked):
			writeError(w, http.StatusTooManyRequests, dtos.CodeTooManyRequests, err.Error())
		default:
			h.logger.Error("login failed", "error", err)
			writeError(w, http.StatusInternalServerError, dtos.CodeInternal, "Could not sign in")
		}
		return
	}

	if h.limiter != nil {
		h.limiter.RecordSuccess(middleware.LimiterKey(AuthLimiterName, r))
	}
	middleware.SetAuthCookie(w, r, result.Token, result.Expires)
	writeJSON(w, http.StatusOK, dtos.LoginResponseDTO{
		User:      dtos.FromDomain(*result.User),
		Token:     result.Token,
		ExpiresAt: result.Expires.UTC().Format(time.RFC3339),
	})
}

// Logout handles POST /auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token, _ := middleware.TokenFromRequest(r); token != "" {
		if err := h.auth.Logout(r.Context(), token); err != nil {
			h.logger.Error("logout failed", "error", err)
			writeError(w, http.StatusInternalServerError, dtos.CodeInternal, "Could not sign out")
			return
		}
	}
	middleware.ClearAuthCookie(w, r)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// VerifyEmail handles the link sent by mail and lands the browser on the home page.
func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	_, err := h.verification.VerifyEmail(r.Context(), q.Get("identifier"), q.Get("token"))
	if err != nil {
		if !errors.Is(err, user_services.ErrInvalidVerification) {
			h.logger.Error("email verification failed", "error", err)
		}
		http.Redirect(w, r, "/?verified=0", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/?verified=1", http.StatusSeeOther)
}

// ResendVerification handles POST /auth/verify-email/resend. It answers 202
// whether or not the address is registered.
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req dtos.ResendVerificationRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, dtos.CodeBadRequest, "Invalid request body")
		return
	}
	if details := dtos.Validate(req); len(details) > 0 {
		writeValidationError(w, details)
		return
	}
	if err := h.verification.Resend(r.Context(), req.Email); err != nil {
		h.logger.Warn("verification resend failed", "error", err)
	}
	writeJSON(w, http.StatusAccepted, map[string]bool{"success": true})
}

// GoogleLogin redirects to the Google consent screen.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		writeError(w, http.StatusNotFound, dtos.CodeNotFound, "Google sign-in is not configured")
		return
	}
	target, err := h.oauth.LoginURL()
	if err != nil {
		h.logger.Error("failed to build google login url", "error", err)
		writeError(w, http.StatusInternalServerError, dtos.CodeInternal, "Could not start Google sign-in")
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// GoogleCallback completes the OAuth flow and redirects home with the cookie set.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		writeError(w, http.StatusNotFound, dtos.CodeNotFound, "Google sign-in is not configured")
		return
	}
	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		h.logger.Info("google sign-in cancelled", "reason", reason)
		http.Redirect(w, r, "/?auth_error="+url.QueryEscape(reason), http.StatusSeeOther)
		return
	}

	result, err := h.oauth.HandleCallback(r.Context(), q.Get("state"), q.Get("code"))
	if err != nil {
		if errors.Is(err, user_services.ErrInvalidOAuthState) {
			writeError(w, http.StatusBadRequest, dtos.CodeBadRequest, err.Error())
			return
		}
		h.logger.Error("google sign-in failed", "error", err)
		http.Redirect(w, r, "/?auth_error=oauth_failed", http.StatusSeeOther)
		return
	}

	middleware.SetAuthCookie(w, r, result.Token, result.Expires)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserIDFromContext(r.Context())
	profile, err := h.users.GetProfile(r.Context(), userID)
	if err != nil {
		h.writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromDomain(*profile.User).WithProviders(profile.Providers))
}

// UpdateMe handles PATCH /api/me.
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req dtos.ProfileUpdateRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, dtos.CodeBadRequest, "Invalid request body")
		return
	}
	if details := dtos.Validate(req); len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	updated, err := h.users.UpdateProfile(r.Context(), userID, req.Name, req.Image)
	if err != nil {
		h.writeUserError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromDomain(*updated))
}

func (h *AuthHandler) writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user.ErrUserNotFound):
		writeError(w, http.StatusNotFound, dtos.CodeNotFound, "User not found")
	case errors.Is(err, user_services.ErrInvalidProfile):
		writeError(w, http.StatusBadRequest, dtos.CodeBadRequest, err.Error())
	default:
		h.logger.Error("profile operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, dtos.CodeInternal, "Something went wrong on our end.")
	}
}
