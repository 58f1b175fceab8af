// File: internal/middleware/auth.go
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/iyunix/go-counselor/internal/domain"
)

// Authenticator resolves a session token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// OptionalAuth attaches the user to the request context when a valid token is
// presented and otherwise passes the request through unchanged.
func OptionalAuth(authn Authenticator, logger Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := TokenFromRequest(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				logger.Debug("ignoring invalid auth token", "path", r.URL.Path, "error", err)
				if fromCookie {
					ClearAuthCookie(w, r)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			ctx = context.WithValue(ctx, UserIDKey, user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth rejects requests that OptionalAuth did not authenticate.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "Authentication required",
				"code":  "UNAUTHORIZED",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TokenFromRequest reads the bearer token or the auth cookie, preferring the header.
func TokenFromRequest(r *http.Request) (token string, fromCookie bool) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")), false
	}
	if c, err := r.Cookie(AuthCookieName); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}

func SetAuthCookie(w http.ResponseWriter, r *http.Request, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearAuthCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     AuthCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func isSecure(r *http.Request) bool {
	return r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"
}
