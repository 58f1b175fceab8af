// File: internal/services/user_services/oauth_service.go
package user_services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/repository/account"
	"github.com/iyunix/go-counselor/internal/repository/user"
)

const (
	oauthStateTTL         = 10 * time.Minute
	defaultGoogleUserInfo = "https://www.googleapis.com/oauth2/v2/userinfo"
)

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Endpoint and UserInfoURL default to Google's.
	Endpoint    *oauth2.Endpoint
	UserInfoURL string
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// OAuthService signs users in with Google. Pending login states are kept in
// memory for ten minutes and are single use.
type OAuthService struct {
	conf        *oauth2.Config
	userInfoURL string
	states      *cache.Cache
	userRepo    user.UserRepository
	accountRepo account.AccountRepository
	auth        *AuthService
	logger      Logger
}

func NewOAuthService(
	cfg GoogleOAuthConfig,
	userRepo user.UserRepository,
	accountRepo account.AccountRepository,
	authService *AuthService,
	logger Logger,
) (*OAuthService, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	}
	endpoint := google.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}
	userInfoURL := cfg.UserInfoURL
	if userInfoURL == "" {
		userInfoURL = defaultGoogleUserInfo
	}

	logger.Info("Google OAuth initialized", "redirect_url", cfg.RedirectURL)

	return &OAuthService{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: endpoint,
		},
		userInfoURL: userInfoURL,
		states:      cache.New(oauthStateTTL, oauthStateTTL),
		userRepo:    userRepo,
		accountRepo: accountRepo,
		auth:        authService,
		logger:      logger,
	}, nil
}

// LoginURL returns the Google consent URL and remembers its state.
func (s *OAuthService) LoginURL() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	state := base64.RawURLEncoding.EncodeToString(b)
	s.states.Set(state, true, oauthStateTTL)
	return s.conf.AuthCodeURL(state), nil
}

// HandleCallback validates state, exchanges the code, links the Google account
// to a user (creating one by email when needed) and opens a session.
func (s *OAuthService) HandleCallback(ctx context.Context, state, code string) (*LoginResult, error) {
	if _, ok := s.states.Get(state); !ok || state == "" {
		s.logger.Warn("oauth callback with unknown state")
		return nil, ErrInvalidOAuthState
	}
	s.states.Delete(state)

	token, err := s.conf.Exchange(ctx, code)
	if err != nil {
		s.logger.Error("oauth code exchange failed", "error", err)
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	gUser, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}

	u, err := s.findOrCreateUser(ctx, gUser)
	if err != nil {
		return nil, err
	}

	acct := &domain.Account{
		Provider:          domain.ProviderGoogle,
		ProviderAccountID: gUser.ID,
		UserID:            u.ID,
		Type:              "oauth",
		AccessToken:       optional(token.AccessToken),
		RefreshToken:      optional(token.RefreshToken),
		TokenType:         optional(token.TokenType),
		Scope:             optional(strings.Join(s.conf.Scopes, " ")),
	}
	if !token.Expiry.IsZero() {
		exp := token.Expiry.Unix()
		acct.ExpiresAt = &exp
	}
	if idToken, ok := token.Extra("id_token").(string); ok {
		acct.IDToken = optional(idToken)
	}
	if err := s.accountRepo.Upsert(ctx, acct); err != nil {
		return nil, fmt.Errorf("failed to link google account: %w", err)
	}

	s.logger.Info("google sign-in", "user_id", u.ID)
	return s.auth.IssueSession(ctx, u)
}

func (s *OAuthService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUser, error) {
	client := s.conf.Client(ctx, token)
	resp, err := client.Get(s.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed reading user info: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info request returned %d", resp.StatusCode)
	}

	var gUser googleUser
	if err := json.Unmarshal(body, &gUser); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	if gUser.ID == "" || gUser.Email == "" {
		return nil, errors.New("user info is missing id or email")
	}
	return &gUser, nil
}

func (s *OAuthService) findOrCreateUser(ctx context.Context, gUser *googleUser) (*domain.User, error) {
	if linked, err := s.accountRepo.FindByProvider(ctx, domain.ProviderGoogle, gUser.ID); err == nil {
		return s.userRepo.FindByID(ctx, linked.UserID)
	} else if !errors.Is(err, account.ErrAccountNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	existing, err := s.userRepo.FindByEmail(ctx, gUser.Email)
	if err == nil {
		if !existing.IsVerified() && gUser.VerifiedEmail {
			if err := s.userRepo.MarkEmailVerified(ctx, existing.Email, time.Now().UTC()); err != nil {
				s.logger.Warn("failed to mark email verified", "user_id", existing.ID, "error", err)
			}
		}
		return existing, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	name := gUser.Name
	if strings.TrimSpace(name) == "" {
		name = strings.Split(gUser.Email, "@")[0]
	}
	u := &domain.User{
		Email: gUser.Email,
		Name:  name,
		Image: optional(gUser.Picture),
	}
	if gUser.VerifiedEmail {
		now := time.Now().UTC()
		u.EmailVerified = &now
	}
	created, err := s.userRepo.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("user created from google sign-in", "user_id", created.ID)
	return created, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
