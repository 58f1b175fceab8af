// File: cmd/server/app.go
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm/logger"

	"github.com/iyunix/go-counselor/internal/config"
	"github.com/iyunix/go-counselor/internal/database"
	"github.com/iyunix/go-counselor/internal/handlers"
	"github.com/iyunix/go-counselor/internal/ratelimit"
	"github.com/iyunix/go-counselor/internal/repository/account"
	"github.com/iyunix/go-counselor/internal/repository/chat"
	"github.com/iyunix/go-counselor/internal/repository/message"
	"github.com/iyunix/go-counselor/internal/repository/user"
	"github.com/iyunix/go-counselor/internal/repository/verification"
	"github.com/iyunix/go-counselor/internal/services"
	"github.com/iyunix/go-counselor/internal/services/ai"
	"github.com/iyunix/go-counselor/internal/services/mail"
	"github.com/iyunix/go-counselor/internal/services/user_services"
)

// Application aggregates all services and handlers
type Application struct {
	Config *config.Config
	Logger services.Logger
	DB     *database.Connection

	AIService           *services.AIService
	ChatService         *services.ChatService
	MailService         *services.MailService
	AuthService         *user_services.AuthService
	VerificationService *user_services.VerificationService
	OAuthService        *user_services.OAuthService
	UserService         *user_services.UserService

	AuthLimiter *ratelimit.MemoryRateLimiter
	ChatLimiter *ratelimit.MemoryRateLimiter

	AuthHandler *handlers.AuthHandler
	ChatHandler *handlers.ChatHandler
	PageHandler *handlers.PageHandler
	LogHandler  *handlers.LogHandler

	closers []func() error
}

type stdLogProvider interface {
	StdLogger() *log.Logger
}

// NewApplication connects storage, builds the AI backend and wires every
// service and handler. Close releases what it opened.
func NewApplication(ctx context.Context, cfg *config.Config, lg services.Logger) (*Application, error) {
	app := &Application{Config: cfg, Logger: lg}

	dbOpts := database.Options{
		URL:         cfg.DatabaseURL,
		AuthToken:   cfg.DatabaseAuthToken,
		Serverless:  cfg.Serverless,
		Logger:      lg,
		SQLLogLevel: logger.Warn,
	}
	if std, ok := lg.(stdLogProvider); ok {
		dbOpts.SQLLog = std.StdLogger()
	}
	conn, err := database.Connect(dbOpts)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	app.DB = conn
	app.closers = append(app.closers, conn.Close)

	if err := conn.EnsureInitialized(ctx); err != nil {
		app.Close()
		if errors.Is(err, database.ErrSchemaNotInitialized) {
			return nil, fmt.Errorf("database: %w (run cmd/migrate first)", err)
		}
		return nil, fmt.Errorf("database: %w", err)
	}

	// --- Repositories ---
	userRepo := user.NewGormUserRepository(conn.DB)
	accountRepo := account.NewGormAccountRepository(conn.DB)
	verificationRepo := verification.NewGormVerificationRepository(conn.DB)
	chatRepo := chat.NewChatRepository(conn.DB)
	messageRepo := message.NewMessageRepository(conn.DB)

	// --- AI ---
	provider, err := ai.NewProvider(ctx, provideAIConfig(cfg))
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("ai provider: %w", err)
	}
	if closer, ok := provider.(interface{ Close() error }); ok {
		app.closers = append(app.closers, closer.Close)
	}
	if app.AIService, err = services.NewAIService(provider, cfg.AITimeout, lg); err != nil {
		app.Close()
		return nil, err
	}
	if app.ChatService, err = services.NewChatService(chatRepo, messageRepo, app.AIService, lg); err != nil {
		app.Close()
		return nil, err
	}

	// --- Mail and accounts ---
	if app.MailService, err = services.NewMailService(provideMailConfig(cfg), lg); err != nil {
		app.Close()
		return nil, fmt.Errorf("mail: %w", err)
	}

	jwtSecret, err := provideJWTSecret(cfg, lg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.VerificationService = user_services.NewVerificationService(userRepo, verificationRepo, app.MailService, lg)
	app.AuthService, err = user_services.NewAuthService(
		userRepo, accountRepo, app.VerificationService, user_services.NewLockoutService(lg), jwtSecret, lg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.UserService = user_services.NewUserService(userRepo, accountRepo, lg)

	if cfg.GoogleOAuthEnabled() {
		app.OAuthService, err = user_services.NewOAuthService(user_services.GoogleOAuthConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
		}, userRepo, accountRepo, app.AuthService, lg)
		if err != nil {
			app.Close()
			return nil, err
		}
	} else {
		lg.Info("Google sign-in disabled: GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET not set")
	}

	// --- Handlers ---
	app.AuthLimiter = ratelimit.NewMemoryRateLimiter(ratelimit.DefaultAuthConfig())
	app.ChatLimiter = ratelimit.NewMemoryRateLimiter(ratelimit.ChatConfig())

	app.AuthHandler = handlers.NewAuthHandler(
		app.AuthService, app.VerificationService, app.OAuthService, app.UserService, app.AuthLimiter, lg)
	app.ChatHandler = handlers.NewChatHandler(app.ChatService, lg)
	app.PageHandler = handlers.NewPageHandler(app.ChatService, lg)
	app.LogHandler = handlers.NewLogHandler(lg)

	lg.Info("application initialized",
		"database", conn.Target,
		"ephemeral", conn.Ephemeral,
		"degraded", conn.Degraded,
		"ai_provider", app.AIService.ProviderName(),
		"mail_provider", app.MailService.ProviderName())
	return app, nil
}

// Close releases resources in reverse order of acquisition.
func (app *Application) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.Logger.Warn("error during shutdown", "error", err)
		}
	}
	app.closers = nil
}

// PurgeSessionsLoop deletes expired login sessions until ctx is cancelled.
func (app *Application) PurgeSessionsLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.AuthService.PurgeExpiredSessions(ctx)
			if err != nil {
				app.Logger.Warn("failed to purge expired sessions", "error", err)
				continue
			}
			if n > 0 {
				app.Logger.Info("purged expired sessions", "count", n)
			}
		}
	}
}

func provideAIConfig(cfg *config.Config) *ai.Config {
	aiConfig := ai.DefaultConfig()
	aiConfig.Provider = cfg.AIProvider
	aiConfig.OpenAIKey = cfg.OpenAIAPIKey
	aiConfig.OpenAIBaseURL = cfg.OpenAIBaseURL
	aiConfig.OpenAIModel = cfg.OpenAIModel
	aiConfig.GeminiKey = cfg.GoogleAIAPIKey
	aiConfig.GeminiModel = cfg.GeminiModel
	aiConfig.Timeout = cfg.AITimeout
	return aiConfig
}

func provideMailConfig(cfg *config.Config) *mail.Config {
	return &mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		BaseURL:  cfg.BaseURL,
	}
}

// provideJWTSecret generates a per-process secret outside production so local
// runs work without configuration. Tokens then do not survive a restart.
func provideJWTSecret(cfg *config.Config, lg services.Logger) (string, error) {
	if cfg.JWTSecretKey != "" {
		return cfg.JWTSecretKey, nil
	}
	if cfg.IsProduction() {
		return "", fmt.Errorf("JWT_SECRET_KEY is required in production")
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate JWT secret: %w", err)
	}
	lg.Warn("JWT_SECRET_KEY not set, using a random secret for this process")
	return hex.EncodeToString(b), nil
}
