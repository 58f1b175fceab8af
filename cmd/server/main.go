// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iyunix/go-counselor/internal/config"
	"github.com/iyunix/go-counselor/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger := services.NewZapLogger(services.LoggerOptions{
		Service:    "go-counselor",
		Level:      cfg.LogLevel,
		FilePath:   cfg.LogFile,
		Production: cfg.IsProduction(),
	})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	go app.PurgeSessionsLoop(ctx, time.Hour)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.AITimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "base_url", cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		logger.Error("server startup failed", "error", err)
		return
	case <-ctx.Done():
	}

	logger.Info("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
		return
	}
	logger.Info("server stopped gracefully")
}
