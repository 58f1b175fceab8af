// File: cmd/migrate/main.go
package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/iyunix/go-counselor/internal/database"
	"github.com/iyunix/go-counselor/internal/services"
)

// migrate creates or updates the schema of a persistent database. The AI and
// auth settings are not needed, so it reads only the storage variables.
func main() {
	dbURL := flag.String("database-url", "", "database URL (defaults to DATABASE_URL)")
	timeout := flag.Duration("timeout", time.Minute, "migration timeout")
	flag.Parse()

	if strings.ToLower(os.Getenv("ENV")) != "production" {
		_ = godotenv.Load()
	}

	logger := services.NewZapLogger(services.LoggerOptions{
		Service: "go-counselor-migrate",
		Level:   os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	url := *dbURL
	if url == "" {
		url = os.Getenv("DATABASE_URL")
	}
	if url == "" {
		url = "file:./dev.db"
	}

	conn, err := database.Connect(database.Options{
		URL:       url,
		AuthToken: os.Getenv("DATABASE_AUTH_TOKEN"),
		Logger:    logger,
		SQLLog:    logger.StdLogger(),
	})
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	if conn.Degraded || conn.Ephemeral {
		logger.Error("refusing to migrate an in-memory store", "target", conn.Target, "degraded", conn.Degraded)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := conn.Migrate(ctx); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}
	logger.Info("migration complete", "target", conn.Target, "tables", len(database.Models()))
}
