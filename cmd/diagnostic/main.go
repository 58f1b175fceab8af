// File: cmd/diagnostic/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"gorm.io/gorm/logger"

	"github.com/iyunix/go-counselor/internal/config"
	"github.com/iyunix/go-counselor/internal/database"
	"github.com/iyunix/go-counselor/internal/services/ai"
)

// diagnostic checks the configured database and AI backend once and exits
// non-zero when either is unusable.
func main() {
	fmt.Println("Running counselor diagnostics...")

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("FAIL config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.AITimeout+10*time.Second)
	defer cancel()

	if !runChecks(ctx, cfg, os.Stdout) {
		os.Exit(1)
	}
}

// runChecks runs every check, reporting each to out, and reports whether all passed.
func runChecks(ctx context.Context, cfg *config.Config, out io.Writer) bool {
	ok := checkDatabase(ctx, cfg, out)
	ok = checkAI(ctx, cfg, out) && ok
	if ok {
		fmt.Fprintln(out, "All checks passed")
	}
	return ok
}

func checkDatabase(ctx context.Context, cfg *config.Config, out io.Writer) bool {
	conn, err := database.Connect(database.Options{
		URL:         cfg.DatabaseURL,
		AuthToken:   cfg.DatabaseAuthToken,
		Serverless:  cfg.Serverless,
		SQLLogLevel: logger.Silent,
	})
	if err != nil {
		fmt.Fprintf(out, "FAIL database: %v\n", err)
		return false
	}
	defer conn.Close()

	fmt.Fprintf(out, "database target=%s ephemeral=%t degraded=%t\n", conn.Target, conn.Ephemeral, conn.Degraded)
	if err := conn.HealthCheck(ctx); err != nil {
		fmt.Fprintf(out, "FAIL database ping: %v\n", err)
		return false
	}
	if err := conn.EnsureInitialized(ctx); err != nil {
		fmt.Fprintf(out, "FAIL database schema: %v\n", err)
		return false
	}
	fmt.Fprintln(out, "OK database")
	return true
}

func checkAI(ctx context.Context, cfg *config.Config, out io.Writer) bool {
	aiConfig := ai.DefaultConfig()
	aiConfig.Provider = cfg.AIProvider
	aiConfig.OpenAIKey = cfg.OpenAIAPIKey
	aiConfig.OpenAIBaseURL = cfg.OpenAIBaseURL
	aiConfig.OpenAIModel = cfg.OpenAIModel
	aiConfig.GeminiKey = cfg.GoogleAIAPIKey
	aiConfig.GeminiModel = cfg.GeminiModel
	aiConfig.Timeout = cfg.AITimeout

	provider, err := ai.NewProvider(ctx, aiConfig)
	if err != nil {
		fmt.Fprintf(out, "FAIL ai provider: %v\n", err)
		return false
	}
	if closer, ok := provider.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	fmt.Fprintf(out, "ai provider=%s\n", provider.Name())

	if hc, ok := provider.(ai.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			fmt.Fprintf(out, "FAIL ai health: %v\n", err)
			return false
		}
	}

	start := time.Now()
	reply, err := provider.GenerateReply(ctx, []ai.Turn{
		{Role: ai.RoleUser, Content: "I am thinking about moving from teaching into software. Where do I start?"},
	}, ai.CounselorPersona)
	if err != nil {
		fmt.Fprintf(out, "FAIL ai reply: %v\n", err)
		return false
	}
	fmt.Fprintf(out, "OK ai reply in %s: %s\n", time.Since(start).Round(time.Millisecond), preview(reply, 160))
	return true
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
