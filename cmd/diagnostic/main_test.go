package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iyunix/go-counselor/internal/config"
)

func diagnosticConfig() *config.Config {
	return &config.Config{
		DatabaseURL: ":memory:",
		AIProvider:  config.ProviderMock,
		AITimeout:   5 * time.Second,
	}
}

func TestRunChecks_MockProviderAndMemoryStore(t *testing.T) {
	var out bytes.Buffer

	ok := runChecks(context.Background(), diagnosticConfig(), &out)

	assert.True(t, ok, out.String())
	assert.Contains(t, out.String(), "OK database")
	assert.Contains(t, out.String(), "ai provider=mock")
	assert.Contains(t, out.String(), "OK ai reply")
	assert.Contains(t, out.String(), "All checks passed")
}

func TestRunChecks_UnsupportedProviderFails(t *testing.T) {
	cfg := diagnosticConfig()
	cfg.AIProvider = "carrier-pigeon"
	var out bytes.Buffer

	ok := runChecks(context.Background(), cfg, &out)

	assert.False(t, ok)
	assert.Contains(t, out.String(), "OK database")
	assert.Contains(t, out.String(), "FAIL ai provider")
	assert.NotContains(t, out.String(), "All checks passed")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short", 10))
	assert.Equal(t, "ééé...", preview("éééé", 3))
}
