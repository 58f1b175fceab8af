package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRateLimiter_BansAfterLimit(t *testing.T) {
	cfg := &Config{WindowSize: time.Minute, MaxAttempts: 3, CleanupPeriod: time.Minute, BanDuration: 10 * time.Minute}
	rl := NewMemoryRateLimiter(cfg)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		allowed, info := rl.Allow("1.2.3.4")
		require.True(t, allowed)
		assert.Equal(t, 2-i, info.Remaining)
	}

	allowed, info := rl.Allow("1.2.3.4")
	assert.False(t, allowed)
	assert.True(t, info.Banned)
	assert.Equal(t, 10*time.Minute, info.RetryAfter)

	allowed, _ = rl.Allow("5.6.7.8")
	assert.True(t, allowed, "other identifiers are unaffected")

	now = now.Add(11 * time.Minute)
	allowed, _ = rl.Allow("1.2.3.4")
	assert.True(t, allowed, "ban expires")
}

func TestMemoryRateLimiter_WindowResets(t *testing.T) {
	cfg := &Config{WindowSize: time.Minute, MaxAttempts: 1, CleanupPeriod: time.Minute, BanDuration: time.Minute}
	rl := NewMemoryRateLimiter(cfg)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	allowed, _ := rl.Allow("ip")
	require.True(t, allowed)

	rl.RecordSuccess("ip")
	allowed, _ = rl.Allow("ip")
	assert.True(t, allowed)
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", GetClientIP(r))

	r.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", GetClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.3")
	assert.Equal(t, "203.0.113.7", GetClientIP(r))
}
