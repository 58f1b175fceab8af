// File: internal/ratelimit/ratelimit.go
package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Config holds rate limiting configuration
type Config struct {
	WindowSize    time.Duration // Time window for rate limiting
	MaxAttempts   int           // Maximum attempts per window
	CleanupPeriod time.Duration // How often expired entries are evicted
	BanDuration   time.Duration // How long to block after exceeding the limit
}

// DefaultAuthConfig limits login and registration attempts.
func DefaultAuthConfig() *Config {
	return &Config{
		WindowSize:    15 * time.Minute,
		MaxAttempts:   10,
		CleanupPeriod: 30 * time.Minute,
		BanDuration:   15 * time.Minute,
	}
}

// ChatConfig limits message sends, each of which costs an AI call.
func ChatConfig() *Config {
	return &Config{
		WindowSize:    time.Minute,
		MaxAttempts:   20,
		CleanupPeriod: 5 * time.Minute,
		BanDuration:   time.Minute,
	}
}

// attemptRecord tracks attempts for an IP/identifier
type attemptRecord struct {
	Count     int
	FirstSeen time.Time
	BannedAt  *time.Time
}

// RateLimitInfo contains information about rate limit status
type RateLimitInfo struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
	Banned     bool
}

// MemoryRateLimiter is a fixed-window limiter whose records expire from a go-cache store.
type MemoryRateLimiter struct {
	config *Config
	store  *cache.Cache
	mu     sync.Mutex
	now    func() time.Time
}

func NewMemoryRateLimiter(config *Config) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		config: config,
		store:  cache.New(config.WindowSize, config.CleanupPeriod),
		now:    time.Now,
	}
}

// Allow counts one attempt for identifier and reports whether it may proceed.
func (rl *MemoryRateLimiter) Allow(identifier string) (bool, *RateLimitInfo) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	record := rl.load(identifier)

	if record == nil || (record.BannedAt == nil && now.Sub(record.FirstSeen) > rl.config.WindowSize) {
		rl.save(identifier, &attemptRecord{Count: 1, FirstSeen: now}, rl.config.WindowSize)
		return true, rl.info(true, rl.config.MaxAttempts-1, now.Add(rl.config.WindowSize), 0, false)
	}

	if record.BannedAt != nil {
		remainingBan := rl.config.BanDuration - now.Sub(*record.BannedAt)
		if remainingBan > 0 {
			return false, rl.info(false, 0, record.BannedAt.Add(rl.config.BanDuration), remainingBan, true)
		}
		rl.save(identifier, &attemptRecord{Count: 1, FirstSeen: now}, rl.config.WindowSize)
		return true, rl.info(true, rl.config.MaxAttempts-1, now.Add(rl.config.WindowSize), 0, false)
	}

	record.Count++
	if record.Count > rl.config.MaxAttempts {
		banTime := now
		record.BannedAt = &banTime
		rl.save(identifier, record, rl.config.BanDuration)
		return false, rl.info(false, 0, now.Add(rl.config.BanDuration), rl.config.BanDuration, true)
	}

	resetAt := record.FirstSeen.Add(rl.config.WindowSize)
	rl.save(identifier, record, resetAt.Sub(now))
	return true, rl.info(true, rl.config.MaxAttempts-record.Count, resetAt, 0, false)
}

// RecordSuccess clears the attempts for identifier.
func (rl *MemoryRateLimiter) RecordSuccess(identifier string) {
	rl.store.Delete(identifier)
}

func (rl *MemoryRateLimiter) load(identifier string) *attemptRecord {
	v, ok := rl.store.Get(identifier)
	if !ok {
		return nil
	}
	record := *v.(*attemptRecord)
	return &record
}

func (rl *MemoryRateLimiter) save(identifier string, record *attemptRecord, ttl time.Duration) {
	if ttl <= 0 {
		ttl = time.Second
	}
	rl.store.Set(identifier, record, ttl)
}

func (rl *MemoryRateLimiter) info(allowed bool, remaining int, reset time.Time, retry time.Duration, banned bool) *RateLimitInfo {
	return &RateLimitInfo{
		Allowed:    allowed,
		Limit:      rl.config.MaxAttempts,
		Remaining:  remaining,
		ResetTime:  reset,
		RetryAfter: retry,
		Banned:     banned,
	}
}

// GetClientIP extracts the real client IP from request
func GetClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if ip := parseFirstIP(forwarded); ip != "" {
			return ip
		}
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// parseFirstIP extracts the first IP from a comma-separated list
func parseFirstIP(forwarded string) string {
	ips := strings.Split(forwarded, ",")
	return strings.TrimSpace(ips[0])
}
