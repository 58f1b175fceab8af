// File: internal/services/user_services/lockout_service.go
package user_services

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	MaxFailedAttempts = 5
	LockoutDuration   = 15 * time.Minute
)

// LockoutService counts failed logins per email and locks further attempts for
// LockoutDuration once MaxFailedAttempts is reached. State lives in process memory.
type LockoutService struct {
	attempts *cache.Cache
	locks    *cache.Cache
	logger   Logger
}

func NewLockoutService(logger Logger) *LockoutService {
	return &LockoutService{
		attempts: cache.New(LockoutDuration, 5*time.Minute),
		locks:    cache.New(LockoutDuration, 5*time.Minute),
		logger:   logger,
	}
}

// RecordFailedAttempt counts a failure and reports whether the account is now locked.
func (s *LockoutService) RecordFailedAttempt(email, sourceIP string) bool {
	key := lockoutKey(email)
	if err := s.attempts.Add(key, 1, LockoutDuration); err != nil {
		if _, incErr := s.attempts.IncrementInt(key, 1); incErr != nil {
			s.attempts.Set(key, 1, LockoutDuration)
		}
	}

	count := s.FailedAttempts(email)
	s.logger.Warn("failed login attempt recorded",
		"email", maskEmail(key),
		"source_ip", sourceIP,
		"attempts", count,
		"max_attempts", MaxFailedAttempts)

	if count >= MaxFailedAttempts {
		s.locks.Set(key, time.Now().Add(LockoutDuration), LockoutDuration)
		s.attempts.Delete(key)
		s.logger.Error("account locked due to excessive failed attempts",
			"email", maskEmail(key),
			"lockout_duration", LockoutDuration.String(),
			"source_ip", sourceIP)
		return true
	}
	return false
}

// ClearFailedAttempts resets the counter after a successful login.
func (s *LockoutService) ClearFailedAttempts(email string) {
	key := lockoutKey(email)
	s.attempts.Delete(key)
	s.locks.Delete(key)
}

// IsAccountLocked reports whether logins for email are blocked and for how long.
func (s *LockoutService) IsAccountLocked(email string) (bool, time.Duration) {
	v, ok := s.locks.Get(lockoutKey(email))
	if !ok {
		return false, 0
	}
	until := v.(time.Time)
	remaining := time.Until(until)
	if remaining <= 0 {
		return false, 0
	}
	return true, remaining
}

func (s *LockoutService) FailedAttempts(email string) int {
	v, ok := s.attempts.Get(lockoutKey(email))
	if !ok {
		return 0
	}
	return v.(int)
}

func lockoutKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
