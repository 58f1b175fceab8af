// File: internal/services/mail/retry.go
package mail

import (
	"context"
	"time"
)

type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 3,
		Delay:       500 * time.Millisecond,
	}
}

// RetryWithBackoff runs fn until it succeeds, returns a permanent error, or the
// attempts run out. The delay grows linearly with each attempt.
func RetryWithBackoff(ctx context.Context, config *RetryConfig, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if isPermanent(err) {
			return err
		}

		if attempt < config.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(config.Delay * time.Duration(attempt+1)):
			}
		}
	}

	return lastErr
}
