package client

import (
	"context"
	"errors"
	"time"

	"github.com/Zehui-sudo/learnlink-mcp/pkg/types"
)

// RetryConfig configures exponential backoff retry behavior.
type RetryConfig struct {
	MaxAttempts int           // Total attempts including the first
	BaseDelay   time.Duration // Delay before the first retry
	MaxDelay    time.Duration // Backoff ceiling
	Multiplier  float64       // Exponential backoff multiplier
}

// DefaultRetryConfig returns the default retry policy: three attempts with
// delays doubling from two seconds.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		MaxDelay:    30 * time.Second,
		Multiplier:  2.0,
	}
}

// retryWithBackoff executes fn with exponential backoff. Retry stops
// immediately on context cancellation and on client errors, which no
// amount of retrying will fix.
func retryWithBackoff[T any](ctx context.Context, config RetryConfig, fn func() (T, error)) (T, error) {
	var lastErr error
	var zero T
	backoff := config.BaseDelay

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if errors.Is(err, types.ErrClient) {
			return zero, err
		}
		if errors.Is(err, types.ErrUnsupportedLanguage) {
			// Deterministic; retrying cannot change the outcome.
			break
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		if attempt < config.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
				backoff = time.Duration(float64(backoff) * config.Multiplier)
				if backoff > config.MaxDelay {
					backoff = config.MaxDelay
				}
			}
		}
	}

	return zero, lastErr
}
