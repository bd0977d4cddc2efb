package fetch

import (
	"context"
	"fmt"
	"math"
	"time"
)

// RetryPolicy defines retry behavior for transient failures.
type RetryPolicy struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	Multiplier      float64
	RandomizeFactor float64
}

// DefaultRetryPolicy returns the connector policy: 3 attempts,
// waiting 4s then 8s (capped at 10s), each with ±25% jitter.
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:     3,
		InitialDelay:    4 * time.Second,
		MaxDelay:        10 * time.Second,
		Multiplier:      2.0,
		RandomizeFactor: 0.25,
	}
}

// NoRetryPolicy returns a policy that doesn't retry.
func NoRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: 1,
	}
}

// ExecuteWithCondition runs fn, retrying while shouldRetry(err) is true and attempts remain.
// It returns the number of attempts made along with the final error.
func (rp *RetryPolicy) ExecuteWithCondition(ctx context.Context, fn func() error, shouldRetry func(error) bool) (int, error) {
	maxAttempts := max(rp.MaxAttempts, 1)
	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return attempt + 1, nil
		}

		lastErr = err

		if !shouldRetry(err) {
			return attempt + 1, err
		}

		// Don't wait after the last attempt
		if attempt == maxAttempts-1 {
			break
		}

		if err := Sleep(ctx, rp.calculateDelay(attempt, DefaultRandom)); err != nil {
			return attempt + 1, fmt.Errorf("retry cancelled: %w", err)
		}
	}

	return maxAttempts, fmt.Errorf("all %d attempts failed: %w", maxAttempts, lastErr)
}

// calculateDelay calculates the backoff before retry number attempt+1.
func (rp *RetryPolicy) calculateDelay(attempt int, rnd Random) time.Duration {
	delay := float64(rp.InitialDelay) * math.Pow(rp.Multiplier, float64(attempt))

	if rp.MaxDelay > 0 && delay > float64(rp.MaxDelay) {
		delay = float64(rp.MaxDelay)
	}

	if rp.RandomizeFactor > 0 {
		delta := delay * rp.RandomizeFactor
		delay = delay - delta + rnd.Float64()*2*delta
	}

	return time.Duration(delay)
}
