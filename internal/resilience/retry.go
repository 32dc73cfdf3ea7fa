package resilience

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

// RetryConfig controls how many times a call is attempted and how long to
// wait between attempts.
type RetryConfig struct {
	// MaxAttempts counts the first call. 1 disables retries.
	MaxAttempts int

	// Wait is the delay before the first retry.
	Wait time.Duration

	// MaxWait caps the delay once Multiplier has grown it.
	MaxWait time.Duration

	// Multiplier scales Wait after each retry. 1 keeps the wait fixed.
	Multiplier float64

	// ShouldRetry decides which errors are retried. Nil means IsTransient.
	ShouldRetry func(err error) bool

	// OnRetry runs before each wait with the 1-based attempt that failed.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig retries transient failures of HTTP APIs with
// exponential backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Wait:        500 * time.Millisecond,
		MaxWait:     30 * time.Second,
		Multiplier:  2,
	}
}

// FixedRetryConfig makes up to attempts calls with a constant wait and
// retries every error. Web search uses it: a rate-limited or empty answer is
// worth exactly one more try.
func FixedRetryConfig(attempts int, wait time.Duration) RetryConfig {
	if attempts <= 0 {
		attempts = 1
	}
	if wait <= 0 {
		wait = time.Millisecond
	}
	return RetryConfig{
		MaxAttempts: attempts,
		Wait:        wait,
		MaxWait:     wait,
		Multiplier:  1,
		ShouldRetry: func(err error) bool { return err != nil },
	}
}

// Do runs fn under cfg. See DoVal.
func Do(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, cfg, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal runs fn until it succeeds, returns an error ShouldRetry rejects, or
// MaxAttempts is reached. The last error is returned. A cancelled context
// stops retrying immediately, including mid-wait.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !cfg.ShouldRetry(err) || attempt == cfg.MaxAttempts-1 {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, err)
		}

		timer := time.NewTimer(cfg.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}

func (cfg RetryConfig) withDefaults() RetryConfig {
	def := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Wait <= 0 {
		cfg.Wait = def.Wait
	}
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = def.MaxWait
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = def.Multiplier
	}
	if cfg.ShouldRetry == nil {
		cfg.ShouldRetry = IsTransient
	}
	return cfg
}

// backoff is the wait after the 0-based attempt.
func (cfg RetryConfig) backoff(attempt int) time.Duration {
	d := float64(cfg.Wait) * math.Pow(cfg.Multiplier, float64(attempt))
	if d > float64(cfg.MaxWait) {
		d = float64(cfg.MaxWait)
	}
	return time.Duration(d)
}

// RetryLogger returns an OnRetry callback that logs at warn level.
func RetryLogger(service, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying operation",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
