package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"syscall"
	"time"

	"github.com/leofalp/intake/core/client"
	"github.com/leofalp/intake/providers/ai"
)

// Retry defaults.
const (
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = time.Second
	DefaultMaxBackoff     = 30 * time.Second
	DefaultBackoffFactor  = 2.0
	DefaultJitterFraction = 0.1
)

// RetryConfig tunes the retry middleware. Zero fields take the defaults above.
type RetryConfig struct {
	// MaxRetries bounds the calls after the first one. Negative disables
	// retrying.
	MaxRetries int

	// The wait before retry n (0-based) is
	// min(InitialBackoff * BackoffFactor^n, MaxBackoff) plus up to
	// JitterFraction of it, and never less than the server's Retry-After.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	JitterFraction float64

	// RetryableFunc decides whether err is worth another call. The default
	// accepts transient *ai.StatusError values and refused connections.
	RetryableFunc func(error) bool

	// Logger receives one warning per retry. Nil disables retry logging.
	Logger *slog.Logger
}

// defaultRetryableFunc accepts transient HTTP statuses, and refused
// connections from a local server that is still starting.
func defaultRetryableFunc(err error) bool {
	var statusErr *ai.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Transient()
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}

func (c *RetryConfig) applyDefaults() {
	switch {
	case c.MaxRetries == 0:
		c.MaxRetries = DefaultMaxRetries
	case c.MaxRetries < 0:
		c.MaxRetries = 0
	}
	if c.InitialBackoff <= 0 {
		c.InitialBackoff = DefaultInitialBackoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	if c.BackoffFactor <= 0 {
		c.BackoffFactor = DefaultBackoffFactor
	}
	if c.JitterFraction <= 0 {
		c.JitterFraction = DefaultJitterFraction
	}
	if c.RetryableFunc == nil {
		c.RetryableFunc = defaultRetryableFunc
	}
}

// computeBackoff returns the jittered exponential wait before retry n.
func computeBackoff(config RetryConfig, n int) time.Duration {
	base := math.Min(
		float64(config.InitialBackoff)*math.Pow(config.BackoffFactor, float64(n)),
		float64(config.MaxBackoff),
	)
	jitter := base * config.JitterFraction * rand.Float64() //nolint:gosec // jitter needs no crypto randomness
	return time.Duration(base + jitter)
}

// retryDelay honours a Retry-After carried by err, capped at MaxBackoff.
func retryDelay(config RetryConfig, n int, err error) time.Duration {
	delay := computeBackoff(config, n)
	var statusErr *ai.StatusError
	if errors.As(err, &statusErr) && statusErr.RetryAfter > delay {
		delay = min(statusErr.RetryAfter, config.MaxBackoff)
	}
	return delay
}

// NewRetryMiddleware re-sends a request that failed with a retryable error.
// Context errors end the loop at once. When every retry fails the error wraps
// both [ErrRetryExhausted] and the last provider error.
func NewRetryMiddleware(config RetryConfig) client.Middleware {
	config.applyDefaults()

	return func(next client.SendFunc) client.SendFunc {
		if config.MaxRetries == 0 {
			return next
		}
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			response, err := next(ctx, request)
			for n := 0; err != nil; n++ {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
					return nil, err
				}
				if !config.RetryableFunc(err) {
					return nil, err
				}
				if n == config.MaxRetries {
					return nil, fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, config.MaxRetries, err)
				}

				delay := retryDelay(config, n, err)
				if config.Logger != nil {
					config.Logger.WarnContext(ctx, "retrying llm call",
						slog.Int("retry", n+1),
						slog.Int("max_retries", config.MaxRetries),
						slog.Duration("delay", delay),
						slog.String("error", err.Error()),
					)
				}

				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					return nil, ctx.Err()
				case <-timer.C:
				}

				response, err = next(ctx, request)
			}
			return response, nil
		}
	}
}
