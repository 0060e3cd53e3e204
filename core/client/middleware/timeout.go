package middleware

import (
	"context"
	"time"

	"github.com/leofalp/intake/core/client"
	"github.com/leofalp/intake/providers/ai"
)

// NewTimeoutMiddleware returns a middleware that cancels a provider call after
// timeout. A shorter deadline already present on the caller's context wins.
// A non-positive timeout disables the middleware.
func NewTimeoutMiddleware(timeout time.Duration) client.Middleware {
	return func(next client.SendFunc) client.SendFunc {
		if timeout <= 0 {
			return next
		}

		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			return next(ctx, request)
		}
	}
}
