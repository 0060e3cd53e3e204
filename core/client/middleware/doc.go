// Package middleware provides the transport middlewares used around the chat
// completion client. Each constructor returns a [client.Middleware] ready to be
// passed to [client.WithMiddleware].
//
//   - [NewTimeoutMiddleware] bounds a single provider call with context.WithTimeout.
//   - [NewRetryMiddleware] retries transient HTTP failures (429 / 5xx) with
//     exponential backoff and jitter.
//   - [NewLoggingMiddleware] emits slog entries around every call at one of
//     three verbosity levels.
//
// Middlewares execute outermost-first:
//
//	c, err := client.New(provider,
//	    client.WithMiddleware(
//	        middleware.NewRetryMiddleware(middleware.RetryConfig{MaxRetries: 2}),
//	        middleware.NewTimeoutMiddleware(30*time.Second),
//	        middleware.NewLoggingMiddleware(logger, middleware.LogLevelStandard),
//	    ),
//	)
//
// With this order every retry gets a fresh deadline. Transport retries are
// independent of the extraction attempts counted by the extractor.
package middleware
