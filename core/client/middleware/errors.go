package middleware

import "errors"

// ErrRetryExhausted is returned by the retry middleware when every attempt
// failed with a retryable error. It wraps the last provider error, so
// [errors.Is] matches both.
var ErrRetryExhausted = errors.New("intake: all retry attempts exhausted")
