package ai

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// StatusError is returned when the completion server answers with a non-2xx
// status.
type StatusError struct {
	StatusCode int
	// Body is the response body, truncated.
	Body string
	// RetryAfter is the delay the server asked for, zero when it sent none.
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("non-2xx status %d: %s", e.StatusCode, e.Body)
}

// Transient reports whether the same request may succeed later: rate limits,
// gateway failures and an overloaded or still-loading model.
func (e *StatusError) Transient() bool {
	switch e.StatusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
		529: // overloaded
		return true
	}
	return false
}

// ParseRetryAfter reads a Retry-After header given either as seconds or as an
// HTTP date relative to now. Unparseable or past values yield zero.
func ParseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs <= 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil && at.After(now) {
		return at.Sub(now)
	}
	return 0
}
