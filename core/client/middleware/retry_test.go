package middleware

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/leofalp/intake/providers/ai"
)

func fastRetry(maxRetries int) RetryConfig {
	return RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

// countingSend fails with errs in order, then succeeds.
func countingSend(calls *int, errs ...error) func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
	return func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
		*calls++
		if *calls <= len(errs) {
			return nil, errs[*calls-1]
		}
		return &ai.ChatResponse{Content: "ok"}, nil
	}
}

func TestRetry_SucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	send := NewRetryMiddleware(fastRetry(3))(countingSend(&calls,
		&ai.StatusError{StatusCode: http.StatusServiceUnavailable, Body: "busy"},
		&ai.StatusError{StatusCode: http.StatusTooManyRequests, Body: "slow down"},
	))

	resp, err := send(context.Background(), ai.ChatRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("Content = %q", resp.Content)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	calls := 0
	bad := &ai.StatusError{StatusCode: http.StatusBadRequest, Body: "bad request"}
	send := NewRetryMiddleware(fastRetry(3))(countingSend(&calls, bad, bad))

	_, err := send(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, bad) {
		t.Fatalf("error = %v, want %v", err, bad)
	}
	if errors.Is(err, ErrRetryExhausted) {
		t.Error("non-retryable error must not be reported as exhausted")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_Exhausted(t *testing.T) {
	calls := 0
	last := &ai.StatusError{StatusCode: http.StatusBadGateway, Body: "gateway"}
	send := NewRetryMiddleware(fastRetry(2))(countingSend(&calls, last, last, last, last))

	_, err := send(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("error = %v, want ErrRetryExhausted", err)
	}
	if !errors.Is(err, last) {
		t.Errorf("error %v does not wrap last provider error", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_NegativeDisables(t *testing.T) {
	calls := 0
	boom := &ai.StatusError{StatusCode: http.StatusInternalServerError}
	send := NewRetryMiddleware(fastRetry(-1))(countingSend(&calls, boom))

	_, err := send(context.Background(), ai.ChatRequest{})
	if err != boom {
		t.Fatalf("error = %v, want the provider error unchanged", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_ContextErrorsNotRetried(t *testing.T) {
	calls := 0
	send := NewRetryMiddleware(RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		RetryableFunc:  func(error) bool { return true },
	})(countingSend(&calls, context.DeadlineExceeded, context.DeadlineExceeded))

	_, err := send(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_CancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	send := NewRetryMiddleware(RetryConfig{
		MaxRetries:     3,
		InitialBackoff: time.Hour,
		MaxBackoff:     time.Hour,
	})(func(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
		calls++
		cancel()
		return nil, &ai.StatusError{StatusCode: http.StatusServiceUnavailable}
	})

	_, err := send(ctx, ai.ChatRequest{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestComputeBackoff(t *testing.T) {
	config := RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2,
		JitterFraction: 0.1,
	}

	tests := []struct {
		attempt int
		min     time.Duration
		max     time.Duration
	}{
		{0, 100 * time.Millisecond, 110 * time.Millisecond},
		{1, 200 * time.Millisecond, 220 * time.Millisecond},
		{2, 400 * time.Millisecond, 440 * time.Millisecond},
		{5, time.Second, 1100 * time.Millisecond},
	}

	for _, tt := range tests {
		got := computeBackoff(config, tt.attempt)
		if got < tt.min || got > tt.max {
			t.Errorf("computeBackoff(%d) = %v, want in [%v, %v]", tt.attempt, got, tt.min, tt.max)
		}
	}
}

func TestRetryDelay_HonoursRetryAfter(t *testing.T) {
	config := RetryConfig{
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     time.Second,
		BackoffFactor:  2,
		JitterFraction: 0.1,
	}

	tests := []struct {
		name string
		err  error
		min  time.Duration
		max  time.Duration
	}{
		{"plain backoff", errors.New("boom"), 10 * time.Millisecond, 11 * time.Millisecond},
		{"shorter retry-after", &ai.StatusError{StatusCode: 429, RetryAfter: time.Millisecond}, 10 * time.Millisecond, 11 * time.Millisecond},
		{"longer retry-after", &ai.StatusError{StatusCode: 429, RetryAfter: 500 * time.Millisecond}, 500 * time.Millisecond, 500 * time.Millisecond},
		{"capped retry-after", &ai.StatusError{StatusCode: 503, RetryAfter: time.Hour}, time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := retryDelay(config, 0, tt.err)
			if got < tt.min || got > tt.max {
				t.Errorf("retryDelay = %v, want in [%v, %v]", got, tt.min, tt.max)
			}
		})
	}
}

func TestRetry_LogsEachRetry(t *testing.T) {
	var buf bytes.Buffer
	config := fastRetry(2)
	config.Logger = slog.New(slog.NewTextHandler(&buf, nil))

	calls := 0
	transient := &ai.StatusError{StatusCode: http.StatusServiceUnavailable, Body: "loading"}
	send := NewRetryMiddleware(config)(countingSend(&calls, transient))

	if _, err := send(context.Background(), ai.ChatRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Count(buf.String(), "retrying llm call"); got != 1 {
		t.Errorf("logged %d retries, want 1:\n%s", got, buf.String())
	}
}

func TestDefaultRetryableFunc(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", &ai.StatusError{StatusCode: 429}, true},
		{"500", &ai.StatusError{StatusCode: 500}, true},
		{"529", &ai.StatusError{StatusCode: 529}, true},
		{"wrapped 503", fmt.Errorf("openai: %w", &ai.StatusError{StatusCode: 503}), true},
		{"401", &ai.StatusError{StatusCode: 401}, false},
		{"connection refused", fmt.Errorf("dial tcp 127.0.0.1:8000: %w", syscall.ECONNREFUSED), true},
		{"status text only", errors.New("non-2xx status 503"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := defaultRetryableFunc(tt.err); got != tt.want {
				t.Errorf("defaultRetryableFunc(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
