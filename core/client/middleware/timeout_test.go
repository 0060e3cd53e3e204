package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leofalp/intake/providers/ai"
)

func TestTimeout_CancelsSlowCall(t *testing.T) {
	send := NewTimeoutMiddleware(20 * time.Millisecond)(func(ctx context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	_, err := send(context.Background(), ai.ChatRequest{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want DeadlineExceeded", err)
	}
}

func TestTimeout_SetsDeadline(t *testing.T) {
	var hasDeadline bool
	send := NewTimeoutMiddleware(time.Minute)(func(ctx context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		_, hasDeadline = ctx.Deadline()
		return &ai.ChatResponse{}, nil
	})

	if _, err := send(context.Background(), ai.ChatRequest{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasDeadline {
		t.Error("expected a deadline on the inner context")
	}
}

func TestTimeout_ShorterParentDeadlineWins(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	parentDeadline, _ := parent.Deadline()

	var got time.Time
	send := NewTimeoutMiddleware(time.Hour)(func(ctx context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		got, _ = ctx.Deadline()
		return &ai.ChatResponse{}, nil
	})

	_, _ = send(parent, ai.ChatRequest{})
	if !got.Equal(parentDeadline) {
		t.Errorf("deadline = %v, want parent deadline %v", got, parentDeadline)
	}
}

func TestTimeout_DisabledWhenNonPositive(t *testing.T) {
	var hasDeadline bool
	send := NewTimeoutMiddleware(0)(func(ctx context.Context, _ ai.ChatRequest) (*ai.ChatResponse, error) {
		_, hasDeadline = ctx.Deadline()
		return &ai.ChatResponse{}, nil
	})

	_, _ = send(context.Background(), ai.ChatRequest{})
	if hasDeadline {
		t.Error("zero timeout must not set a deadline")
	}
}
