package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/leofalp/intake/providers/ai"
)

type valueResponse struct {
	Value int `json:"value"`
}

func TestDoPostSync_Success(t *testing.T) {
	var gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		gotBody = string(body)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":42}`)
	}))
	defer server.Close()

	_, result, err := DoPostSync[valueResponse](context.Background(), server.Client(), server.URL, "", map[string]string{"q": "test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result == nil || result.Value != 42 {
		t.Fatalf("result = %+v, want Value=42", result)
	}
	if gotBody != `{"q":"test"}` {
		t.Errorf("body = %s", gotBody)
	}
}

func TestDoPostSync_Non2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "model loading")
	}))
	defer server.Close()

	res, _, err := DoPostSync[valueResponse](context.Background(), server.Client(), server.URL, "", struct{}{})
	if err == nil {
		t.Fatal("expected error for 503")
	}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "model loading") {
		t.Errorf("error should carry status and body, got %v", err)
	}
	var statusErr *ai.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error %T is not *ai.StatusError", err)
	}
	if statusErr.StatusCode != http.StatusServiceUnavailable || statusErr.RetryAfter != 3*time.Second {
		t.Errorf("status error = %+v", statusErr)
	}
	if res == nil || res.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected the raw response to be returned")
	}
}

func TestDoPostSync_UnmarshalError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	}))
	defer server.Close()

	_, _, err := DoPostSync[valueResponse](context.Background(), server.Client(), server.URL, "", struct{}{})
	if err == nil || !strings.Contains(err.Error(), "unmarshal") {
		t.Fatalf("expected unmarshal error, got %v", err)
	}
}

func TestDoPostSync_RequestCreateError(t *testing.T) {
	// A URL with a leading space triggers a parse error in net/http.
	_, _, err := DoPostSync[valueResponse](context.Background(), nil, " bad url", "", struct{}{})
	if err == nil {
		t.Fatal("expected request creation error")
	}
}

func TestDoPostSync_Headers(t *testing.T) {
	var auth, custom string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		custom = r.Header.Get("X-Request-Id")
		fmt.Fprint(w, `{"value":1}`)
	}))
	defer server.Close()

	_, _, err := DoPostSync[valueResponse](context.Background(), nil, server.URL, "secret", struct{}{},
		HeaderOption{Key: "X-Request-Id", Value: "abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth != "Bearer secret" {
		t.Errorf("Authorization = %q", auth)
	}
	if custom != "abc" {
		t.Errorf("X-Request-Id = %q", custom)
	}
}

func TestDoPostSync_NoAPIKeyNoAuthHeader(t *testing.T) {
	var present bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header["Authorization"]
		fmt.Fprint(w, `{"value":1}`)
	}))
	defer server.Close()

	if _, _, err := DoPostSync[valueResponse](context.Background(), nil, server.URL, "", struct{}{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if present {
		t.Error("Authorization header must not be sent without an API key")
	}
}

func TestDoPostSync_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := DoPostSync[valueResponse](ctx, server.Client(), server.URL, "", struct{}{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
}

type errCloser struct{ err error }

func (c *errCloser) Close() error { return c.err }

func TestCloseWithLog_ErrorPath(t *testing.T) {
	// Must not panic; the error is only logged.
	CloseWithLog(&errCloser{err: errors.New("close error")})
}
