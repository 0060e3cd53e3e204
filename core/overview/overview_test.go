package overview

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/leofalp/intake/providers/ai"
)

// TestOverviewFromContext_CreatesNew verifies that a new Overview is created and
// injected into the context pointer when none is stored yet.
func TestOverviewFromContext_CreatesNew(t *testing.T) {
	ctx := context.Background()
	overview := OverviewFromContext(&ctx)

	if overview == nil {
		t.Fatal("expected a new Overview, got nil")
	}
	if ctx.Value(overviewContextKey) == nil {
		t.Error("expected context to be updated with the new Overview")
	}
}

func TestOverviewFromContext_ReturnsExisting(t *testing.T) {
	ctx := context.Background()

	first := OverviewFromContext(&ctx)
	second := OverviewFromContext(&ctx)

	if first != second {
		t.Error("expected the same Overview pointer on second call")
	}
}

func TestOverviewFromContext_WrongType(t *testing.T) {
	ctx := context.WithValue(context.Background(), overviewContextKey, "not-an-overview")
	if result := OverviewFromContext(&ctx); result != nil {
		t.Errorf("expected nil for wrong type, got %v", result)
	}
}

func TestToContext_NilContext(t *testing.T) {
	overview := &Overview{}
	var nilCtx context.Context
	if overview.ToContext(nilCtx) == nil {
		t.Error("expected non-nil context when nil is passed to ToContext")
	}
}

func TestToContext_Roundtrip(t *testing.T) {
	original := &Overview{Calls: 2}
	ctx := original.ToContext(context.Background())

	if retrieved := OverviewFromContext(&ctx); retrieved != original {
		t.Error("expected the same Overview pointer after roundtrip")
	}
}

func TestRecording(t *testing.T) {
	overview := &Overview{}

	overview.AddCall()
	overview.IncludeUsage(&ai.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15})
	overview.AddAttempt("parse")
	overview.AddCall()
	overview.IncludeUsage(nil)
	overview.AddAttempt("validation")
	overview.AddCall()
	overview.IncludeUsage(&ai.Usage{PromptTokens: 10, CompletionTokens: 7, TotalTokens: 17})
	overview.AddAttempt("")

	want := &Overview{
		Calls:      3,
		TotalUsage: ai.Usage{PromptTokens: 20, CompletionTokens: 12, TotalTokens: 32},
		Attempts:   3,
		Failures:   map[string]int{"parse": 1, "validation": 1},
		Succeeded:  true,
	}
	if diff := cmp.Diff(want, overview); diff != "" {
		t.Errorf("overview mismatch (-want +got):\n%s", diff)
	}
}

func TestNilOverview(t *testing.T) {
	var overview *Overview

	overview.AddCall()
	overview.IncludeUsage(&ai.Usage{TotalTokens: 1})
	overview.AddAttempt("parse")
	overview.StartExecution()
	overview.EndExecution()

	if overview.ExecutionDuration() != 0 {
		t.Error("nil overview should report zero duration")
	}
	if overview.LogAttrs() != nil {
		t.Error("nil overview should have no attributes")
	}
}

func TestExecutionDuration(t *testing.T) {
	overview := &Overview{}
	if overview.ExecutionDuration() != 0 {
		t.Error("duration before start should be 0")
	}

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	overview.ExecutionStartTime = start
	if overview.ExecutionDuration() != 0 {
		t.Error("duration before end should be 0")
	}

	overview.ExecutionEndTime = start.Add(1500 * time.Millisecond)
	if got := overview.ExecutionDuration(); got != 1500*time.Millisecond {
		t.Errorf("duration = %s", got)
	}
}

func TestLogAttrs(t *testing.T) {
	overview := &Overview{
		Calls:      2,
		Attempts:   2,
		TotalUsage: ai.Usage{TotalTokens: 40},
		Failures:   map[string]int{"transport": 1},
	}

	got := map[string]any{}
	for _, a := range overview.LogAttrs() {
		attr := a.(slog.Attr)
		got[attr.Key] = attr.Value.Any()
	}

	want := map[string]any{
		"attempts":           int64(2),
		"llm_calls":          int64(2),
		"total_tokens":       int64(40),
		"duration":           time.Duration(0),
		"failures_transport": int64(1),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("attrs mismatch (-want +got):\n%s", diff)
	}
}
