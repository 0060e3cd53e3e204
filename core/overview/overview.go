package overview

import (
	"context"
	"log/slog"
	"time"

	"github.com/leofalp/intake/providers/ai"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// overviewContextKey is the key used to store Overview in context.
const overviewContextKey contextKey = "overview"

// Overview aggregates statistics for one extraction run. It is not safe for
// concurrent use; a run records into it sequentially.
type Overview struct {
	// Calls counts requests sent to the model.
	Calls int `json:"calls"`
	// TotalUsage sums the token usage reported by every response.
	TotalUsage ai.Usage `json:"total_usage"`
	// Attempts counts extraction attempts, successful or not.
	Attempts int `json:"attempts"`
	// Failures counts failed attempts by failure kind.
	Failures map[string]int `json:"failures,omitempty"`
	// Succeeded reports whether an attempt produced a valid record.
	Succeeded bool `json:"succeeded"`

	ExecutionStartTime time.Time `json:"execution_start_time,omitempty"`
	ExecutionEndTime   time.Time `json:"execution_end_time,omitempty"`
}

// OverviewFromContext retrieves the Overview from the context, creating one if
// it does not already exist. The context pointer is updated in-place when a new
// Overview is created so callers see the enriched context.
func OverviewFromContext(ctx *context.Context) *Overview {
	overviewVal := (*ctx).Value(overviewContextKey)
	if overviewVal == nil {
		overview := &Overview{}
		*ctx = overview.ToContext(*ctx)
		return overview
	}

	overview, ok := overviewVal.(*Overview)
	if !ok {
		return nil
	}
	return overview
}

// ToContext stores the Overview in the given context and returns the enriched context.
func (overview *Overview) ToContext(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}

	return context.WithValue(ctx, overviewContextKey, overview)
}

// AddCall records one request sent to the model.
func (overview *Overview) AddCall() {
	if overview == nil {
		return
	}
	overview.Calls++
}

// IncludeUsage accumulates token usage from a response into the totals.
func (overview *Overview) IncludeUsage(usage *ai.Usage) {
	if overview == nil || usage == nil {
		return
	}
	overview.TotalUsage.PromptTokens += usage.PromptTokens
	overview.TotalUsage.CompletionTokens += usage.CompletionTokens
	overview.TotalUsage.TotalTokens += usage.TotalTokens
}

// AddAttempt records the end of an attempt. An empty failureKind marks
// success.
func (overview *Overview) AddAttempt(failureKind string) {
	if overview == nil {
		return
	}
	overview.Attempts++
	if failureKind == "" {
		overview.Succeeded = true
		return
	}
	if overview.Failures == nil {
		overview.Failures = make(map[string]int)
	}
	overview.Failures[failureKind]++
}

// StartExecution marks the start of the run.
func (overview *Overview) StartExecution() {
	if overview == nil {
		return
	}
	overview.ExecutionStartTime = time.Now()
}

// EndExecution marks the end of the run.
func (overview *Overview) EndExecution() {
	if overview == nil {
		return
	}
	overview.ExecutionEndTime = time.Now()
}

// ExecutionDuration returns the total execution duration.
// Returns 0 if execution hasn't started or ended.
func (overview *Overview) ExecutionDuration() time.Duration {
	if overview == nil || overview.ExecutionStartTime.IsZero() || overview.ExecutionEndTime.IsZero() {
		return 0
	}
	return overview.ExecutionEndTime.Sub(overview.ExecutionStartTime)
}

// LogAttrs renders the overview as slog attributes.
func (overview *Overview) LogAttrs() []any {
	if overview == nil {
		return nil
	}
	attrs := []any{
		slog.Int("attempts", overview.Attempts),
		slog.Int("llm_calls", overview.Calls),
		slog.Int("total_tokens", overview.TotalUsage.TotalTokens),
		slog.Duration("duration", overview.ExecutionDuration()),
	}
	for kind, n := range overview.Failures {
		attrs = append(attrs, slog.Int("failures_"+kind, n))
	}
	return attrs
}
