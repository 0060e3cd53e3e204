package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/leofalp/intake/core/client"
	"github.com/leofalp/intake/internal/utils"
	"github.com/leofalp/intake/providers/ai"
)

// LogLevel controls how much detail the logging middleware emits per request.
type LogLevel int

const (
	// LogLevelMinimal logs the model, duration and token counts.
	LogLevelMinimal LogLevel = iota

	// LogLevelStandard adds prompt and reply sizes, the response format and
	// the finish reason.
	LogLevelStandard

	// LogLevelVerbose adds the last user message and the reply, truncated.
	//
	// WARNING: prompts carry the user's personal data. Do not enable this level
	// in production.
	LogLevelVerbose
)

// truncateLen is the maximum content length included in verbose log output.
const truncateLen = 500

// NewLoggingMiddleware returns a middleware that logs every provider call
// before and after it runs. A nil logger falls back to slog.Default().
//
// Provider failures carrying an HTTP status are logged at Warn when a retry
// may recover them and at Error otherwise. A reply cut off by the token limit
// is logged at Warn since its JSON is almost always incomplete.
func NewLoggingMiddleware(logger *slog.Logger, level LogLevel) client.Middleware {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next client.SendFunc) client.SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			logger.InfoContext(ctx, "llm send", requestAttrs(request, level)...)

			start := time.Now()
			response, err := next(ctx, request)
			elapsed := time.Since(start)

			if err != nil {
				logFailure(ctx, logger, request.Model, elapsed, err)
				return nil, err
			}

			attrs := responseAttrs(response, elapsed, level)
			if response != nil && response.FinishReason == finishLength {
				logger.WarnContext(ctx, "llm reply truncated at token limit", attrs...)
				return response, nil
			}
			logger.InfoContext(ctx, "llm send completed", attrs...)

			return response, nil
		}
	}
}

// finishLength is the OpenAI finish reason for a reply stopped by max_tokens.
const finishLength = "length"

func logFailure(ctx context.Context, logger *slog.Logger, model string, elapsed time.Duration, err error) {
	attrs := []any{
		slog.String("model", model),
		slog.Duration("duration", elapsed),
		slog.String("error", err.Error()),
	}

	lvl := slog.LevelError
	var statusErr *ai.StatusError
	if errors.As(err, &statusErr) {
		attrs = append(attrs, slog.Int("status", statusErr.StatusCode))
		if statusErr.RetryAfter > 0 {
			attrs = append(attrs, slog.Duration("retry_after", statusErr.RetryAfter))
		}
		if statusErr.Transient() {
			lvl = slog.LevelWarn
		}
	}

	logger.Log(ctx, lvl, "llm send failed", attrs...)
}

func requestAttrs(request ai.ChatRequest, level LogLevel) []any {
	attrs := []any{slog.String("model", request.Model)}
	if level < LogLevelStandard {
		return attrs
	}

	promptChars := 0
	for _, m := range request.Messages {
		promptChars += len(m.Content)
	}
	attrs = append(attrs,
		slog.Int("messages", len(request.Messages)),
		slog.Int("prompt_chars", promptChars),
	)
	if request.ResponseFormat != nil {
		format := request.ResponseFormat.Type
		if request.ResponseFormat.OutputSchema != nil {
			format = "json_schema"
		}
		if format != "" {
			attrs = append(attrs, slog.String("response_format", format))
		}
	}

	if level >= LogLevelVerbose {
		if last, ok := lastUserMessage(request.Messages); ok {
			attrs = append(attrs, slog.String("user_message", utils.TruncateString(last, truncateLen)))
		}
	}

	return attrs
}

// lastUserMessage returns the message carrying the source text.
func lastUserMessage(messages []ai.Message) (string, bool) {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == ai.RoleUser {
			return messages[i].Content, true
		}
	}
	return "", false
}

func responseAttrs(response *ai.ChatResponse, elapsed time.Duration, level LogLevel) []any {
	if response == nil {
		return []any{slog.Duration("duration", elapsed)}
	}

	attrs := []any{
		slog.String("model", response.Model),
		slog.Duration("duration", elapsed),
	}
	if u := response.Usage; u != nil {
		attrs = append(attrs,
			slog.Int("prompt_tokens", u.PromptTokens),
			slog.Int("completion_tokens", u.CompletionTokens),
			slog.Int("total_tokens", u.TotalTokens),
		)
	}

	if level >= LogLevelStandard {
		attrs = append(attrs, slog.Int("reply_chars", len(response.Content)))
		if response.FinishReason != "" {
			attrs = append(attrs, slog.String("finish_reason", response.FinishReason))
		}
		if response.Refusal != "" {
			attrs = append(attrs, slog.Bool("refused", true))
		}
	}

	if level >= LogLevelVerbose && response.Content != "" {
		attrs = append(attrs, slog.String("reply", utils.TruncateString(response.Content, truncateLen)))
	}

	return attrs
}
