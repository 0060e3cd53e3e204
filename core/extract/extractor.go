package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leofalp/intake/core/normalize"
	"github.com/leofalp/intake/core/overview"
	"github.com/leofalp/intake/core/parse"
	"github.com/leofalp/intake/core/schema"
	"github.com/leofalp/intake/internal/utils"
)

// DefaultMaxAttempts is the attempt limit used when none is configured.
const DefaultMaxAttempts = 3

// rawLogLength bounds the completion text included in debug logs.
const rawLogLength = 300

// Options collects the settings applied by the functional options passed to [New].
type Options struct {
	MaxAttempts int
	Schema      schema.Schema
	Normalizer  *normalize.Normalizer
	LenientJSON bool
	Logger      *slog.Logger
}

// WithMaxAttempts sets the attempt limit. Values below 1 are ignored.
func WithMaxAttempts(n int) func(*Options) {
	return func(o *Options) {
		if n >= 1 {
			o.MaxAttempts = n
		}
	}
}

// WithSchema validates against s instead of [schema.IntakeV1].
func WithSchema(s schema.Schema) func(*Options) {
	return func(o *Options) {
		o.Schema = s
	}
}

// WithNormalizer replaces [normalize.Intake].
func WithNormalizer(n *normalize.Normalizer) func(*Options) {
	return func(o *Options) {
		if n != nil {
			o.Normalizer = n
		}
	}
}

// WithLenientJSON enables repair of malformed completions with jsonrepair
// when the strict locator finds nothing.
func WithLenientJSON(enabled bool) func(*Options) {
	return func(o *Options) {
		o.LenientJSON = enabled
	}
}

// WithLogger sets the logger used for per-attempt entries.
func WithLogger(logger *slog.Logger) func(*Options) {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

// Extractor runs the bounded extraction loop. It holds no per-call state and
// is safe for concurrent use if its Completer is.
type Extractor struct {
	completer Completer
	options   Options
}

// New returns an Extractor that asks c for completions.
func New(c Completer, opts ...func(*Options)) *Extractor {
	options := Options{
		MaxAttempts: DefaultMaxAttempts,
		Schema:      schema.IntakeV1,
		Normalizer:  normalize.Intake,
		Logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Extractor{completer: c, options: options}
}

// MaxAttempts returns the configured attempt limit.
func (e *Extractor) MaxAttempts() int {
	return e.options.MaxAttempts
}

// Schema returns the schema records are validated against.
func (e *Extractor) Schema() schema.Schema {
	return e.options.Schema
}

// Extract runs up to MaxAttempts attempts and returns the first valid record.
// When every attempt fails the error is an [*ExhaustedError]. Cancellation of
// ctx stops the loop and returns ctx.Err().
func (e *Extractor) Extract(ctx context.Context, source string) (*Record, error) {
	var record *Record
	err := e.run(ctx, source, func(object map[string]any) error {
		r, err := RecordFromMap(object)
		if err != nil {
			return err
		}
		record = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ExtractObject is like [Extractor.Extract] but returns the normalized,
// validated object. It serves schemas other than [schema.IntakeV1].
func (e *Extractor) ExtractObject(ctx context.Context, source string) (map[string]any, error) {
	var result map[string]any
	err := e.run(ctx, source, func(object map[string]any) error {
		result = object
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Extract runs a one-off [Extractor] with the given attempt limit.
func Extract(ctx context.Context, source string, c Completer, maxAttempts int) (*Record, error) {
	return New(c, WithMaxAttempts(maxAttempts)).Extract(ctx, source)
}

func (e *Extractor) run(ctx context.Context, source string, accept func(map[string]any) error) error {
	if e.completer == nil {
		return errors.New("extract: completer is nil")
	}

	logger := e.options.Logger
	prompt := BuildPrompt(e.options.Schema, source)

	ov := overview.OverviewFromContext(&ctx)
	ov.StartExecution()
	defer ov.EndExecution()

	var last *AttemptError
	for attempt := 1; attempt <= e.options.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		object, failure := e.attempt(ctx, attempt, prompt)
		if failure == nil {
			if err := accept(object); err != nil {
				failure = &AttemptError{Attempt: attempt, Kind: FailureValidation, Err: err}
			}
		}

		if failure == nil {
			ov.AddAttempt("")
			logger.InfoContext(ctx, "extraction succeeded",
				slog.Int("attempt", attempt),
				slog.String("schema", e.options.Schema.ID()),
			)
			return nil
		}

		// The caller's cancellation is not an attempt failure.
		if err := ctx.Err(); err != nil {
			return err
		}

		last = failure
		ov.AddAttempt(string(failure.Kind))
		logger.WarnContext(ctx, "extraction attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", e.options.MaxAttempts),
			slog.String("kind", string(failure.Kind)),
			slog.String("error", failure.Error()),
		)
	}

	return &ExhaustedError{Attempts: e.options.MaxAttempts, Last: last}
}

// attempt performs one complete, locate, decode, normalize, validate cycle.
func (e *Extractor) attempt(ctx context.Context, attempt int, prompt string) (map[string]any, *AttemptError) {
	logger := e.options.Logger

	raw, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, &AttemptError{Attempt: attempt, Kind: FailureTransport, Err: err}
	}
	logger.DebugContext(ctx, "raw completion",
		slog.Int("attempt", attempt),
		slog.String("raw", utils.TruncateString(raw, rawLogLength)),
	)

	var located string
	if e.options.LenientJSON {
		located = parse.LocateLenient(raw)
	} else {
		located = parse.Locate(raw)
	}
	if located == parse.EmptyObject {
		logger.DebugContext(ctx, "no JSON object located", slog.Int("attempt", attempt))
	}

	object, err := parse.DecodeObject(located)
	if err != nil {
		return nil, &AttemptError{Attempt: attempt, Kind: FailureParse, Err: err}
	}
	if e.options.LenientJSON {
		object = parse.Unwrap(object)
	}

	object = e.options.Normalizer.Normalize(object)

	if err := schema.Validate(e.options.Schema, object); err != nil {
		return nil, &AttemptError{Attempt: attempt, Kind: FailureValidation, Err: err}
	}

	return object, nil
}

// Message renders err the way the form reports it to the user.
func Message(err error) string {
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) {
		last := ""
		if exhausted.Last != nil {
			last = exhausted.Last.Error()
		}
		return fmt.Sprintf("Failed after %d attempts. Last error: %s", exhausted.Attempts, last)
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
