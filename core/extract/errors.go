package extract

import (
	"errors"
	"fmt"

	"github.com/leofalp/intake/core/schema"
)

// ErrExhausted is wrapped by every [ExhaustedError].
var ErrExhausted = errors.New("extract: attempts exhausted")

// FailureKind classifies why an attempt failed.
type FailureKind string

const (
	// FailureParse: the located text did not decode to a JSON object.
	FailureParse FailureKind = "parse"
	// FailureValidation: the object violated the schema. This includes the
	// "{}" fallback produced when no JSON could be located.
	FailureValidation FailureKind = "validation"
	// FailureTransport: the completer returned an error or timed out.
	FailureTransport FailureKind = "transport"
)

// AttemptError is the failure recorded for a single attempt.
type AttemptError struct {
	Attempt int
	Kind    FailureKind
	Err     error
}

func (e *AttemptError) Error() string {
	var detail string
	var verr *schema.ValidationError
	if errors.As(e.Err, &verr) {
		detail = verr.Message
	} else if e.Err != nil {
		detail = e.Err.Error()
	}

	switch e.Kind {
	case FailureParse:
		return "Parsing error: " + detail
	case FailureValidation:
		return "Validation error: " + detail
	case FailureTransport:
		return "Transport error: " + detail
	default:
		return detail
	}
}

func (e *AttemptError) Unwrap() error { return e.Err }

// ExhaustedError is returned when every attempt failed. Last is the failure of
// the final attempt.
type ExhaustedError struct {
	Attempts int
	Last     *AttemptError
}

func (e *ExhaustedError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("extract: failed after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("extract: failed after %d attempts: %s", e.Attempts, e.Last.Error())
}

// Unwrap exposes both ErrExhausted and the last attempt error.
func (e *ExhaustedError) Unwrap() []error {
	if e.Last == nil {
		return []error{ErrExhausted}
	}
	return []error{ErrExhausted, e.Last}
}
