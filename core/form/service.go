package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/leofalp/intake/core/extract"
	"github.com/leofalp/intake/core/overview"
)

// Messages shown to the user.
const (
	MessageAutofilled = "Form auto-filled successfully."
	MessageSaved      = "Form saved."
)

// ErrSessionBusy is returned when a session already has an extraction in flight.
var ErrSessionBusy = errors.New("form: an extraction is already running for this session")

// ErrNoStore is returned by [Service.Save] when the service has no store.
var ErrNoStore = errors.New("form: no store configured")

// Extractor is the extraction capability the service needs.
type Extractor interface {
	Extract(ctx context.Context, source string) (*extract.Record, error)
}

// Outcome is the terminal result of one autofill request.
type Outcome struct {
	OK      bool      `json:"ok"`
	Message string    `json:"message"`
	Form    *FormData `json:"form,omitempty"`
}

// Service serves autofill and save requests for any number of form sessions.
type Service struct {
	extractor Extractor
	store     Store
	fetcher   Fetcher
	logger    *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithStore sets the store used by [Service.Save].
func WithStore(store Store) ServiceOption {
	return func(s *Service) {
		s.store = store
	}
}

// WithFetcher enables [FormatURL] sources.
func WithFetcher(fetcher Fetcher) ServiceOption {
	return func(s *Service) {
		s.fetcher = fetcher
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService returns a Service that extracts with extractor.
func NewService(extractor Extractor, opts ...ServiceOption) *Service {
	s := &Service{
		extractor: extractor,
		logger:    slog.Default(),
		inflight:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Autofill extracts a record from source and maps it onto the form. A second
// call for a session that is still running returns ErrSessionBusy. When all
// attempts fail the outcome carries the user-facing failure message and a nil
// error; the returned error is reserved for rejected requests, bad input and
// cancellation.
func (s *Service) Autofill(ctx context.Context, sessionID, source string, format SourceFormat) (*Outcome, error) {
	if !s.acquire(sessionID) {
		return nil, ErrSessionBusy
	}
	defer s.release(sessionID)

	text, err := s.prepare(ctx, source, format)
	if err != nil {
		return nil, err
	}

	ov := &overview.Overview{}
	ctx = ov.ToContext(ctx)

	record, err := s.extractor.Extract(ctx, text)
	if err != nil {
		if errors.Is(err, extract.ErrExhausted) {
			message := extract.Message(err)
			attrs := append([]any{
				slog.String("session_id", sessionID),
				slog.String("message", message),
			}, ov.LogAttrs()...)
			s.logger.WarnContext(ctx, "autofill failed", attrs...)
			return &Outcome{OK: false, Message: message}, nil
		}
		return nil, err
	}

	data := FromRecord(record)
	attrs := append([]any{slog.String("session_id", sessionID)}, ov.LogAttrs()...)
	s.logger.InfoContext(ctx, "autofill succeeded", attrs...)
	return &Outcome{OK: true, Message: MessageAutofilled, Form: &data}, nil
}

// Save persists data and returns the user-facing confirmation.
func (s *Service) Save(ctx context.Context, data FormData) (string, error) {
	if s.store == nil {
		return SaveErrorMessage(ErrNoStore), ErrNoStore
	}
	if err := s.store.Save(ctx, data); err != nil {
		s.logger.ErrorContext(ctx, "save failed", slog.String("error", err.Error()))
		return SaveErrorMessage(err), err
	}
	return MessageSaved, nil
}

// Latest returns the most recently saved form.
func (s *Service) Latest(ctx context.Context) (FormData, error) {
	if s.store == nil {
		return FormData{}, ErrNoStore
	}
	return s.store.Latest(ctx)
}

// SaveErrorMessage renders a save failure for the user.
func SaveErrorMessage(err error) string {
	return fmt.Sprintf("Save error: %v", err)
}

func (s *Service) prepare(ctx context.Context, source string, format SourceFormat) (string, error) {
	if format != FormatURL {
		return PrepareSource(source, format)
	}
	if s.fetcher == nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	markdown, err := s.fetcher.FetchMarkdown(ctx, strings.TrimSpace(source))
	if err != nil {
		return "", fmt.Errorf("form: fetch source: %w", err)
	}
	return PrepareSource(markdown, FormatMarkdown)
}

func (s *Service) acquire(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[sessionID]; busy {
		return false
	}
	s.inflight[sessionID] = struct{}{}
	return true
}

func (s *Service) release(sessionID string) {
	s.mu.Lock()
	delete(s.inflight, sessionID)
	s.mu.Unlock()
}
