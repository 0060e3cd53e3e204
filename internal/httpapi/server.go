package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/leofalp/intake/core/form"
	"github.com/leofalp/intake/core/schema"
)

// DefaultMaxBodyBytes bounds request bodies.
const DefaultMaxBodyBytes = 1 << 20

// Server routes HTTP requests to a form service.
type Server struct {
	service      *form.Service
	schema       schema.Schema
	logger       *slog.Logger
	maxBodyBytes int64
	router       chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSchema sets the schema served at /api/v1/schema.
func WithSchema(sc schema.Schema) Option {
	return func(s *Server) {
		s.schema = sc
	}
}

// WithMaxBodyBytes overrides DefaultMaxBodyBytes.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// New builds the router for service.
func New(service *form.Service, opts ...Option) *Server {
	s := &Server{
		service:      service,
		schema:       schema.IntakeV1,
		logger:       slog.Default(),
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(securityHeaders)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/schema", s.handleSchema)
		r.Post("/sessions", s.handleNewSession)
		r.Post("/sessions/{session_id}/autofill", s.handleAutofill)
		r.Post("/forms", s.handleSave)
		r.Get("/forms/latest", s.handleLatest)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", slog.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type autofillRequest struct {
	Text   string `json:"text"`
	Format string `json:"format"`
}

type messageResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.schema.JSONSchema())
}

func (s *Server) handleNewSession(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: uuid.NewString()})
}

func (s *Server) handleAutofill(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	var req autofillRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	format, err := form.ParseFormat(req.Format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	text := req.Text
	if format == form.FormatHTML {
		text = sanitizeHTML(text)
	}

	outcome, err := s.service.Autofill(r.Context(), sessionID, text, format)
	switch {
	case err == nil:
	case errors.Is(err, form.ErrSessionBusy):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, form.ErrEmptySource), errors.Is(err, form.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, err.Error())
		return
	default:
		s.logger.ErrorContext(r.Context(), "autofill error",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !outcome.OK {
		writeJSON(w, http.StatusUnprocessableEntity, outcome)
		return
	}
	writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var data form.FormData
	if err := s.decode(w, r, &data); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	message, err := s.service.Save(r.Context(), sanitizeForm(data))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, messageResponse{OK: false, Message: message})
		return
	}
	writeJSON(w, http.StatusCreated, messageResponse{OK: true, Message: message})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.Latest(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, data)
	case errors.Is(err, form.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// decode reads one JSON value from the size-limited body.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{OK: false, Message: message})
}
