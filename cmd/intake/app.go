package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leofalp/intake/core/client"
	"github.com/leofalp/intake/core/client/middleware"
	"github.com/leofalp/intake/core/extract"
	"github.com/leofalp/intake/core/form"
	"github.com/leofalp/intake/core/schema"
	"github.com/leofalp/intake/internal/config"
	"github.com/leofalp/intake/providers/ai/openai"
	"github.com/leofalp/intake/providers/formstore/filestore"
	"github.com/leofalp/intake/providers/formstore/memstore"
	"github.com/leofalp/intake/providers/formstore/pgstore"
	"github.com/leofalp/intake/providers/formstore/sqlitestore"
	"github.com/leofalp/intake/providers/source/webfetch"
)

// app is the wired service graph shared by every subcommand.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	service *form.Service
	closers []func() error
}

type appOptions struct {
	// fetchURLs enables the url source format.
	fetchURLs   bool
	maxAttempts int
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger, opts appOptions) (*app, error) {
	completer, err := newCompleter(cfg, logger)
	if err != nil {
		return nil, err
	}

	maxAttempts := cfg.Extract.MaxAttempts
	if opts.maxAttempts > 0 {
		maxAttempts = opts.maxAttempts
	}
	extractor := extract.New(completer,
		extract.WithMaxAttempts(maxAttempts),
		extract.WithLenientJSON(cfg.Extract.LenientJSON),
		extract.WithLogger(logger),
	)

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	serviceOpts := []form.ServiceOption{
		form.WithStore(store),
		form.WithLogger(logger),
	}
	if opts.fetchURLs {
		serviceOpts = append(serviceOpts, form.WithFetcher(webfetch.New()))
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		service: form.NewService(extractor, serviceOpts...),
	}
	if closeStore != nil {
		a.closers = append(a.closers, closeStore)
	}

	logger.Debug("intake configured",
		slog.String("llm_url", cfg.LLM.URL),
		slog.String("model", cfg.LLM.Model),
		slog.Int("max_attempts", maxAttempts),
		slog.String("store", cfg.Store.Kind),
	)
	return a, nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// newCompleter builds the chat client: logging outermost, then transport
// retries, then the per-call timeout.
func newCompleter(cfg config.Config, logger *slog.Logger) (*client.Client, error) {
	provider := openai.New().
		WithEndpoint(cfg.LLM.URL).
		WithModel(cfg.LLM.Model)
	provider.WithAPIKey(cfg.LLM.APIKey)

	middlewares := []client.Middleware{
		middleware.NewLoggingMiddleware(logger, middleware.LogLevelStandard),
	}
	if cfg.LLM.TransportRetries > 0 {
		middlewares = append(middlewares, middleware.NewRetryMiddleware(middleware.RetryConfig{
			MaxRetries: cfg.LLM.TransportRetries,
			Logger:     logger,
		}))
	}
	middlewares = append(middlewares, middleware.NewTimeoutMiddleware(cfg.LLM.Timeout.Std()))

	opts := []func(*client.ClientOptions){
		client.WithDefaultModel(cfg.LLM.Model),
		client.WithMiddleware(middlewares...),
	}
	if cfg.LLM.StructuredOutput {
		opts = append(opts, client.WithOutputSchema(schema.IntakeV1.JSONSchema()))
	}
	return client.New(provider, opts...)
}

// openStore returns the configured store and, when it holds resources, a
// function releasing them.
func openStore(ctx context.Context, cfg config.Store) (form.Store, func() error, error) {
	switch cfg.Kind {
	case config.StoreMemory:
		return memstore.New(), nil, nil
	case config.StoreFile:
		return filestore.New(cfg.Path), nil, nil
	case config.StoreSQLite:
		st, err := sqlitestore.Open(ctx, cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	case config.StorePostgres:
		st, pool, err := pgstore.Connect(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return st, func() error { pool.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}
