package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/intake/core/overview"
	"github.com/leofalp/intake/internal/jsonschema"
	"github.com/leofalp/intake/providers/ai"
)

// ErrEmptyPrompt is returned by [Client.Complete] for an empty prompt.
var ErrEmptyPrompt = errors.New("client: prompt is empty")

// ClientOptions collects the settings applied by the functional options passed to [New].
type ClientOptions struct {
	// DefaultModel is sent on every request; empty lets the provider choose.
	DefaultModel string
	// SystemPrompt is prepended to every request when non-empty.
	SystemPrompt string
	// GenerationConfig is forwarded unchanged to the provider.
	GenerationConfig *ai.GenerationConfig
	// OutputSchema, when set, asks the provider for schema-constrained output.
	OutputSchema *jsonschema.Schema
	// Middlewares wrap the provider call, outermost first.
	Middlewares []Middleware
}

// WithDefaultModel sets the model sent on every request.
func WithDefaultModel(model string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.DefaultModel = model
	}
}

// WithSystemPrompt sets a system prompt sent ahead of every user message.
func WithSystemPrompt(prompt string) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.SystemPrompt = prompt
	}
}

// WithGenerationConfig sets sampling parameters.
func WithGenerationConfig(cfg ai.GenerationConfig) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.GenerationConfig = &cfg
	}
}

// WithOutputSchema requests structured output constrained by schema. Only
// servers supporting response_format json_schema honour it.
func WithOutputSchema(schema *jsonschema.Schema) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.OutputSchema = schema
	}
}

// WithMiddleware appends middlewares to the chain. The first middleware is the
// outermost: it runs first on the way in and last on the way out.
func WithMiddleware(middlewares ...Middleware) func(*ClientOptions) {
	return func(o *ClientOptions) {
		o.Middlewares = append(o.Middlewares, middlewares...)
	}
}

// Client sends single-message prompts through a provider and its middleware chain.
// A Client is immutable after construction and safe for concurrent use if the
// provider is.
type Client struct {
	options ClientOptions
	send    SendFunc
}

// New builds a Client around provider.
func New(provider ai.Provider, opts ...func(*ClientOptions)) (*Client, error) {
	if provider == nil {
		return nil, errors.New("client: provider is nil")
	}

	var options ClientOptions
	for _, opt := range opts {
		opt(&options)
	}

	for i, mw := range options.Middlewares {
		if mw == nil {
			return nil, fmt.Errorf("client: middleware %d is nil", i)
		}
	}

	return &Client{
		options: options,
		send:    buildSendChain(provider, options.Middlewares),
	}, nil
}

// SendMessage sends prompt as a single user message and returns the full response.
func (c *Client) SendMessage(ctx context.Context, prompt string) (*ai.ChatResponse, error) {
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	request := ai.ChatRequest{
		Model:            c.options.DefaultModel,
		SystemPrompt:     c.options.SystemPrompt,
		Messages:         []ai.Message{{Role: ai.RoleUser, Content: prompt}},
		GenerationConfig: c.options.GenerationConfig,
	}
	if c.options.OutputSchema != nil {
		request.ResponseFormat = &ai.ResponseFormat{OutputSchema: c.options.OutputSchema}
	}

	ov := overview.OverviewFromContext(&ctx)
	ov.AddCall()

	response, err := c.send(ctx, request)
	if err != nil {
		return nil, err
	}
	if response == nil {
		return nil, errors.New("client: provider returned no response")
	}
	ov.IncludeUsage(response.Usage)

	return response, nil
}

// Complete sends prompt and returns the generated text. A refusal with no
// content is reported as an error.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	response, err := c.SendMessage(ctx, prompt)
	if err != nil {
		return "", err
	}

	if response.Content == "" && response.Refusal != "" {
		return "", fmt.Errorf("client: model refused: %s", response.Refusal)
	}

	return response.Content, nil
}
