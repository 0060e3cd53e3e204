package openai

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/leofalp/intake/internal/utils"
	"github.com/leofalp/intake/providers/ai"
)

const (
	// DefaultEndpoint is the local inference server the intake form talks to by default.
	DefaultEndpoint = "http://127.0.0.1:8000/v1/chat/completions"
	// DefaultModel is sent when neither the request nor the provider names one.
	DefaultModel = "TinyLlama/TinyLlama-1.1B-Chat-v1.0"

	chatCompletionsPath = "/chat/completions"
)

// OpenAIProvider implements the Provider interface for chat-completions APIs.
type OpenAIProvider struct {
	apiKey   string
	endpoint string
	model    string
	client   *http.Client
}

// New creates a provider configured from LLM_API_URL, LLM_API_KEY and
// LLM_MODEL, falling back to [DefaultEndpoint] and [DefaultModel].
func New() *OpenAIProvider {
	endpoint := os.Getenv("LLM_API_URL")
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	model := os.Getenv("LLM_MODEL")
	if model == "" {
		model = DefaultModel
	}

	return &OpenAIProvider{
		apiKey:   os.Getenv("LLM_API_KEY"),
		endpoint: endpoint,
		model:    model,
		client:   &http.Client{},
	}
}

// WithAPIKey sets the API key for the provider. An empty key sends no
// Authorization header, which is what most local servers expect.
func (p *OpenAIProvider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = apiKey
	return p
}

// WithBaseURL sets the API base URL (for example "https://api.openai.com/v1");
// the chat-completions path is appended.
func (p *OpenAIProvider) WithBaseURL(baseURL string) ai.Provider {
	p.endpoint = strings.TrimRight(baseURL, "/") + chatCompletionsPath
	return p
}

// WithEndpoint sets the full chat-completions URL.
func (p *OpenAIProvider) WithEndpoint(endpoint string) *OpenAIProvider {
	p.endpoint = endpoint
	return p
}

// WithModel sets the model used when a request does not name one.
func (p *OpenAIProvider) WithModel(model string) *OpenAIProvider {
	p.model = model
	return p
}

// WithHttpClient sets a custom HTTP client
func (p *OpenAIProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	p.client = httpClient
	return p
}

// Endpoint returns the chat-completions URL requests are sent to.
func (p *OpenAIProvider) Endpoint() string {
	return p.endpoint
}

// SendMessage implements the Provider interface
func (p *OpenAIProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if request.Model == "" {
		request.Model = p.model
	}

	httpResponse, resp, err := utils.DoPostSync[chatCompletionResponse](ctx, p.client, p.endpoint, p.apiKey, requestToChatCompletion(request))
	if err != nil {
		return nil, err
	}

	if resp == nil {
		return nil, fmt.Errorf("empty response from chat completions API: %s", httpResponse.Status)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("chat completions API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in chat completions response")
	}

	return chatCompletionToGeneric(*resp), nil
}
