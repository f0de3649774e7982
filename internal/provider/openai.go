package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIEndpoint is used when no endpoint is configured.
const DefaultOpenAIEndpoint = "https://api.openai.com/v1"

// OpenAIProvider talks to any OpenAI-compatible chat completions endpoint
// (OpenAI itself, vLLM, Ollama's /v1, llama.cpp server).
type OpenAIProvider struct {
	name        string
	client      *openai.Client
	httpClient  *http.Client
	model       string
	temperature float64
	maxTokens   int
}

// NewOpenAI creates a provider with its own HTTP client.
func NewOpenAI(name, endpoint, apiKey, model string, opts Options) *OpenAIProvider {
	if endpoint == "" {
		endpoint = DefaultOpenAIEndpoint
	}
	httpClient := &http.Client{Timeout: 2 * time.Minute}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(endpoint, "/")
	cfg.HTTPClient = httpClient

	return &OpenAIProvider{
		name:        name,
		client:      openai.NewClientWithConfig(cfg),
		httpClient:  httpClient,
		model:       model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
	}
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Chat sends messages and returns the first choice's content.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    mergeSystemMessagesOpenAI(toOpenAIMessages(messages)),
		Temperature: float32(p.temperature),
		MaxTokens:   p.maxTokens,
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			log.Error().
				Int("status", apiErr.HTTPStatusCode).
				Str("provider", p.name).
				Str("model", p.model).
				Msg("openai: API error")
			return "", fmt.Errorf("%s: %s", p.name, apiErr.Message)
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: response contained no choices", p.name)
	}

	log.Debug().
		Str("provider", p.name).
		Str("model", p.model).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("elapsed", time.Since(start)).
		Msg("openai: chat completed")

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Close closes idle HTTP connections.
func (p *OpenAIProvider) Close() error {
	if p.httpClient != nil {
		p.httpClient.CloseIdleConnections()
	}
	return nil
}

// toOpenAIMessages converts provider-agnostic messages to OpenAI SDK message format.
func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		result[i] = openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}
	return result
}

// mergeSystemMessagesOpenAI moves every system message into a single leading
// one and keeps the conversation order otherwise.
func mergeSystemMessagesOpenAI(messages []openai.ChatCompletionMessage) []openai.ChatCompletionMessage {
	if len(messages) == 0 {
		return messages
	}

	var systemMessages []string
	var conversationMessages []openai.ChatCompletionMessage

	for _, msg := range messages {
		if msg.Role == RoleSystem {
			systemMessages = append(systemMessages, msg.Content)
		} else {
			conversationMessages = append(conversationMessages, msg)
		}
	}

	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	if len(systemMessages) > 0 {
		result = append(result, openai.ChatCompletionMessage{
			Role:    RoleSystem,
			Content: strings.Join(systemMessages, "\n\n"),
		})
	}
	return append(result, conversationMessages...)
}

type OpenAIFactory struct {
	name     string
	endpoint string
	apiKey   string
}

func NewOpenAIFactory(name, endpoint, apiKey string) *OpenAIFactory {
	return &OpenAIFactory{
		name:     name,
		endpoint: endpoint,
		apiKey:   apiKey,
	}
}

func (f *OpenAIFactory) Name() string { return f.name }

func (f *OpenAIFactory) Create(model string, opts Options) (Provider, error) {
	return NewOpenAI(f.name, f.endpoint, f.apiKey, model, opts), nil
}
