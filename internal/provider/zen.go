package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	zen "github.com/sacenox/go-opencode-ai-zen-sdk"
)

// DefaultZenEndpoint is used when no endpoint is configured.
const DefaultZenEndpoint = "https://opencode.ai/zen/v1"

// ZenProvider talks to OpenCode Zen, which routes a model to the chat
// completions, messages, responses or models endpoint. The SDK only streams;
// Chat collects the text deltas of whichever endpoint answered.
type ZenProvider struct {
	name        string
	client      *zen.Client
	model       string
	temperature float64
	maxTokens   int
}

func NewZen(name, apiKey, baseURL, model string, opts Options) (*ZenProvider, error) {
	if baseURL == "" {
		baseURL = DefaultZenEndpoint
	}
	client, err := zen.NewClient(zen.Config{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
	})
	if err != nil {
		return nil, fmt.Errorf("zen client: %w", err)
	}

	return &ZenProvider{
		name:        name,
		client:      client,
		model:       model,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
	}, nil
}

func (p *ZenProvider) Name() string {
	return p.name
}

func (p *ZenProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	system, rest := splitSystem(messages)
	req := zen.NormalizedRequest{
		Model:    p.model,
		System:   system,
		Messages: toZenMessages(rest),
		Stream:   true,
	}
	if p.temperature > 0 {
		req.Temperature = &p.temperature
	}
	maxTokens := 4096
	if p.maxTokens > 0 {
		maxTokens = p.maxTokens
	}
	req.MaxTokens = &maxTokens

	events, errs, err := p.client.UnifiedStreamNormalized(ctx, req)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return strings.TrimSpace(sb.String()), nil
			}
			if done := collectEvent(&sb, ev); done {
				return strings.TrimSpace(sb.String()), nil
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				var apiErr *zen.APIError
				if errors.As(err, &apiErr) {
					log.Error().
						Int("status", apiErr.StatusCode).
						Str("body", string(apiErr.Body)).
						Msg("zen: stream API error")
				}
				return "", err
			}
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// collectEvent appends the text carried by ev and reports the end of the
// stream.
func collectEvent(sb *strings.Builder, ev zen.UnifiedEvent) bool {
	data := ev.Data
	if len(data) == 0 || string(data) == "[DONE]" {
		return true
	}
	var chunk map[string]any
	if err := json.Unmarshal(data, &chunk); err != nil {
		return false
	}

	// Chat completions chunks, whatever endpoint label the SDK attached.
	if choices, ok := chunk["choices"].([]any); ok {
		if len(choices) > 0 {
			choice, _ := choices[0].(map[string]any)
			delta, _ := choice["delta"].(map[string]any)
			sb.WriteString(getStringOrEmpty(delta, "content"))
		}
		return false
	}

	switch ev.Endpoint {
	case zen.EndpointMessages:
		if ev.Event == "content_block_delta" {
			delta, _ := chunk["delta"].(map[string]any)
			if getStringOrEmpty(delta, "type") == "text_delta" {
				sb.WriteString(getStringOrEmpty(delta, "text"))
			}
		}
		return ev.Event == "message_stop"
	case zen.EndpointModels:
		candidates, _ := chunk["candidates"].([]any)
		if len(candidates) == 0 {
			return false
		}
		candidate, _ := candidates[0].(map[string]any)
		content, _ := candidate["content"].(map[string]any)
		parts, _ := content["parts"].([]any)
		for _, part := range parts {
			m, _ := part.(map[string]any)
			sb.WriteString(getStringOrEmpty(m, "text"))
		}
		return false
	case zen.EndpointResponses:
		if ev.Event == "response.output_text.delta" {
			sb.WriteString(getStringOrEmpty(chunk, "delta"))
		}
		return ev.Event == "response.completed"
	}
	return false
}

func (p *ZenProvider) Close() error {
	return nil
}

func splitSystem(messages []Message) (system string, rest []Message) {
	var parts []string
	for _, m := range messages {
		if strings.EqualFold(m.Role, RoleSystem) || strings.EqualFold(m.Role, "developer") {
			if s := strings.TrimSpace(m.Content); s != "" {
				parts = append(parts, s)
			}
		} else {
			rest = append(rest, m)
		}
	}
	return strings.Join(parts, "\n\n"), rest
}

func toZenMessages(messages []Message) []zen.NormalizedMessage {
	result := make([]zen.NormalizedMessage, len(messages))
	for i, m := range messages {
		result[i] = zen.NormalizedMessage{
			Role:    m.Role,
			Content: m.Content,
		}
	}
	return result
}

func getStringOrEmpty(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

type ZenFactory struct {
	name    string
	apiKey  string
	baseURL string
}

func NewZenFactory(name, apiKey, baseURL string) *ZenFactory {
	return &ZenFactory{
		name:    name,
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

func (f *ZenFactory) Name() string { return f.name }

func (f *ZenFactory) Create(model string, opts Options) (Provider, error) {
	log.Debug().
		Str("factory", f.name).
		Str("model", model).
		Bool("has_api_key", f.apiKey != "").
		Msg("zen: creating provider")
	return NewZen(f.name, f.apiKey, f.baseURL, model, opts)
}
