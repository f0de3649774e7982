package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	zen "github.com/sacenox/go-opencode-ai-zen-sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.RegisterFactory("mock", NewMockFactory("mock", "hello"))
	r.RegisterFactory("local", NewOpenAIFactory("local", "http://localhost:8000/v1", ""))

	assert.Equal(t, []string{"local", "mock"}, r.List())

	p, err := r.Create("mock", "any", Options{})
	require.NoError(t, err)
	got, err := p.Chat(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = r.Create("missing", "m", Options{})
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestMockProvider(t *testing.T) {
	boom := errors.New("boom")
	p := NewMock("mock", "ok").WithChatError(boom)
	_, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	assert.ErrorIs(t, err, boom)
	require.Len(t, p.Calls(), 1)
	assert.Equal(t, "x", p.Calls()[0][0].Content)

	slow := NewMock("mock", "late").SetDelay(time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = slow.Chat(ctx, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOpenAIChat(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":" Widget wraps a native handle. "},"finish_reason":"stop"}],"usage":{"prompt_tokens":12,"completion_tokens":6,"total_tokens":18}}`))
	}))
	defer srv.Close()

	p := NewOpenAI("openai", srv.URL+"/v1/", "sk-test", "gpt-4o-mini", Options{Temperature: 0.2})
	defer p.Close()

	out, err := p.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "explain"},
		{Role: RoleSystem, Content: "use plain words"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Widget wraps a native handle.", out)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.InDelta(t, 0.2, got.Temperature, 1e-6)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, RoleSystem, got.Messages[0].Role)
	assert.Equal(t, "be brief\n\nuse plain words", got.Messages[0].Content)
	assert.Equal(t, "explain", got.Messages[1].Content)
}

func TestOpenAIChatAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	p := NewOpenAI("openai", srv.URL, "bad", "gpt-4o-mini", Options{})
	_, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key provided")
}

func TestOpenAIChatNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	p := NewOpenAI("openai", srv.URL, "k", "m", Options{})
	_, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestSplitSystem(t *testing.T) {
	system, rest := splitSystem([]Message{
		{Role: "system", Content: " a "},
		{Role: "user", Content: "q"},
		{Role: "developer", Content: "b"},
		{Role: "system", Content: "  "},
	})
	assert.Equal(t, "a\n\nb", system)
	require.Len(t, rest, 1)
	assert.Equal(t, "q", rest[0].Content)
}

func TestCollectChatCompletionsEvents(t *testing.T) {
	var sb strings.Builder
	chunks := []string{
		`{"choices":[{"delta":{"role":"assistant"}}]}`,
		`{"choices":[{"delta":{"content":"Hello"}}]}`,
		`{"choices":[{"delta":{"content":", world"}}]}`,
		`not json`,
	}
	for _, c := range chunks {
		assert.False(t, collectEvent(&sb, zen.UnifiedEvent{Data: json.RawMessage(c)}))
	}
	assert.True(t, collectEvent(&sb, zen.UnifiedEvent{Data: json.RawMessage("[DONE]")}))
	assert.Equal(t, "Hello, world", sb.String())
}
