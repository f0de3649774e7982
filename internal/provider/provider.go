// Package provider defines the language-model provider interface used for
// remote explanations and its implementations.
package provider

import (
	"context"
	"errors"
	"sort"
)

// ErrProviderNotFound is returned when a requested provider doesn't exist.
var ErrProviderNotFound = errors.New("provider not found")

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message.
type Message struct {
	Role    string
	Content string
}

// Options tune a single provider instance.
type Options struct {
	Temperature float64
	MaxTokens   int // 0 = provider default
}

// Provider defines the interface for LLM providers.
type Provider interface {
	// Name returns the provider's identifier.
	Name() string

	// Chat sends messages and returns the complete response text.
	Chat(ctx context.Context, messages []Message) (string, error)

	// Close closes idle HTTP connections and cleans up resources.
	Close() error
}

type ProviderFactory interface {
	Name() string
	Create(model string, opts Options) (Provider, error)
}

// Registry holds available providers.
type Registry struct {
	factories map[string]ProviderFactory
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]ProviderFactory),
	}
}

func (r *Registry) RegisterFactory(name string, f ProviderFactory) {
	r.factories[name] = f
}

func (r *Registry) Create(name, model string, opts Options) (Provider, error) {
	f, ok := r.factories[name]
	if !ok {
		return nil, ErrProviderNotFound
	}
	return f.Create(model, opts)
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
