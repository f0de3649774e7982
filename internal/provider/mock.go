package provider

import (
	"context"
	"sync"
	"time"
)

// MockProvider answers every Chat with a fixed reply. It records the
// conversations it receives.
type MockProvider struct {
	name string

	mu    sync.Mutex
	text  string
	err   error
	delay time.Duration
	calls [][]Message
}

// NewMock creates a mock that replies with response.
func NewMock(name, response string) *MockProvider {
	return &MockProvider{name: name, text: response}
}

// MockFactory creates mocks that reply with a fixed response.
type MockFactory struct {
	name     string
	response string
}

func NewMockFactory(name, response string) *MockFactory {
	return &MockFactory{name: name, response: response}
}

func (f *MockFactory) Name() string { return f.name }

func (f *MockFactory) Create(string, Options) (Provider, error) {
	return NewMock(f.name, f.response), nil
}

// WithChatError makes Chat fail with err.
func (p *MockProvider) WithChatError(err error) *MockProvider {
	p.mu.Lock()
	p.err = err
	p.mu.Unlock()
	return p
}

// SetDelay holds every reply back by delay, or until the context ends.
func (p *MockProvider) SetDelay(delay time.Duration) *MockProvider {
	p.mu.Lock()
	p.delay = delay
	p.mu.Unlock()
	return p
}

// WithResponse replaces the reply.
func (p *MockProvider) WithResponse(response string) *MockProvider {
	p.mu.Lock()
	p.text = response
	p.mu.Unlock()
	return p
}

// Calls returns the conversations Chat received, oldest first.
func (p *MockProvider) Calls() [][]Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]Message(nil), p.calls...)
}

func (p *MockProvider) Name() string { return p.name }

func (p *MockProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	p.mu.Lock()
	p.calls = append(p.calls, messages)
	text, err, delay := p.text, p.err, p.delay
	p.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	} else if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

func (p *MockProvider) Close() error { return nil }
