// Package explain asks a language model to explain a piece of C# code. All
// failures other than cancellation come back as readable text.
package explain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/xonecas/typedesc/internal/provider"
	"github.com/xonecas/typedesc/internal/store"
	"github.com/xonecas/typedesc/internal/treesitter"
)

const (
	// NotConfiguredMessage is returned when no provider is available.
	NotConfiguredMessage = "AI is not configured. Set the OPENAI_API_KEY environment variable and try again."
	// UnavailablePrefix starts every failure message.
	UnavailablePrefix = "AI insight unavailable: "

	noResponse = "no response"
)

// Request is one explanation request.
type Request struct {
	Tree      *treesitter.Tree
	Position  treesitter.Position
	Selection string
	Language  string // display name; derived from the file when empty
}

// Options configure a Service.
type Options struct {
	Model             string
	Cache             *store.Cache
	RequestsPerMinute int           // 0 = unlimited
	Timeout           time.Duration // 0 = none
	MaxSnippetChars   int           // 0 = unlimited
}

// Service explains code through a provider, with caching and rate limiting.
type Service struct {
	provider provider.Provider
	model    string
	cache    *store.Cache
	limiter  *rate.Limiter
	timeout  time.Duration
	maxChars int
}

// NewService creates a Service. A nil provider yields a service that only
// reports it is not configured.
func NewService(p provider.Provider, opts Options) *Service {
	s := &Service{
		provider: p,
		model:    opts.Model,
		cache:    opts.Cache,
		timeout:  opts.Timeout,
		maxChars: opts.MaxSnippetChars,
	}
	if opts.RequestsPerMinute > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(float64(opts.RequestsPerMinute)/60), opts.RequestsPerMinute)
	}
	return s
}

// Configured reports whether explanations can be requested.
func (s *Service) Configured() bool {
	return s != nil && s.provider != nil
}

// Explain returns the explanation of the code selected by req. The only
// error it returns is the context's, when ctx is cancelled; every other
// failure is reported in the returned text. An empty snippet yields "".
func (s *Service) Explain(ctx context.Context, req Request) (string, error) {
	if !s.Configured() {
		return NotConfiguredMessage, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	snippet := Snippet(req.Tree, req.Position, req.Selection)
	if strings.TrimSpace(snippet) == "" {
		return "", nil
	}
	snippet = Truncate(snippet, s.maxChars)

	path := ""
	if req.Tree != nil {
		path = req.Tree.Path
	}
	lang := req.Language
	if lang == "" {
		lang = LanguageOf(path)
	}
	lang = NormalizeLanguage(lang)

	key := store.Key(s.provider.Name()+"/"+s.model, lang, snippet)
	if text, ok := s.cache.Get(key); ok {
		log.Debug().Str("file", path).Msg("explanation served from cache")
		return text, nil
	}

	text, err := s.ask(ctx, Messages(FileName(path), lang, snippet))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		log.Warn().Err(err).Str("file", path).Str("provider", s.provider.Name()).Msg("explanation failed")
		return UnavailablePrefix + err.Error(), nil
	}
	if strings.TrimSpace(text) == "" {
		return noResponse, nil
	}
	s.cache.Set(key, s.model, text)
	return text, nil
}

func (s *Service) ask(ctx context.Context, msgs []provider.Message) (string, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			return "", errors.New("rate limit exceeded")
		}
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	text, err := s.provider.Chat(ctx, msgs)
	if errors.Is(err, context.DeadlineExceeded) {
		return "", errors.New("request timed out")
	}
	return text, err
}

// Close releases the provider's connections.
func (s *Service) Close() error {
	if !s.Configured() {
		return nil
	}
	return s.provider.Close()
}
