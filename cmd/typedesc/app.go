package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/typedesc/internal/config"
	"github.com/xonecas/typedesc/internal/delta"
	"github.com/xonecas/typedesc/internal/engine"
	"github.com/xonecas/typedesc/internal/explain"
	"github.com/xonecas/typedesc/internal/provider"
	"github.com/xonecas/typedesc/internal/render"
	"github.com/xonecas/typedesc/internal/store"
	"github.com/xonecas/typedesc/internal/workspace"
)

// app holds the components one command invocation works with.
type app struct {
	cfg       *config.Config
	cache     *store.Cache
	ws        *workspace.Workspace
	explainer *explain.Service
	engine    *engine.Engine
	sink      *render.TerminalSink
}

// newApp wires the workspace rooted at root, the store, the configured
// provider and the engine. Output goes to out.
func newApp(root string, out io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	dir, err := config.EnsureDataDir()
	if err != nil {
		return nil, fmt.Errorf("data directory: %w", err)
	}
	cache, err := store.Open(filepath.Join(dir, "typedesc.db"), cfg.Explain.CacheTTLOrDefault())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	p, model, err := newProvider(cfg)
	if err != nil {
		cache.Close()
		return nil, err
	}
	ex := explain.NewService(p, explain.Options{
		Model:             model,
		Cache:             cache,
		RequestsPerMinute: cfg.Explain.RequestsPerMinuteOrDefault(),
		Timeout:           cfg.Explain.TimeoutOrDefault(),
		MaxSnippetChars:   cfg.Explain.MaxSnippetCharsOrDefault(),
	})

	ws := workspace.New(root, delta.New(cache.DB()))
	return &app{
		cfg:       cfg,
		cache:     cache,
		ws:        ws,
		explainer: ex,
		engine:    engine.New(ws, ex),
		sink:      render.NewTerminalSink(out, cfg.UI.SyntaxThemeOrDefault(), cfg.UI.Width),
	}, nil
}

// newProvider creates the default provider. It returns a nil provider when
// no API key is available, which leaves explanations unconfigured.
func newProvider(cfg *config.Config) (provider.Provider, string, error) {
	creds, err := config.LoadCredentials()
	if err != nil {
		log.Warn().Err(err).Msg("failed to load credentials")
	}

	registry := provider.NewRegistry()
	for name, pc := range cfg.Providers {
		key := creds.ResolveAPIKey(name, pc)
		if key == "" {
			continue
		}
		switch pc.KindOrDefault() {
		case config.KindZen:
			registry.RegisterFactory(name, provider.NewZenFactory(name, key, pc.Endpoint))
		default:
			registry.RegisterFactory(name, provider.NewOpenAIFactory(name, pc.Endpoint, key))
		}
	}

	pc, ok := cfg.Providers[cfg.DefaultProvider]
	if !ok {
		return nil, "", nil
	}
	model := pc.Model
	if model == "" {
		model = config.DefaultModel
	}
	p, err := registry.Create(cfg.DefaultProvider, model, provider.Options{
		Temperature: pc.TemperatureOrDefault(),
	})
	if errors.Is(err, provider.ErrProviderNotFound) {
		log.Debug().Str("provider", cfg.DefaultProvider).Strs("available", registry.List()).
			Msg("no API key; explanations disabled")
		return nil, model, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("create provider %s: %w", cfg.DefaultProvider, err)
	}
	return p, model, nil
}

func (a *app) Close() {
	a.engine.Close()
	if err := a.explainer.Close(); err != nil {
		log.Debug().Err(err).Msg("closing provider")
	}
	if err := a.cache.Close(); err != nil {
		log.Warn().Err(err).Msg("closing store")
	}
}

// openForCaret wires an app rooted at the directory of the caret file.
func openForCaret(out io.Writer) (*app, error) {
	return newApp(filepath.Dir(caretFile), out)
}
