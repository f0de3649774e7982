// Package config handles configuration loading from TOML files and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

const (
	KindOpenAI = "openai"
	KindZen    = "zen"

	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.2
)

// Config is the root configuration structure.
type Config struct {
	LogLevel        string                    `toml:"log_level"`
	DefaultProvider string                    `toml:"default_provider"`
	Providers       map[string]ProviderConfig `toml:"providers"`
	Explain         ExplainConfig             `toml:"explain"`
	UI              UIConfig                  `toml:"ui"`
}

// UIConfig holds terminal output settings.
type UIConfig struct {
	// SyntaxTheme is the Chroma theme for code previews. Defaults to
	// "vulcan" if unset.
	SyntaxTheme string `toml:"syntax_theme"`
	// Width is the panel width in columns; 0 uses the terminal width.
	Width int `toml:"width"`
}

// SyntaxThemeOrDefault returns the configured syntax theme or "vulcan" if unset.
func (u UIConfig) SyntaxThemeOrDefault() string {
	if u.SyntaxTheme == "" {
		return "vulcan"
	}
	return u.SyntaxTheme
}

// ExplainConfig holds remote explanation settings.
type ExplainConfig struct {
	MaxSnippetChars   int `toml:"max_snippet_chars"`
	TimeoutSeconds    int `toml:"timeout_seconds"`
	RequestsPerMinute int `toml:"requests_per_minute"`
	CacheTTLHours     int `toml:"cache_ttl_hours"`
}

// MaxSnippetCharsOrDefault returns the snippet cap or 6000 if unset.
func (e ExplainConfig) MaxSnippetCharsOrDefault() int {
	if e.MaxSnippetChars <= 0 {
		return 6000
	}
	return e.MaxSnippetChars
}

// TimeoutOrDefault returns the request timeout or 45 seconds if unset.
func (e ExplainConfig) TimeoutOrDefault() time.Duration {
	if e.TimeoutSeconds <= 0 {
		return 45 * time.Second
	}
	return time.Duration(e.TimeoutSeconds) * time.Second
}

// RequestsPerMinuteOrDefault returns the rate limit or 30 if unset.
func (e ExplainConfig) RequestsPerMinuteOrDefault() int {
	if e.RequestsPerMinute <= 0 {
		return 30
	}
	return e.RequestsPerMinute
}

// CacheTTLOrDefault returns the configured TTL or 24 hours if unset.
func (e ExplainConfig) CacheTTLOrDefault() time.Duration {
	if e.CacheTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(e.CacheTTLHours) * time.Hour
}

// ProviderConfig holds LLM provider settings.
type ProviderConfig struct {
	Kind        string   `toml:"kind"`
	Endpoint    string   `toml:"endpoint"`
	Model       string   `toml:"model"`
	Temperature *float64 `toml:"temperature"`
}

// KindOrDefault returns the provider kind, "openai" if unset.
func (p ProviderConfig) KindOrDefault() string {
	if p.Kind == "" {
		return KindOpenAI
	}
	return p.Kind
}

// TemperatureOrDefault returns the sampling temperature, 0.2 if unset.
func (p ProviderConfig) TemperatureOrDefault() float64 {
	if p.Temperature == nil {
		return DefaultTemperature
	}
	return *p.Temperature
}

// Default returns the configuration used when no config file exists: a
// single OpenAI provider.
func Default() *Config {
	return &Config{
		LogLevel:        "warn",
		DefaultProvider: KindOpenAI,
		Providers: map[string]ProviderConfig{
			KindOpenAI: {
				Kind:     KindOpenAI,
				Endpoint: "https://api.openai.com/v1",
				Model:    DefaultModel,
			},
		},
	}
}

// Load reads configuration from a TOML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	cfg := &Config{
		Providers: make(map[string]ProviderConfig),
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if len(cfg.Providers) == 0 {
		def := Default()
		cfg.Providers = def.Providers
		if cfg.DefaultProvider == "" {
			cfg.DefaultProvider = def.DefaultProvider
		}
	}
	if cfg.DefaultProvider == "" && len(cfg.Providers) == 1 {
		for name := range cfg.Providers {
			cfg.DefaultProvider = name
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads the config file from its default location, falling back
// to Default when there is none.
func LoadDefault() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, cfg.Validate()
	}
	return Load(path)
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if c.LogLevel != "" {
		if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
			errs = append(errs, fmt.Errorf("log_level=%q is invalid", c.LogLevel))
		}
	}

	for name, providerCfg := range c.Providers {
		errs = append(errs, validateProviderConfig(name, providerCfg)...)
	}

	if c.DefaultProvider != "" {
		if _, ok := c.Providers[c.DefaultProvider]; !ok {
			errs = append(errs, fmt.Errorf("default_provider=%q does not exist in providers", c.DefaultProvider))
		}
	}

	if c.Explain.MaxSnippetChars < 0 {
		errs = append(errs, fmt.Errorf("explain.max_snippet_chars=%d must not be negative", c.Explain.MaxSnippetChars))
	}
	if c.Explain.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("explain.timeout_seconds=%d must not be negative", c.Explain.TimeoutSeconds))
	}
	if c.Explain.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("explain.requests_per_minute=%d must not be negative", c.Explain.RequestsPerMinute))
	}
	if c.UI.Width < 0 {
		errs = append(errs, fmt.Errorf("ui.width=%d must not be negative", c.UI.Width))
	}

	return errors.Join(errs...)
}

func validateProviderConfig(name string, cfg ProviderConfig) []error {
	var errs []error
	switch cfg.KindOrDefault() {
	case KindOpenAI, KindZen:
	default:
		errs = append(errs, fmt.Errorf("providers.%s.kind=%q must be %q or %q", name, cfg.Kind, KindOpenAI, KindZen))
	}

	if cfg.Endpoint != "" {
		if err := validateEndpoint(cfg.Endpoint); err != nil {
			errs = append(errs, fmt.Errorf("providers.%s.endpoint=%q is invalid: %v", name, cfg.Endpoint, err))
		}
	}

	if cfg.Model == "" {
		errs = append(errs, fmt.Errorf("providers.%s.model is required", name))
	}

	if t := cfg.TemperatureOrDefault(); t < 0.0 || t > 2.0 {
		errs = append(errs, fmt.Errorf("providers.%s.temperature=%v must be between 0.0 and 2.0", name, t))
	}

	return errs
}

func validateEndpoint(value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return err
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return errors.New("missing scheme or host")
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the default
// provider.
func applyEnvOverrides(cfg *Config) {
	name := cfg.DefaultProvider
	p, ok := cfg.Providers[name]
	if !ok {
		return
	}
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"TYPEDESC_ENDPOINT", func(v string) {
			if v != "" {
				p.Endpoint = v
			}
		}},
		{"TYPEDESC_MODEL", func(v string) {
			if v != "" {
				p.Model = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
	cfg.Providers[name] = p
}

// DataDir returns the path to the typedesc data directory (~/.config/typedesc).
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "typedesc"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", err
	}
	return dir, nil
}
