package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// EnvAPIKey overrides the stored key of OpenAI-kind providers.
const EnvAPIKey = "OPENAI_API_KEY"

const credentialsFile = "credentials.json"

// Credentials maps provider names to their stored API keys.
type Credentials struct {
	Providers map[string]ProviderCredentials `json:"providers"`
}

// ProviderCredentials is the stored secret of one provider.
type ProviderCredentials struct {
	APIKey string `json:"api_key"`
}

// LoadCredentials reads ~/.config/typedesc/credentials.json. A missing file
// yields empty credentials.
func LoadCredentials() (*Credentials, error) {
	dir, err := DataDir()
	if err != nil {
		return nil, err
	}
	creds := &Credentials{Providers: map[string]ProviderCredentials{}}

	data, err := os.ReadFile(filepath.Join(dir, credentialsFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return creds, nil
	case err != nil:
		return nil, err
	}
	if err := json.Unmarshal(data, creds); err != nil {
		return nil, fmt.Errorf("parse %s: %w", credentialsFile, err)
	}
	if creds.Providers == nil {
		creds.Providers = map[string]ProviderCredentials{}
	}
	return creds, nil
}

// SaveCredentials writes creds to the data directory, readable by the
// owner only.
func SaveCredentials(creds *Credentials) error {
	dir, err := EnsureDataDir()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, credentialsFile), append(data, '\n'), 0o600)
}

// GetAPIKey returns the stored key of provider, or "".
func (c *Credentials) GetAPIKey(provider string) string {
	if c == nil {
		return ""
	}
	return c.Providers[provider].APIKey
}

// ResolveAPIKey returns the key a provider authenticates with. For
// OpenAI-kind providers a non-empty OPENAI_API_KEY wins over the stored key.
func (c *Credentials) ResolveAPIKey(name string, p ProviderConfig) string {
	if p.KindOrDefault() == KindOpenAI {
		if v := strings.TrimSpace(os.Getenv(EnvAPIKey)); v != "" {
			return v
		}
	}
	return c.GetAPIKey(name)
}

// SetAPIKey stores apiKey for provider.
func (c *Credentials) SetAPIKey(provider, apiKey string) {
	if c.Providers == nil {
		c.Providers = map[string]ProviderCredentials{}
	}
	c.Providers[provider] = ProviderCredentials{APIKey: strings.TrimSpace(apiKey)}
}
