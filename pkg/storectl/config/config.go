package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	VersionV1 = "v1"

	// DefaultClientID is the OAuth client registered for this CLI on the
	// store's identity provider.
	DefaultClientID = "lellostore-cli"
)

const (
	TokenStorageFile     = "file"
	TokenStorageKeychain = "keychain"
)

type Config struct {
	Version        string    `yaml:"version"`
	CurrentContext string    `yaml:"current-context,omitempty"`
	Contexts       []Context `yaml:"contexts,omitempty"`
	Settings       Settings  `yaml:"settings,omitempty"`
}

type Settings struct {
	OutputFormat string `yaml:"output-format,omitempty"`
	TokenStorage string `yaml:"token-storage,omitempty"`
}

type Context struct {
	Name                  string `yaml:"name"`
	Server                string `yaml:"server"`
	OIDC                  OIDC   `yaml:"oidc,omitempty"`
	CAFile                string `yaml:"ca-file,omitempty"`
	InsecureSkipTLSVerify bool   `yaml:"insecure-skip-tls-verify,omitempty"`
}

type OIDC struct {
	Issuer   string   `yaml:"issuer,omitempty"`
	ClientID string   `yaml:"client-id,omitempty"`
	Scopes   []string `yaml:"scopes,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Version: VersionV1,
		Settings: Settings{
			OutputFormat: "table",
			TokenStorage: TokenStorageFile,
		},
	}
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, content, 0o600)
}

func (c *Config) FindContext(name string) (*Context, error) {
	for i := range c.Contexts {
		if c.Contexts[i].Name == name {
			return &c.Contexts[i], nil
		}
	}
	return nil, fmt.Errorf("context not found: %s", name)
}

func (c *Config) CurrentContextOrDefault() string {
	if c.CurrentContext != "" {
		return c.CurrentContext
	}
	if len(c.Contexts) > 0 {
		return c.Contexts[0].Name
	}
	return ""
}

// ClientIDOrDefault returns the context's client ID, falling back to the
// CLI's registered client.
func (ctx *Context) ClientIDOrDefault() string {
	if ctx.OIDC.ClientID != "" {
		return ctx.OIDC.ClientID
	}
	return DefaultClientID
}

func (c *Config) Validate() error {
	if c.Version == "" {
		return errors.New("config version missing")
	}
	for _, ctx := range c.Contexts {
		if strings.TrimSpace(ctx.Name) == "" {
			return errors.New("context name cannot be empty")
		}
		if strings.TrimSpace(ctx.Server) == "" {
			return fmt.Errorf("context %s server is required", ctx.Name)
		}
	}
	switch c.Settings.TokenStorage {
	case "", TokenStorageFile, TokenStorageKeychain:
	default:
		return fmt.Errorf("unknown token storage: %s", c.Settings.TokenStorage)
	}
	return nil
}
