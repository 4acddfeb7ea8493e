// Package config handles the configuration directory, its files and settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "taskboard"

	// EnvPrefix prefixes environment overrides (TASKBOARD_BASE_URL, ...).
	EnvPrefix = "TASKBOARD"

	// ConfigFile is the settings filename, without extension.
	ConfigFile = "config"

	// OAuthClientFile is the Google OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"
)

// Backend names.
const (
	BackendREST        = "rest"
	BackendGoogleTasks = "googletasks"
)

// Defaults.
const (
	DefaultBaseURL = "http://localhost:3000"
	DefaultTimeout = 5 * time.Second
	DefaultOutput  = "table"
)

// OAuth holds client-credentials settings for the REST backend.
type OAuth struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// Enabled reports whether the client-credentials flow is configured.
func (o OAuth) Enabled() bool {
	return o.ClientID != "" && o.TokenURL != ""
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Backend selects the task backend: "rest" or "googletasks".
	Backend string

	// BaseURL is the root of the REST task collection.
	BaseURL string

	// Token is a static bearer token for the REST backend.
	Token string

	OAuth OAuth

	// Timeout bounds each backend request.
	Timeout time.Duration

	// Output is the default list format: table, json or yaml.
	Output string
}

// New creates a Config with default settings and the default or specified
// config directory. It does not read any file.
// If configDir is empty, uses XDG_CONFIG_HOME/taskboard or $HOME/.config/taskboard.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:     dir,
		Backend: BackendREST,
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
		Output:  DefaultOutput,
	}, nil
}

// Load creates a Config and overlays config.yaml from the config directory
// and TASKBOARD_* environment variables. A missing file is not an error.
// Precedence: environment > config.yaml > defaults.
func Load(configDir string) (*Config, error) {
	cfg, err := New(configDir)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName(ConfigFile)
	v.SetConfigType("yaml")
	v.AddConfigPath(cfg.Dir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend", cfg.Backend)
	v.SetDefault("base_url", cfg.BaseURL)
	v.SetDefault("token", "")
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("output", cfg.Output)
	v.SetDefault("oauth.client_id", "")
	v.SetDefault("oauth.client_secret", "")
	v.SetDefault("oauth.token_url", "")
	v.SetDefault("oauth.scopes", []string{})

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading %s.yaml: %w", ConfigFile, err)
		}
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(v.GetString("backend")))
	cfg.BaseURL = strings.TrimSpace(v.GetString("base_url"))
	cfg.Token = strings.TrimSpace(v.GetString("token"))
	cfg.Timeout = v.GetDuration("timeout")
	cfg.Output = strings.ToLower(strings.TrimSpace(v.GetString("output")))
	cfg.OAuth = OAuth{
		ClientID:     v.GetString("oauth.client_id"),
		ClientSecret: v.GetString("oauth.client_secret"),
		TokenURL:     v.GetString("oauth.token_url"),
		Scopes:       v.GetStringSlice("oauth.scopes"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that cannot be defaulted.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendREST:
		if c.BaseURL == "" {
			return fmt.Errorf("base_url must be set for the %s backend", BackendREST)
		}
	case BackendGoogleTasks:
	default:
		return fmt.Errorf("unknown backend: %s", c.Backend)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	switch c.Output {
	case "table", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format: %s", c.Output)
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// OAuthClientPath returns the path to the Google OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}
