// Package lumagram loads client configuration.
//
// Configuration comes from an optional YAML file overlaid with LUMAGRAM_*
// environment variables. It controls the backend base URL, the static asset
// base, the messages poll interval, and where the session cookie file lives.
package lumagram

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// Config holds all client settings.
type Config struct {
	// APIBase is the backend origin, e.g. http://localhost:5000. The /api
	// prefix is appended per request.
	APIBase string `koanf:"api_base" yaml:"api_base"`
	// AssetBase is the origin serving static images. Defaults to APIBase.
	AssetBase string `koanf:"asset_base" yaml:"asset_base"`
	// PollIntervalMs is the conversation poll interval in milliseconds.
	PollIntervalMs int `koanf:"poll_interval_ms" yaml:"poll_interval_ms"`
	// StateDir holds the persisted session cookie file.
	StateDir string `koanf:"state_dir" yaml:"state_dir"`
	// RequestTimeoutSec bounds each HTTP request.
	RequestTimeoutSec int `koanf:"request_timeout_sec" yaml:"request_timeout_sec"`
	// Verbose enables debug-level request logging.
	Verbose bool `koanf:"verbose" yaml:"verbose"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		APIBase:           "http://localhost:5000",
		PollIntervalMs:    5000,
		RequestTimeoutSec: 15,
	}
}

// DefaultConfigPath returns ~/.lumagram/config.yaml, or a relative
// fallback when the home directory cannot be determined.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lumagram/config.yaml"
	}
	return filepath.Join(home, ".lumagram", "config.yaml")
}

// LoadConfig reads configuration from the given YAML file (if it exists),
// then overlays LUMAGRAM_* environment variables.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// LUMAGRAM_API_BASE -> api_base, etc.
	if err := k.Load(env.Provider("LUMAGRAM_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "LUMAGRAM_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the given YAML file path, creating the
// parent directory if needed.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.AssetBase == "" {
		c.AssetBase = c.APIBase
	}
	if c.PollIntervalMs == 0 {
		c.PollIntervalMs = 5000
	}
	if c.RequestTimeoutSec == 0 {
		c.RequestTimeoutSec = 15
	}
	if c.StateDir == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			c.StateDir = filepath.Join(home, ".lumagram")
		} else {
			c.StateDir = ".lumagram"
		}
	}
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.APIBase == "" {
		return fmt.Errorf("api_base is required")
	}
	if !strings.HasPrefix(c.APIBase, "http://") && !strings.HasPrefix(c.APIBase, "https://") {
		return fmt.Errorf("api_base must be an http(s) URL, got %q", c.APIBase)
	}
	if c.PollIntervalMs < 0 {
		return fmt.Errorf("poll_interval_ms must be non-negative")
	}
	if c.RequestTimeoutSec < 0 {
		return fmt.Errorf("request_timeout_sec must be non-negative")
	}
	return nil
}

// PollInterval returns the poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// RequestTimeout returns the per-request timeout as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}
