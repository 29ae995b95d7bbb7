package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Default panel origin; override with SUBPANEL_BASE_URL.
const DefaultBaseURL = "https://report.soft99.sbs:2053"

// Config holds runtime configuration for the panel client.
// All values come from SUBPANEL_* environment variables.
type Config struct {
	BaseURL        string        `envconfig:"BASE_URL"`
	ConnectTimeout time.Duration `envconfig:"CONNECT_TIMEOUT" default:"15s"`
	ReadTimeout    time.Duration `envconfig:"READ_TIMEOUT" default:"20s"`
	StateDir       string        `envconfig:"STATE_DIR"`
	AppVersion     string        `envconfig:"APP_VERSION"`
	Debug          bool          `envconfig:"DEBUG"`
}

// Load reads configuration from the environment and applies defaults.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("subpanel", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.ConnectTimeout <= 0 {
		return nil, fmt.Errorf("connect timeout must be positive, got %s", cfg.ConnectTimeout)
	}
	if cfg.ReadTimeout <= 0 {
		return nil, fmt.Errorf("read timeout must be positive, got %s", cfg.ReadTimeout)
	}

	return &cfg, nil
}

// ResolveStateDir returns the directory holding persisted client state,
// defaulting to <user config dir>/subpanel when StateDir is unset.
func (c *Config) ResolveStateDir() (string, error) {
	if c.StateDir != "" {
		return c.StateDir, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config directory: %w", err)
	}
	return filepath.Join(base, "subpanel"), nil
}
