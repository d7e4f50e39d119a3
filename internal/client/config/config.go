package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings for the bookmate CLI.
//
// Fields:
//   - ServerURL: base URL of the auth server's HTTP API.
//   - RequestTimeout: upper bound for one API call.
//   - TokenFile: where login stores the session token for later commands.
type Config struct {
	ServerURL      string        `env:"SERVER_URL"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	TokenFile      string        `env:"TOKEN_FILE"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.RequestTimeout = 10 * time.Second
	c.TokenFile = defaultTokenFile()
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "bookmate", "token")
}

// Load constructs a Config, applies defaults, then overlays the JSON file at
// jsonPath (skipped when empty) and BOOKMATE_CLI_* environment variables.
// Later sources take precedence over earlier ones; command-line flags are
// applied on top by the caller.
func Load(jsonPath string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, jsonPath); err != nil {
		return nil, fmt.Errorf("json config: %w", err)
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "BOOKMATE_CLI_"}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
