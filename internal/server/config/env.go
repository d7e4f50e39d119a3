package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv overlays variables prefixed with BOOKMATE_ (BOOKMATE_JWT_SIGNING_KEY,
// BOOKMATE_DATABASE_DSN, ...). Unset variables leave the field untouched.
func parseEnv(config *Config) error {
	if err := env.ParseWithOptions(config, env.Options{Prefix: "BOOKMATE_"}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
