package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/bookmate-auth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. RequestTimeout
// accepts strings like "3s" or integer nanoseconds.
type JsonConfig struct {
	ServerURL      *string         `json:"server_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	TokenFile      *string         `json:"token_file"`
}

func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.TokenFile != nil {
		cfg.TokenFile = *jc.TokenFile
	}
	return nil
}
