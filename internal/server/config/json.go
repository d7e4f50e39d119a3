package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/bookmate-auth/internal/flagx"
	"github.com/dmitrijs2005/bookmate-auth/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Pointer fields distinguish an
// absent key from an explicit zero so a partial file only overrides what it
// mentions.
type JsonConfig struct {
	EndpointAddrHTTP      *string         `json:"endpoint_addr_http"`
	StorageBackend        *string         `json:"storage_backend"`
	DatabaseDSN           *string         `json:"database_dsn"`
	DBConnectAttempts     *uint64         `json:"db_connect_attempts"`
	JWTSigningKey         *string         `json:"jwt_signing_key"`
	JWTIssuer             *string         `json:"jwt_issuer"`
	JWTAudience           *string         `json:"jwt_audience"`
	PasswordHashAlgorithm *string         `json:"password_hash_algorithm"`
	PasswordHashCost      *int            `json:"password_hash_cost"`
	ConfirmationURL       *string         `json:"confirmation_url"`
	CallTimeout           *timex.Duration `json:"call_timeout"`
	NotifierBackend       *string         `json:"notifier_backend"`
	SMTPHost              *string         `json:"smtp_host"`
	SMTPPort              *int            `json:"smtp_port"`
	SMTPUsername          *string         `json:"smtp_username"`
	SMTPPassword          *string         `json:"smtp_password"`
	SMTPSender            *string         `json:"smtp_sender"`
	LogFormat             *string         `json:"log_format"`
	LogLevel              *string         `json:"log_level"`
}

// parseJSON loads the file named by -c / -config, if any, into config.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setIf(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setIf(&config.StorageBackend, c.StorageBackend)
	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.DBConnectAttempts, c.DBConnectAttempts)
	setIf(&config.JWTSigningKey, c.JWTSigningKey)
	setIf(&config.JWTIssuer, c.JWTIssuer)
	setIf(&config.JWTAudience, c.JWTAudience)
	setIf(&config.PasswordHashAlgorithm, c.PasswordHashAlgorithm)
	setIf(&config.PasswordHashCost, c.PasswordHashCost)
	setIf(&config.ConfirmationURL, c.ConfirmationURL)
	if c.CallTimeout != nil {
		config.CallTimeout = c.CallTimeout.Duration
	}
	setIf(&config.NotifierBackend, c.NotifierBackend)
	setIf(&config.SMTPHost, c.SMTPHost)
	setIf(&config.SMTPPort, c.SMTPPort)
	setIf(&config.SMTPUsername, c.SMTPUsername)
	setIf(&config.SMTPPassword, c.SMTPPassword)
	setIf(&config.SMTPSender, c.SMTPSender)
	setIf(&config.LogFormat, c.LogFormat)
	setIf(&config.LogLevel, c.LogLevel)

	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
