// Package config loads runtime configuration for the bookmate CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file passed with --config / -c.
//  3. BOOKMATE_CLI_SERVER_URL, BOOKMATE_CLI_REQUEST_TIMEOUT, BOOKMATE_CLI_TOKEN_FILE.
//  4. Command-line flags of the cobra root command, applied by the caller.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "3s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "http://localhost:8080",
//	  "request_timeout": "10s",
//	  "token_file": "/home/me/.config/bookmate/token"
//	}
package config
