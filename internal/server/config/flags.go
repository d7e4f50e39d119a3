package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/bookmate-auth/internal/flagx"
)

// parseFlags overrides Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-b string   storage backend: postgres or memory
//	-d string   PostgreSQL DSN
//	-k string   JWT HMAC signing key
//	-i string   JWT issuer
//	-u string   JWT audience
//	-t duration timeout for each store/notifier call (e.g., "5s")
//	-n string   notifier backend: smtp or log
//	-l string   log level
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-b", "-d", "-k", "-i", "-u", "-t", "-n", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.StorageBackend, "b", config.StorageBackend, "storage backend")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.JWTSigningKey, "k", config.JWTSigningKey, "jwt signing key")
	fs.StringVar(&config.JWTIssuer, "i", config.JWTIssuer, "jwt issuer")
	fs.StringVar(&config.JWTAudience, "u", config.JWTAudience, "jwt audience")
	fs.DurationVar(&config.CallTimeout, "t", config.CallTimeout, "store/notifier call timeout")
	fs.StringVar(&config.NotifierBackend, "n", config.NotifierBackend, "notifier backend")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(args)
}
