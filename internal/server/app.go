// Package server wires configuration, storage, notification and the HTTP
// boundary together and runs the auth server until it is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/bookmate-auth/internal/cryptox"
	"github.com/dmitrijs2005/bookmate-auth/internal/dbx"
	"github.com/dmitrijs2005/bookmate-auth/internal/logging"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/auth"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/config"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/httpserver"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/metrics"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/notify"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpserver.HTTPServer
}

// NewApp validates c and builds every component. Logs go to logOut (stdout
// when nil).
func NewApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(c.LogFormat, c.LogLevel, logOut)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	rm, db, err := openStorage(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app := &App{config: c, logger: logger, db: db}
	if err := app.build(ctx, rm); err != nil {
		app.close()
		return nil, err
	}
	return app, nil
}

func (app *App) build(ctx context.Context, rm repomanager.RepositoryManager) error {
	c := app.config

	if err := rm.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	hasher, err := cryptox.NewHasher(c.PasswordHashAlgorithm, c.PasswordHashCost)
	if err != nil {
		return fmt.Errorf("hasher init error: %w", err)
	}

	issuer, err := auth.NewIssuer(auth.TokenConfig{
		SigningKey: c.JWTSigningKey,
		Issuer:     c.JWTIssuer,
		Audience:   c.JWTAudience,
	})
	if err != nil {
		return fmt.Errorf("token issuer init error: %w", err)
	}

	notifier, err := newNotifier(c, app.logger)
	if err != nil {
		return fmt.Errorf("notifier init error: %w", err)
	}

	m := metrics.New()

	svc, err := services.NewAuthService(rm.Accounts(app.db), hasher, issuer, notifier, c, app.logger, m)
	if err != nil {
		return fmt.Errorf("auth service init error: %w", err)
	}

	app.server = httpserver.NewHTTPServer(c.EndpointAddrHTTP, app.logger, svc, issuer, m)
	return nil
}

func openStorage(ctx context.Context, c *config.Config) (repomanager.RepositoryManager, *sql.DB, error) {
	if c.StorageBackend == config.StorageBackendMemory {
		return repomanager.NewMemoryRepositoryManager(), nil, nil
	}

	db, err := dbx.Open(ctx, repomanager.DriverName, c.DatabaseDSN, c.DBConnectAttempts)
	if err != nil {
		return nil, nil, err
	}
	return repomanager.NewPostgresRepositoryManager(), db, nil
}

func newNotifier(c *config.Config, logger logging.Logger) (notify.Notifier, error) {
	if c.NotifierBackend == config.NotifierBackendSMTP {
		return notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			Username: c.SMTPUsername,
			Password: c.SMTPPassword,
			Sender:   c.SMTPSender,
		})
	}
	return notify.NewLogNotifier(logger), nil
}

// withSignals returns a context cancelled on SIGINT, SIGTERM or SIGQUIT.
func withSignals(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

// Run serves HTTP until ctx is cancelled or a termination signal arrives,
// then releases the database.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := withSignals(ctx)
	defer stop()
	defer app.close()

	app.logger.Info(ctx, "Starting app...",
		"storage", app.config.StorageBackend, "notifier", app.config.NotifierBackend)

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		return err
	}

	app.logger.Info(context.Background(), "App stopped")
	return nil
}

func (app *App) close() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "closing database", "error", err)
	}
	app.db = nil
}
