// Package dbx provides tiny DB helpers shared by repositories: a minimal
// interface (DBTX) implemented by both *sql.DB and *sql.Tx, and Open, which
// waits for the database to accept connections before handing it out.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// pingBackoff is the base delay between connection attempts.
var pingBackoff = 200 * time.Millisecond

// Open opens driver/dsn and pings it, retrying with exponential backoff up to
// attempts additional times. The pool is closed again if no ping succeeds.
//
//	db, err := dbx.Open(ctx, "pgx", cfg.DatabaseDSN, cfg.DBConnectAttempts)
func Open(ctx context.Context, driver, dsn string, attempts uint64) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	b := retry.WithMaxRetries(attempts, retry.NewExponential(pingBackoff))
	err = retry.Do(ctx, b, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	return db, nil
}
