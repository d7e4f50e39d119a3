package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/bookmate-auth/internal/dbx"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/repositories/accounts"
)

// RepositoryManager vends repositories bound to a DB handle and prepares the
// schema they rely on.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
}
