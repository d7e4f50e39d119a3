package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/bookmate-auth/internal/dbx"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/repositories/accounts"
)

// MemoryRepositoryManager serves one shared in-memory store regardless of the
// handle passed in. There is no schema to migrate.
type MemoryRepositoryManager struct {
	accounts *accounts.MemoryRepository
}

func NewMemoryRepositoryManager() RepositoryManager {
	return &MemoryRepositoryManager{accounts: accounts.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) Accounts(dbx.DBTX) accounts.Repository {
	return m.accounts
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}
