package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/bookmate-auth/internal/common"
	"github.com/dmitrijs2005/bookmate-auth/internal/dbx"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query :=
		`SELECT id, email, password_hash, auth_provider, is_email_confirmed, created_at, updated_at
		 FROM accounts
		 WHERE email = $1
		 `

	a := &models.Account{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.AuthProvider, &a.IsEmailConfirmed, &a.CreatedAt, &a.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return a, nil
}

// Insert relies on the unique index over accounts.email; a concurrent insert
// of the same email loses with SQLSTATE 23505.
func (r *PostgresRepository) Insert(ctx context.Context, account *models.Account) error {
	query :=
		`INSERT INTO accounts (id, email, password_hash, auth_provider, is_email_confirmed)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.ID, account.Email, account.PasswordHash, account.AuthProvider, account.IsEmailConfirmed,
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return common.ErrDuplicateEmail
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, account *models.Account) error {
	query :=
		`UPDATE accounts SET is_email_confirmed = is_email_confirmed OR $2, updated_at = now()
		 WHERE id = $1
		 RETURNING is_email_confirmed, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, account.ID, account.IsEmailConfirmed).
		Scan(&account.IsEmailConfirmed, &account.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
