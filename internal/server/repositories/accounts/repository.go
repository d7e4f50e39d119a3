// Package accounts is the account store gateway: lookup by email, insert with
// atomic email uniqueness, and confirmation updates.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/bookmate-auth/internal/server/models"
)

// Repository persists accounts.
//
// FindByEmail returns common.ErrorNotFound when no account has the email.
// Insert returns common.ErrDuplicateEmail when the email is taken; the check
// and the write are one atomic step. Update changes only the confirmation
// flag (never un-confirming) and returns common.ErrorNotFound for an unknown
// ID.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	Insert(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
}
