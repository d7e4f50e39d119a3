package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/bookmate-auth/internal/common"
	"github.com/dmitrijs2005/bookmate-auth/internal/server/models"
)

// MemoryRepository keeps accounts in process memory. It hands out copies so
// callers cannot mutate stored state without going through Update.
type MemoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*models.Account
	byID    map[string]string
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byEmail: make(map[string]*models.Account),
		byID:    make(map[string]string),
		now:     time.Now,
	}
}

func (r *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryRepository) Insert(ctx context.Context, account *models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[account.Email]; ok {
		return common.ErrDuplicateEmail
	}

	now := r.now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	cp := *account
	r.byEmail[account.Email] = &cp
	r.byID[account.ID] = account.Email
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, account *models.Account) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	email, ok := r.byID[account.ID]
	if !ok {
		return common.ErrorNotFound
	}
	stored := r.byEmail[email]

	stored.IsEmailConfirmed = stored.IsEmailConfirmed || account.IsEmailConfirmed
	stored.UpdatedAt = r.now().UTC()

	account.IsEmailConfirmed = stored.IsEmailConfirmed
	account.UpdatedAt = stored.UpdatedAt
	return nil
}
