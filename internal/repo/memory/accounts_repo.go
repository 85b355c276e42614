package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/webtwist/internal/domain/account"
	"github.com/google/uuid"
)

type AccountsRepo struct {
	mu      sync.RWMutex
	items   map[string]account.Account // id -> account
	byEmail map[string]string          // normalized email -> id
}

func NewAccountsRepo() *AccountsRepo {
	return &AccountsRepo{
		items:   make(map[string]account.Account),
		byEmail: make(map[string]string),
	}
}

func (r *AccountsRepo) Create(_ context.Context, email, passwordHash string, role account.Role) (account.Account, error) {
	email = account.NormalizeEmail(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[email]; ok {
		return account.Account{}, account.ErrEmailAlreadyUsed
	}

	acc := account.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	r.items[acc.ID] = acc
	r.byEmail[email] = acc.ID

	return acc, nil
}

func (r *AccountsRepo) FindByEmail(_ context.Context, email string) (account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[account.NormalizeEmail(email)]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return r.items[id], nil
}

func (r *AccountsRepo) FindByID(_ context.Context, id string) (account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.items[id]
	if !ok {
		return account.Account{}, account.ErrNotFound
	}
	return acc, nil
}

// Delete exists so tests can simulate an account removed after its token was issued.
func (r *AccountsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.items[id]
	if !ok {
		return account.ErrNotFound
	}
	delete(r.items, id)
	delete(r.byEmail, acc.Email)
	return nil
}
