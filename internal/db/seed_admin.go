package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/webtwist/internal/config"
	"github.com/geocoder89/webtwist/internal/domain/account"
	"github.com/geocoder89/webtwist/internal/security"
)

// AccountStore is the subset of the accounts repository the seed needs.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (account.Account, error)
	Create(ctx context.Context, email, passwordHash string, role account.Role) (account.Account, error)
}

// EnsureAdminUser creates the configured admin account when it does not exist yet.
// It reports whether an account was created.
func EnsureAdminUser(ctx context.Context, store AccountStore, cfg config.Config) (bool, error) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return false, nil
	}

	_, err := store.FindByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, account.ErrNotFound) {
		return false, fmt.Errorf("lookup admin: %w", err)
	}

	hash, err := security.HashPassword(cfg.AdminPassword)
	if err != nil {
		return false, err
	}

	_, err = store.Create(ctx, cfg.AdminEmail, hash, account.RoleAdmin)
	if errors.Is(err, account.ErrEmailAlreadyUsed) {
		// another instance won the race
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create admin: %w", err)
	}

	return true, nil
}
