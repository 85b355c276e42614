package account

import (
	"errors"
	"strings"
	"time"
)

type Role string

// RoleAdmin is the only role handed out by signup and the admin seed.
const RoleAdmin Role = "admin"

var (
	ErrNotFound         = errors.New("account not found")
	ErrEmailAlreadyUsed = errors.New("email already in use")
)

type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NormalizeEmail is the canonical form used for storage and lookups,
// which makes the one-account-per-email rule case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
