package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/webtwist/internal/domain/account"
	"github.com/geocoder89/webtwist/internal/security"
)

// CredentialStore is the persistence the auth flow needs: one record per email.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (account.Account, error)
	FindByID(ctx context.Context, id string) (account.Account, error)
	Create(ctx context.Context, email, passwordHash string, role account.Role) (account.Account, error)
}

// Identity is what a verified token resolves to for the rest of the request.
type Identity struct {
	AccountID string       `json:"id"`
	Email     string       `json:"email"`
	Role      account.Role `json:"role"`
}

type Result struct {
	Token   Token
	Account account.Account
}

type Service struct {
	store  CredentialStore
	tokens *Manager
}

func NewService(store CredentialStore, tokens *Manager) *Service {
	return &Service{store: store, tokens: tokens}
}

func (s *Service) Tokens() *Manager {
	return s.tokens
}

// Login never tells the caller whether the email exists: both a miss and a
// wrong password come back as ErrInvalidCredentials after a full bcrypt run.
func (s *Service) Login(ctx context.Context, email, password string) (Result, error) {
	acc, err := s.store.FindByEmail(ctx, account.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			security.BurnCompare(password)
			return Result{}, ErrInvalidCredentials
		}
		return Result{}, fmt.Errorf("find account: %w", err)
	}

	if err := security.CheckPassword(acc.PasswordHash, password); err != nil {
		return Result{}, ErrInvalidCredentials
	}

	return s.issue(acc)
}

// Signup creates an admin account; there is no other role to hand out.
func (s *Service) Signup(ctx context.Context, email, password string) (Result, error) {
	email = account.NormalizeEmail(email)

	_, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return Result{}, ErrDuplicateEmail
	}
	if !errors.Is(err, account.ErrNotFound) {
		return Result{}, fmt.Errorf("find account: %w", err)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return Result{}, fmt.Errorf("hash password: %w", err)
	}

	acc, err := s.store.Create(ctx, email, hash, account.RoleAdmin)
	if err != nil {
		// lost a race with a concurrent signup for the same email
		if errors.Is(err, account.ErrEmailAlreadyUsed) {
			return Result{}, ErrDuplicateEmail
		}
		return Result{}, fmt.Errorf("create account: %w", err)
	}

	return s.issue(acc)
}

// Authenticate runs the full verification chain for one Authorization header:
// bearer extraction, signature, expiry, then the account lookup.
func (s *Service) Authenticate(ctx context.Context, header string) (Identity, error) {
	raw, err := ExtractBearer(header)
	if err != nil {
		return Identity{}, err
	}

	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return Identity{}, err
	}

	acc, err := s.store.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return Identity{}, ErrAccountNotFound
		}
		return Identity{}, fmt.Errorf("find account: %w", err)
	}

	return Identity{
		AccountID: acc.ID,
		Email:     acc.Email,
		Role:      account.Role(claims.Role),
	}, nil
}

// Authorize is the role gate: the identity must carry the required role.
func Authorize(id Identity, required account.Role) error {
	if id.Role != required {
		return ErrForbidden
	}
	return nil
}

func (s *Service) issue(acc account.Account) (Result, error) {
	tok, err := s.tokens.Issue(acc)
	if err != nil {
		return Result{}, fmt.Errorf("issue token: %w", err)
	}
	return Result{Token: tok, Account: acc}, nil
}
