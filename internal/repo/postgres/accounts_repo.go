package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/webtwist/internal/domain/account"
	"github.com/geocoder89/webtwist/internal/observability"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AccountsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAccountsRepo(pool *pgxpool.Pool, prom *observability.Prom) *AccountsRepo {
	return &AccountsRepo{pool: pool, prom: prom}
}

func (r *AccountsRepo) Create(ctx context.Context, email, passwordHash string, role account.Role) (account.Account, error) {
	acc := account.Account{
		ID:           uuid.NewString(),
		Email:        account.NormalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	err := observe(r.prom, "accounts.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO accounts (id, email, password_hash, role, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			acc.ID, acc.Email, acc.PasswordHash, string(acc.Role), acc.CreatedAt,
		)
		return err
	})
	if err != nil {
		if isUniqueViolation(err, "accounts_email_lower_uniq") {
			return account.Account{}, account.ErrEmailAlreadyUsed
		}
		return account.Account{}, err
	}

	return acc, nil
}

func (r *AccountsRepo) FindByEmail(ctx context.Context, email string) (account.Account, error) {
	return r.findOne(ctx, "accounts.find_by_email",
		`SELECT id, email, password_hash, role, created_at
		 FROM accounts
		 WHERE LOWER(email) = $1`,
		account.NormalizeEmail(email),
	)
}

func (r *AccountsRepo) FindByID(ctx context.Context, id string) (account.Account, error) {
	return r.findOne(ctx, "accounts.find_by_id",
		`SELECT id, email, password_hash, role, created_at
		 FROM accounts
		 WHERE id = $1`,
		id,
	)
}

func (r *AccountsRepo) findOne(ctx context.Context, op, query string, arg string) (account.Account, error) {
	var acc account.Account
	var role string

	err := observe(r.prom, op, func() error {
		return r.pool.QueryRow(ctx, query, arg).Scan(
			&acc.ID,
			&acc.Email,
			&acc.PasswordHash,
			&role,
			&acc.CreatedAt,
		)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, err
	}

	acc.Role = account.Role(role)
	return acc, nil
}
