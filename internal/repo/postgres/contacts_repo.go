package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/webtwist/internal/domain/contact"
	"github.com/geocoder89/webtwist/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ContactsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewContactsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ContactsRepo {
	return &ContactsRepo{pool: pool, prom: prom}
}

func (r *ContactsRepo) Create(ctx context.Context, m contact.Message) error {
	return observe(r.prom, "contacts.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO contact_messages (id, name, email, message, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			m.ID, m.Name, m.Email, m.Message, m.CreatedAt, m.UpdatedAt,
		)
		return err
	})
}

func (r *ContactsRepo) List(ctx context.Context) ([]contact.Message, error) {
	out := make([]contact.Message, 0)

	err := observe(r.prom, "contacts.list", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, name, email, message, created_at, updated_at
			 FROM contact_messages
			 ORDER BY created_at DESC, id DESC`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var m contact.Message
			if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt, &m.UpdatedAt); err != nil {
				return err
			}
			out = append(out, m)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *ContactsRepo) UpdateMessage(ctx context.Context, id, message string) (contact.Message, error) {
	var m contact.Message

	err := observe(r.prom, "contacts.update", func() error {
		return r.pool.QueryRow(ctx,
			`UPDATE contact_messages
			 SET message = $2, updated_at = NOW()
			 WHERE id = $1
			 RETURNING id, name, email, message, created_at, updated_at`,
			id, message,
		).Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt, &m.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return contact.Message{}, contact.ErrNotFound
		}
		return contact.Message{}, err
	}

	return m, nil
}

func (r *ContactsRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := observe(r.prom, "contacts.delete", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM contact_messages WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return contact.ErrNotFound
	}
	return nil
}
