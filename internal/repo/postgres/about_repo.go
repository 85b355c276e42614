package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/webtwist/internal/domain/about"
	"github.com/geocoder89/webtwist/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AboutRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAboutRepo(pool *pgxpool.Pool, prom *observability.Prom) *AboutRepo {
	return &AboutRepo{pool: pool, prom: prom}
}

func (r *AboutRepo) Get(ctx context.Context) (about.Page, error) {
	var p about.Page

	err := observe(r.prom, "about.get", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT content, updated_at FROM about_page WHERE id = 1`,
		).Scan(&p.Content, &p.UpdatedAt)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return about.Page{}, about.ErrNotFound
		}
		return about.Page{}, err
	}

	return p, nil
}

func (r *AboutRepo) Upsert(ctx context.Context, content string) (about.Page, error) {
	var p about.Page

	err := observe(r.prom, "about.upsert", func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO about_page (id, content, updated_at)
			 VALUES (1, $1, NOW())
			 ON CONFLICT (id) DO UPDATE
			 SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at
			 RETURNING content, updated_at`,
			content,
		).Scan(&p.Content, &p.UpdatedAt)
	})
	if err != nil {
		return about.Page{}, err
	}

	return p, nil
}
