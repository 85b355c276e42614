package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/webtwist/internal/domain/blog"
	"github.com/geocoder89/webtwist/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	postColumns = `id, title, content, author, excerpt, image, tags, published, featured, views, slug, created_at, updated_at`
	// listings never ship the body
	summaryColumns = `id, title, '' AS content, author, excerpt, image, tags, published, featured, views, slug, created_at, updated_at`

	slugConstraint = "blog_posts_slug_uniq"
)

type BlogsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewBlogsRepo(pool *pgxpool.Pool, prom *observability.Prom) *BlogsRepo {
	return &BlogsRepo{pool: pool, prom: prom}
}

func (r *BlogsRepo) Create(ctx context.Context, p blog.Post) error {
	err := observe(r.prom, "blogs.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO blog_posts (`+postColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			p.ID, p.Title, p.Content, p.Author, p.Excerpt, p.Image, tagsOrEmpty(p.Tags),
			p.Published, p.Featured, p.Views, p.Slug, p.CreatedAt, p.UpdatedAt,
		)
		return err
	})
	if isUniqueViolation(err, slugConstraint) {
		return blog.ErrSlugTaken
	}
	return err
}

func (r *BlogsRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var exists bool

	err := observe(r.prom, "blogs.slug_exists", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM blog_posts WHERE slug = $1 AND id <> $2)`,
			slug, excludeID,
		).Scan(&exists)
	})

	return exists, err
}

func (r *BlogsRepo) List(ctx context.Context, f blog.ListFilter) ([]blog.Post, int, error) {
	conds := []string{"published = TRUE"}
	var args []any

	argsPosition := 1

	if f.Search != nil {
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR content ILIKE $%d OR excerpt ILIKE $%d)", argsPosition, argsPosition, argsPosition))
		args = append(args, "%"+escapeLike(*f.Search)+"%")
		argsPosition++
	}

	if f.Tag != nil {
		conds = append(conds, fmt.Sprintf("$%d = ANY(tags)", argsPosition))
		args = append(args, *f.Tag)
		argsPosition++
	}

	query := `SELECT ` + summaryColumns + `, COUNT(*) OVER() AS total
		FROM blog_posts
		WHERE ` + strings.Join(conds, " AND ") +
		fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)

	args = append(args, f.Limit, f.Offset())

	out := make([]blog.Post, 0, f.Limit)
	total := 0

	err := observe(r.prom, "blogs.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p blog.Post
			var t int
			if err := rows.Scan(postFields(&p, &t)...); err != nil {
				return err
			}
			total = t
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}

	// an out-of-range page returns no rows and so no window total
	if len(out) == 0 && f.Offset() > 0 {
		total, err = r.countPublished(ctx, conds, args[:len(args)-2])
		if err != nil {
			return nil, 0, err
		}
	}

	return out, total, nil
}

func (r *BlogsRepo) countPublished(ctx context.Context, conds []string, args []any) (int, error) {
	var total int
	err := observe(r.prom, "blogs.count", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM blog_posts WHERE `+strings.Join(conds, " AND "),
			args...,
		).Scan(&total)
	})
	return total, err
}

func (r *BlogsRepo) Featured(ctx context.Context, limit int) ([]blog.Post, error) {
	return r.query(ctx, "blogs.featured",
		`SELECT `+summaryColumns+`
		 FROM blog_posts
		 WHERE published = TRUE AND featured = TRUE
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
}

func (r *BlogsRepo) ListAll(ctx context.Context) ([]blog.Post, error) {
	return r.query(ctx, "blogs.list_all",
		`SELECT `+postColumns+`
		 FROM blog_posts
		 ORDER BY created_at DESC, id DESC`,
	)
}

func (r *BlogsRepo) GetByID(ctx context.Context, id string) (blog.Post, error) {
	return r.queryOne(ctx, "blogs.get_by_id",
		`SELECT `+postColumns+` FROM blog_posts WHERE id = $1`,
		id,
	)
}

// ViewBySlug loads a published post and bumps its view counter in one statement.
func (r *BlogsRepo) ViewBySlug(ctx context.Context, slug string) (blog.Post, error) {
	return r.queryOne(ctx, "blogs.view_by_slug",
		`UPDATE blog_posts
		 SET views = views + 1
		 WHERE slug = $1 AND published = TRUE
		 RETURNING `+postColumns,
		slug,
	)
}

func (r *BlogsRepo) Update(ctx context.Context, p blog.Post) (blog.Post, error) {
	out, err := r.queryOne(ctx, "blogs.update",
		`UPDATE blog_posts
		 SET title = $2,
		     content = $3,
		     author = $4,
		     excerpt = $5,
		     image = $6,
		     tags = $7,
		     published = $8,
		     featured = $9,
		     slug = $10,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+postColumns,
		p.ID, p.Title, p.Content, p.Author, p.Excerpt, p.Image, tagsOrEmpty(p.Tags),
		p.Published, p.Featured, p.Slug,
	)
	if isUniqueViolation(err, slugConstraint) {
		return blog.Post{}, blog.ErrSlugTaken
	}
	return out, err
}

func (r *BlogsRepo) TogglePublished(ctx context.Context, id string) (blog.Post, error) {
	return r.queryOne(ctx, "blogs.toggle_published",
		`UPDATE blog_posts SET published = NOT published, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+postColumns,
		id,
	)
}

func (r *BlogsRepo) ToggleFeatured(ctx context.Context, id string) (blog.Post, error) {
	return r.queryOne(ctx, "blogs.toggle_featured",
		`UPDATE blog_posts SET featured = NOT featured, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+postColumns,
		id,
	)
}

func (r *BlogsRepo) Delete(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := observe(r.prom, "blogs.delete", func() error {
		var err error
		tag, err = r.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return blog.ErrNotFound
	}
	return nil
}

func (r *BlogsRepo) query(ctx context.Context, op, sql string, args ...any) ([]blog.Post, error) {
	out := make([]blog.Post, 0)

	err := observe(r.prom, op, func() error {
		rows, err := r.pool.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var p blog.Post
			if err := rows.Scan(postFields(&p, nil)...); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r *BlogsRepo) queryOne(ctx context.Context, op, sql string, args ...any) (blog.Post, error) {
	var p blog.Post

	err := observe(r.prom, op, func() error {
		return r.pool.QueryRow(ctx, sql, args...).Scan(postFields(&p, nil)...)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return blog.Post{}, blog.ErrNotFound
		}
		return blog.Post{}, err
	}

	return p, nil
}

func postFields(p *blog.Post, total *int) []any {
	fields := []any{
		&p.ID, &p.Title, &p.Content, &p.Author, &p.Excerpt, &p.Image, &p.Tags,
		&p.Published, &p.Featured, &p.Views, &p.Slug, &p.CreatedAt, &p.UpdatedAt,
	}
	if total != nil {
		fields = append(fields, total)
	}
	return fields
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
