package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/geocoder89/webtwist/internal/db"
	"github.com/geocoder89/webtwist/internal/domain/about"
	"github.com/geocoder89/webtwist/internal/domain/account"
	"github.com/geocoder89/webtwist/internal/domain/blog"
	"github.com/geocoder89/webtwist/internal/domain/contact"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Runs only against a disposable database: TEST_DB_DSN=postgres://... go test ./internal/repo/postgres
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.Migrate(ctx, dsn); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE accounts, blog_posts, contact_messages, about_page`)
	if err != nil {
		t.Fatalf("truncate: %v", err)
	}

	return pool
}

func TestAccountsRepo_CaseInsensitiveEmail(t *testing.T) {
	pool := testPool(t)
	repo := NewAccountsRepo(pool, nil)
	ctx := context.Background()

	acc, err := repo.Create(ctx, "Owner@Example.com", "hash", account.RoleAdmin)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := repo.Create(ctx, "owner@example.COM", "hash", account.RoleAdmin); !errors.Is(err, account.ErrEmailAlreadyUsed) {
		t.Fatalf("expected ErrEmailAlreadyUsed, got %v", err)
	}

	got, err := repo.FindByEmail(ctx, "OWNER@example.com")
	if err != nil || got.ID != acc.ID {
		t.Fatalf("find by email: got %+v err=%v", got, err)
	}

	if _, err := repo.FindByID(ctx, uuid.NewString()); !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBlogsRepo_RoundTrip(t *testing.T) {
	pool := testPool(t)
	repo := NewBlogsRepo(pool, nil)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	p := blog.NewFromCreateRequest(blog.CreatePostRequest{
		Title:   "Hello World",
		Content: "body",
		Excerpt: "short",
		Tags:    []string{"go"},
	}, "hello-world", now)

	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("create: %v", err)
	}

	dup := p
	dup.ID = uuid.NewString()
	if err := repo.Create(ctx, dup); !errors.Is(err, blog.ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}

	viewed, err := repo.ViewBySlug(ctx, "hello-world")
	if err != nil || viewed.Views != 1 {
		t.Fatalf("view: %+v err=%v", viewed, err)
	}

	tag := "go"
	posts, total, err := repo.List(ctx, blog.ListFilter{Tag: &tag, Page: 1, Limit: 6})
	if err != nil || total != 1 || posts[0].Content != "" {
		t.Fatalf("list: posts=%+v total=%d err=%v", posts, total, err)
	}

	_, total, err = repo.List(ctx, blog.ListFilter{Page: 3, Limit: 6})
	if err != nil || total != 1 {
		t.Fatalf("out-of-range page should still report total, got %d err=%v", total, err)
	}

	toggled, err := repo.TogglePublished(ctx, p.ID)
	if err != nil || toggled.Published {
		t.Fatalf("toggle: %+v err=%v", toggled, err)
	}

	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.Delete(ctx, p.ID); !errors.Is(err, blog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContactsAndAboutRepos(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	contacts := NewContactsRepo(pool, nil)
	now := time.Now().UTC()
	msg := contact.Message{ID: uuid.NewString(), Name: "Ann", Email: "ann@x.com", Message: "hi", CreatedAt: now, UpdatedAt: now}

	if err := contacts.Create(ctx, msg); err != nil {
		t.Fatalf("create contact: %v", err)
	}
	updated, err := contacts.UpdateMessage(ctx, msg.ID, "edited")
	if err != nil || updated.Message != "edited" {
		t.Fatalf("update contact: %+v err=%v", updated, err)
	}
	if _, err := contacts.UpdateMessage(ctx, uuid.NewString(), "x"); !errors.Is(err, contact.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	aboutRepo := NewAboutRepo(pool, nil)
	if _, err := aboutRepo.Get(ctx); !errors.Is(err, about.ErrNotFound) {
		t.Fatalf("expected ErrNotFound before first write, got %v", err)
	}
	if _, err := aboutRepo.Upsert(ctx, "v1"); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	page, err := aboutRepo.Upsert(ctx, "v2")
	if err != nil || page.Content != "v2" {
		t.Fatalf("second upsert: %+v err=%v", page, err)
	}
}
