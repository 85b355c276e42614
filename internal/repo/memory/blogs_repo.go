package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/webtwist/internal/domain/blog"
)

type BlogsRepo struct {
	mu    sync.RWMutex
	items map[string]blog.Post
}

func NewBlogsRepo() *BlogsRepo {
	return &BlogsRepo{items: make(map[string]blog.Post)}
}

func (r *BlogsRepo) Create(_ context.Context, p blog.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.slugTakenLocked(p.Slug, p.ID) {
		return blog.ErrSlugTaken
	}
	r.items[p.ID] = clonePost(p)
	return nil
}

func (r *BlogsRepo) SlugExists(_ context.Context, slug, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.slugTakenLocked(slug, excludeID), nil
}

func (r *BlogsRepo) List(_ context.Context, f blog.ListFilter) ([]blog.Post, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]blog.Post, 0)
	for _, p := range r.items {
		if !p.Published || !matchesFilter(p, f) {
			continue
		}
		matched = append(matched, summary(p))
	}
	sortNewestFirst(matched)

	total := len(matched)
	start := min(max(f.Offset(), 0), total)
	end := min(start+f.Limit, total)

	return matched[start:end], total, nil
}

func (r *BlogsRepo) Featured(_ context.Context, limit int) ([]blog.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]blog.Post, 0, limit)
	for _, p := range r.items {
		if p.Published && p.Featured {
			out = append(out, summary(p))
		}
	}
	sortNewestFirst(out)

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *BlogsRepo) ListAll(_ context.Context) ([]blog.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]blog.Post, 0, len(r.items))
	for _, p := range r.items {
		out = append(out, clonePost(p))
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *BlogsRepo) GetByID(_ context.Context, id string) (blog.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return blog.Post{}, blog.ErrNotFound
	}
	return clonePost(p), nil
}

func (r *BlogsRepo) ViewBySlug(_ context.Context, slug string) (blog.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.items {
		if p.Slug == slug && p.Published {
			p.Views++
			r.items[id] = p
			return clonePost(p), nil
		}
	}
	return blog.Post{}, blog.ErrNotFound
}

func (r *BlogsRepo) Update(_ context.Context, p blog.Post) (blog.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.items[p.ID]
	if !ok {
		return blog.Post{}, blog.ErrNotFound
	}
	if r.slugTakenLocked(p.Slug, p.ID) {
		return blog.Post{}, blog.ErrSlugTaken
	}

	p.CreatedAt = old.CreatedAt
	p.Views = old.Views
	p.UpdatedAt = time.Now().UTC()
	r.items[p.ID] = clonePost(p)

	return clonePost(p), nil
}

func (r *BlogsRepo) TogglePublished(_ context.Context, id string) (blog.Post, error) {
	return r.toggle(id, func(p *blog.Post) { p.Published = !p.Published })
}

func (r *BlogsRepo) ToggleFeatured(_ context.Context, id string) (blog.Post, error) {
	return r.toggle(id, func(p *blog.Post) { p.Featured = !p.Featured })
}

func (r *BlogsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return blog.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *BlogsRepo) toggle(id string, flip func(*blog.Post)) (blog.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.items[id]
	if !ok {
		return blog.Post{}, blog.ErrNotFound
	}
	flip(&p)
	p.UpdatedAt = time.Now().UTC()
	r.items[id] = p

	return clonePost(p), nil
}

func (r *BlogsRepo) slugTakenLocked(slug, excludeID string) bool {
	for id, p := range r.items {
		if p.Slug == slug && id != excludeID {
			return true
		}
	}
	return false
}

func matchesFilter(p blog.Post, f blog.ListFilter) bool {
	if f.Tag != nil && !slices.Contains(p.Tags, *f.Tag) {
		return false
	}
	if f.Search != nil {
		q := strings.ToLower(*f.Search)
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Content), q) &&
			!strings.Contains(strings.ToLower(p.Excerpt), q) {
			return false
		}
	}
	return true
}

func sortNewestFirst(posts []blog.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

// summary drops the body for listing responses.
func summary(p blog.Post) blog.Post {
	p = clonePost(p)
	p.Content = ""
	return p
}

func clonePost(p blog.Post) blog.Post {
	p.Tags = slices.Clone(p.Tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p
}
