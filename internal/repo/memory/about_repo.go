package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/webtwist/internal/domain/about"
)

type AboutRepo struct {
	mu   sync.RWMutex
	page *about.Page
}

func NewAboutRepo() *AboutRepo {
	return &AboutRepo{}
}

func (r *AboutRepo) Get(_ context.Context) (about.Page, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.page == nil {
		return about.Page{}, about.ErrNotFound
	}
	return *r.page, nil
}

func (r *AboutRepo) Upsert(_ context.Context, content string) (about.Page, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.page = &about.Page{Content: content, UpdatedAt: time.Now().UTC()}
	return *r.page, nil
}
