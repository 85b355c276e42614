package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/webtwist/internal/domain/contact"
)

type ContactsRepo struct {
	mu    sync.RWMutex
	items map[string]contact.Message
}

func NewContactsRepo() *ContactsRepo {
	return &ContactsRepo{items: make(map[string]contact.Message)}
}

func (r *ContactsRepo) Create(_ context.Context, m contact.Message) error {
	r.mu.Lock()
	r.items[m.ID] = m
	r.mu.Unlock()
	return nil
}

func (r *ContactsRepo) List(_ context.Context) ([]contact.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contact.Message, 0, len(r.items))
	for _, m := range r.items {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *ContactsRepo) UpdateMessage(_ context.Context, id, message string) (contact.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.items[id]
	if !ok {
		return contact.Message{}, contact.ErrNotFound
	}
	m.Message = message
	m.UpdatedAt = time.Now().UTC()
	r.items[id] = m
	return m, nil
}

func (r *ContactsRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return contact.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
