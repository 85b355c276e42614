package captcha

import (
	"context"
	"sync"
	"time"
)

const sweepEvery = time.Minute

type entry struct {
	answer    string
	expiresAt time.Time
}

// MemoryStore is the single-process fallback used when Redis is not configured.
type MemoryStore struct {
	mu        sync.Mutex
	items     map[string]entry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]entry),
		now:   time.Now,
	}
}

func (s *MemoryStore) Save(_ context.Context, id, answer string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)
	s.items[id] = entry{answer: answer, expiresAt: now.Add(ttl)}
	return nil
}

func (s *MemoryStore) Take(_ context.Context, id string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return "", false, nil
	}
	delete(s.items, id)

	if !s.now().Before(e.expiresAt) {
		return "", false, nil
	}
	return e.answer, true, nil
}

// sweepLocked drops expired challenges at most once per sweepEvery.
func (s *MemoryStore) sweepLocked(now time.Time) {
	if now.Sub(s.lastSweep) < sweepEvery {
		return
	}
	for id, e := range s.items {
		if !now.Before(e.expiresAt) {
			delete(s.items, id)
		}
	}
	s.lastSweep = now
}
