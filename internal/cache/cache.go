package cache

import (
	"sync"
	"time"
)

const defaultMaxEntries = 1024

// Cache is a small TTL map for hot public reads, bounded to maxEntries.
// Writers call Clear, which also bumps the generation so a reader that
// loaded data before the write cannot store it afterwards (see SetIfCurrent).
type Cache[V any] struct {
	mu         sync.RWMutex
	ttl        time.Duration
	maxEntries int
	gen        uint64
	now        func() time.Time
	m          map[string]entry[V]
}

type entry[V any] struct {
	val V
	exp time.Time
}

func New[V any](ttl time.Duration, maxEntries int) *Cache[V] {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}

	return &Cache[V]{
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
		m:          make(map[string]entry[V]),
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V

	now := c.now()
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return zero, false
	}

	if !now.Before(e.exp) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return zero, false
	}

	return e.val, true
}

func (c *Cache[V]) Set(key string, val V) {
	c.mu.Lock()
	c.setLocked(key, val)
	c.mu.Unlock()
}

// Generation changes on every Clear. Read it before loading the value.
func (c *Cache[V]) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// SetIfCurrent stores val only if no Clear happened since gen was read.
func (c *Cache[V]) SetIfCurrent(gen uint64, key string, val V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return false
	}
	c.setLocked(key, val)
	return true
}

func (c *Cache[V]) setLocked(key string, val V) {
	now := c.now()

	if _, exists := c.m[key]; !exists && len(c.m) >= c.maxEntries {
		c.evictLocked(now)
	}
	c.m[key] = entry[V]{val: val, exp: now.Add(c.ttl)}
}

// evictLocked drops expired entries; if none expired it drops the entry
// closest to expiry.
func (c *Cache[V]) evictLocked(now time.Time) {
	var (
		oldestKey string
		oldestExp time.Time
	)
	for k, e := range c.m {
		if !now.Before(e.exp) {
			delete(c.m, k)
			continue
		}
		if oldestKey == "" || e.exp.Before(oldestExp) {
			oldestKey, oldestExp = k, e.exp
		}
	}

	if len(c.m) >= c.maxEntries && oldestKey != "" {
		delete(c.m, oldestKey)
	}
}

func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

func (c *Cache[V]) Clear() {
	c.mu.Lock()
	c.m = make(map[string]entry[V])
	c.gen++
	c.mu.Unlock()
}

func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
