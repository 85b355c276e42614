package cache

import (
	"fmt"
	"testing"
	"time"
)

func TestCache_ExpiresAtTTL(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	c := New[string](time.Second, 0)
	c.now = func() time.Time { return now }

	c.Set("k", "v")
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Fatalf("expected hit, got %q ok=%v", v, ok)
	}

	now = now.Add(time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected miss once ttl elapsed")
	}
	if c.Len() != 0 {
		t.Fatalf("expired entry should be evicted on read")
	}
}

func TestCache_Clear(t *testing.T) {
	c := New[int](0, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")

	if _, ok := c.Get("a"); ok {
		t.Fatalf("deleted key still present")
	}

	c.Clear()
	if _, ok := c.Get("b"); ok {
		t.Fatalf("clear left entries behind")
	}
}

func TestCache_BoundedEntries(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	c := New[int](time.Minute, 3)
	c.now = func() time.Time { return now }

	for i := 0; i < 100; i++ {
		now = now.Add(time.Millisecond)
		c.Set(fmt.Sprintf("search-%d", i), i)
	}

	if c.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", c.Len())
	}
	if v, ok := c.Get("search-99"); !ok || v != 99 {
		t.Fatalf("newest entry must survive, got %v ok=%v", v, ok)
	}
	if _, ok := c.Get("search-0"); ok {
		t.Fatalf("oldest entry must be evicted")
	}

	// overwriting a present key never evicts
	c.Set("search-99", -1)
	if c.Len() != 3 {
		t.Fatalf("overwrite changed size to %d", c.Len())
	}
}

func TestCache_EvictionPrefersExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	c := New[int](time.Second, 2)
	c.now = func() time.Time { return now }

	c.Set("a", 1)
	c.Set("b", 2)
	now = now.Add(2 * time.Second)
	c.Set("c", 3)

	if c.Len() != 1 {
		t.Fatalf("expired entries should be swept on a full set, len=%d", c.Len())
	}
}

func TestCache_SetIfCurrentSkipsAfterClear(t *testing.T) {
	c := New[string](time.Minute, 0)

	gen := c.Generation()
	c.Clear()

	if c.SetIfCurrent(gen, "page-1", "stale") {
		t.Fatalf("a value loaded before Clear must not be stored")
	}
	if _, ok := c.Get("page-1"); ok {
		t.Fatalf("stale value visible")
	}

	if !c.SetIfCurrent(c.Generation(), "page-1", "fresh") {
		t.Fatalf("current generation must be stored")
	}
	if v, _ := c.Get("page-1"); v != "fresh" {
		t.Fatalf("got %q", v)
	}
}
