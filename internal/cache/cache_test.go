// file: internal/cache/cache_test.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func newWithClock[T any](ttl time.Duration, maxEntries int) (*Cache[T], *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	c := New[T](ttl, maxEntries)
	c.now = clock.now
	return c, clock
}

func TestGetSet(t *testing.T) {
	c := New[[]string](time.Minute, 0)
	c.Set("建筑", []string{"建筑总包二级"})
	v, ok := c.Get("建筑")
	if !ok || len(v) != 1 || v[0] != "建筑总包二级" {
		t.Fatalf("expected cached slice, got %v ok=%v", v, ok)
	}
}

func TestExpiry(t *testing.T) {
	c, clock := newWithClock[int](time.Second, 0)
	c.Set("k", 42)
	clock.t = clock.t.Add(2 * time.Second)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected expired entry")
	}
}

func TestDisabledCache(t *testing.T) {
	c := New[int](0, 0)
	c.Set("k", 1)
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss from disabled cache")
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty disabled cache, got %d", c.Len())
	}
}

func TestCapacityPrunesExpiredFirst(t *testing.T) {
	c, clock := newWithClock[int](time.Second, 2)
	c.Set("old", 1)
	clock.t = clock.t.Add(2 * time.Second)
	c.Set("fresh", 2)
	c.Set("new", 3)

	if c.Len() != 2 {
		t.Fatalf("expected 2 entries after pruning, got %d", c.Len())
	}
	if v, ok := c.Get("fresh"); !ok || v != 2 {
		t.Fatal("expected fresh entry to survive")
	}
}

func TestCapacityClearsWhenAllLive(t *testing.T) {
	c := New[int](time.Minute, 2)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 10)
	if c.Len() != 2 {
		t.Fatalf("overwriting an existing key should not evict, got len %d", c.Len())
	}
	c.Set("c", 3)
	if c.Len() != 1 {
		t.Fatalf("expected reset to a single entry, got %d", c.Len())
	}
}

func TestGetOrCompute(t *testing.T) {
	c := New[string](time.Minute, 0)
	calls := 0
	compute := func() string { calls++; return "v" }

	if v, hit := c.GetOrCompute("k", compute); hit || v != "v" {
		t.Fatalf("first call: v=%q hit=%v", v, hit)
	}
	if v, hit := c.GetOrCompute("k", compute); !hit || v != "v" {
		t.Fatalf("second call: v=%q hit=%v", v, hit)
	}
	if calls != 1 {
		t.Fatalf("expected one computation, got %d", calls)
	}
}

func TestInvalidateAll(t *testing.T) {
	c := New[int](time.Minute, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	c.InvalidateAll()
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected all invalidated")
	}
}
