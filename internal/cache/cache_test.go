package cache

import (
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	if got := Key("binaryfile", "guid", "3f2a"); got != "dataview:binaryfile:guid:3f2a" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestCacheGetSetInvalidate(t *testing.T) {
	c := New[string]("files", 2, 0)

	if _, ok := c.Get("id", "1"); ok {
		t.Fatalf("expected empty cache miss")
	}
	c.Set("id", "1", "one")
	c.Set("id", "2", "two")
	if got, ok := c.Get("id", "1"); !ok || got != "one" {
		t.Fatalf("unexpected value %q, %v", got, ok)
	}

	c.Set("id", "3", "three")
	if _, ok := c.Get("id", "2"); ok {
		t.Fatalf("expected least recently used entry to be evicted")
	}
	if c.Len() != 2 {
		t.Fatalf("unexpected length %d", c.Len())
	}

	if !c.Invalidate("id", "1") {
		t.Fatalf("expected invalidate to report the entry")
	}
	if _, ok := c.Get("id", "1"); ok {
		t.Fatalf("expected invalidated entry to be gone")
	}
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("expected purge to empty the cache")
	}
}

func TestCacheExpires(t *testing.T) {
	c := New[int]("types", 4, 20*time.Millisecond)
	c.Set("all", "", 1)
	time.Sleep(60 * time.Millisecond)
	if _, ok := c.Get("all", ""); ok {
		t.Fatalf("expected entry to expire")
	}
}

func TestScopesDoNotCollide(t *testing.T) {
	a := New[int]("a", 4, 0)
	b := New[int]("b", 4, 0)
	a.Set("id", "1", 1)
	if _, ok := b.Get("id", "1"); ok {
		t.Fatalf("caches must not share entries")
	}
}
