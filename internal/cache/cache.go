// Package cache holds the expiring LRU caches that sit in front of the
// resolution repositories.
package cache

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// KeyPrefix starts every cache key.
const KeyPrefix = "dataview"

// Key builds the cache key dataview:{scope}:{id}:{key}.
func Key(scope, id, key string) string {
	return strings.Join([]string{KeyPrefix, scope, id, key}, ":")
}

// Cache is a size bounded, expiring cache for one scope of values.
type Cache[V any] struct {
	scope string
	lru   *expirable.LRU[string, V]
}

// New creates a cache holding at most size entries for ttl each. A zero ttl
// disables expiry.
func New[V any](scope string, size int, ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		scope: scope,
		lru:   expirable.NewLRU[string, V](size, nil, ttl),
	}
}

// Get returns the live entry for id and key.
func (c *Cache[V]) Get(id, key string) (V, bool) {
	return c.lru.Get(Key(c.scope, id, key))
}

// Set stores value, evicting the least recently used entry when full.
func (c *Cache[V]) Set(id, key string, value V) {
	c.lru.Add(Key(c.scope, id, key), value)
}

// Invalidate drops one entry. It reports whether the entry was present.
func (c *Cache[V]) Invalidate(id, key string) bool {
	return c.lru.Remove(Key(c.scope, id, key))
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.lru.Purge()
}

// Len counts the entries currently held.
func (c *Cache[V]) Len() int {
	return c.lru.Len()
}
