// Package resolver maps package references (name@version) to retrievable
// URLs, memoizing results for the life of the owning cache.
package resolver

import "sync"

// Cache memoizes resolved package URLs. It is append-only for its
// lifetime: external libraries are immutable once published, so entries
// are never evicted or replaced.
//
// The cache is explicitly owned and constructor-injected rather than a
// package-level map, so resolution stays deterministic and testable.
type Cache struct {
	mu   sync.RWMutex
	urls map[string]string
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{urls: make(map[string]string)}
}

// Get returns the cached URL for ref, if present.
func (c *Cache) Get(ref string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	url, ok := c.urls[ref]
	return url, ok
}

// Put records the resolved URL for ref. The first write wins; a concurrent
// duplicate resolution stores the same immutable value anyway.
func (c *Cache) Put(ref, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.urls[ref]; ok {
		return
	}
	c.urls[ref] = url
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.urls)
}
