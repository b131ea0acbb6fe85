package inference

import (
	"sync"
	"time"
)

// Cache is a process-wide TTL cache for resolved inference strings, keyed by
// canonical skill-set content. Entries are independent and idempotently
// overwritable, so a single mutex over the map is all the coordination
// needed. Expired entries are dropped lazily on read and swept whenever the
// map is touched for writing.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

// NewCache creates a Cache with the given entry lifetime. A ttl <= 0
// disables caching entirely (Get always misses).
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached value for key if present and not expired.
func (c *Cache) Get(key string) (string, bool) {
	if c.ttl <= 0 {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

// Set stores value under key for the cache lifetime.
func (c *Cache) Set(key, value string) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.entries[key] = cacheEntry{value: value, expiresAt: now.Add(c.ttl)}

	// Opportunistic sweep keeps the map from accumulating dead entries
	// between repeats of the same keys.
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// Len reports the number of live entries. Test helper.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
