package verify

import (
	"sync"
	"time"
)

// DefaultCacheTTL bounds how long a verdict is reused before the URL is
// re-verified.
const DefaultCacheTTL = time.Hour

// CacheStats is a snapshot of cache activity.
type CacheStats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Keys   int    `json:"keys"`
}

type cacheEntry struct {
	verdict   Verdict
	expiresAt time.Time
}

// Cache is a TTL-bounded memo of verdicts keyed by the exact URL string.
// Keys are deliberately not normalized: two spellings of the same URL
// verify independently, which keeps the cache a pure memo of inputs.
// Unbounded by count; entries are small and time-bounded. Safe for
// concurrent use; last write wins on racing Set for the same key.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	hits    uint64
	misses  uint64

	// now is swapped in tests to control expiry.
	now func() time.Time
}

// NewCache returns a cache with the given TTL, or DefaultCacheTTL when
// ttl is zero or negative.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached verdict for url. Expired entries behave as
// absent and are dropped on the way out.
func (c *Cache) Get(url string) (Verdict, bool) {
	c.mu.RLock()
	entry, ok := c.entries[url]
	c.mu.RUnlock()

	if !ok {
		c.mu.Lock()
		c.misses++
		c.mu.Unlock()
		return Verdict{}, false
	}

	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; a racing Set may have refreshed it.
		if current, still := c.entries[url]; still && c.now().After(current.expiresAt) {
			delete(c.entries, url)
		}
		c.misses++
		c.mu.Unlock()
		return Verdict{}, false
	}

	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	return entry.verdict, true
}

// Set stores a verdict for url with a fresh TTL.
func (c *Cache) Set(url string, verdict Verdict) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[url] = cacheEntry{
		verdict:   verdict,
		expiresAt: c.now().Add(c.ttl),
	}
}

// FlushAll drops every entry. Hit/miss counters are preserved.
func (c *Cache) FlushAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Stats returns a point-in-time snapshot of cache activity.
func (c *Cache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{
		Hits:   c.hits,
		Misses: c.misses,
		Keys:   len(c.entries),
	}
}
