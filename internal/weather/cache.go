package weather

import (
	"fmt"
	"sync"
	"time"
)

// cacheEntry pairs cached conditions with their expiry deadline.
type cacheEntry struct {
	conditions *Conditions
	expiresAt  time.Time
}

// cache is a bounded in-memory TTL cache keyed by rounded coordinates.
//
// When full, the entry closest to expiry is evicted. The bound keeps a
// client cycling through arbitrary coordinates from growing memory
// without limit.
type cache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int

	// now is replaceable in tests.
	now func() time.Time
}

func newCache(ttl time.Duration, maxEntries int) *cache {
	if maxEntries < 1 {
		maxEntries = 1
	}

	return &cache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// cacheKey derives a stable key from the query. Coordinates are rounded
// to three decimal places (~110m) so nearby requests share an entry.
func cacheKey(query Query) string {
	if query.Zip != "" {
		return "zip:" + query.Zip
	}
	if query.Coords != nil {
		return fmt.Sprintf("%.3f,%.3f", query.Coords.Latitude, query.Coords.Longitude)
	}
	return ""
}

// get returns the cached conditions for key, or nil if absent or expired.
func (c *cache) get(key string) *Conditions {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return nil
	}

	return entry.conditions
}

// put stores conditions under key, evicting the soonest-expiring entry
// when the cache is at capacity.
func (c *cache) put(key string, conditions *Conditions) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOldest()
	}

	c.entries[key] = cacheEntry{
		conditions: conditions,
		expiresAt:  c.now().Add(c.ttl),
	}
}

// evictOldest removes the entry with the earliest expiry. Caller holds mu.
func (c *cache) evictOldest() {
	var oldestKey string
	var oldestExpiry time.Time

	for key, entry := range c.entries {
		if oldestKey == "" || entry.expiresAt.Before(oldestExpiry) {
			oldestKey = key
			oldestExpiry = entry.expiresAt
		}
	}

	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// len reports the number of live entries, for tests.
func (c *cache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
