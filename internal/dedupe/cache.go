package dedupe

import (
	"sync"
	"time"
)

type entry struct {
	digest string
	ts     time.Time
}

// Cache remembers the digests of recently ingested source documents so a
// republished, unchanged document is not written again.
type Cache struct {
	mu       sync.Mutex
	items    map[string]time.Time
	order    []entry
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewCache creates a cache holding at most capacity digests for ttl.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		items:    make(map[string]time.Time, capacity),
		order:    make([]entry, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
		now:      time.Now,
	}
}

// WithClock swaps the time source. Intended for tests.
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

// Seen reports whether digest was remembered inside the ttl window.
func (c *Cache) Seen(digest string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts, ok := c.items[digest]
	return ok && c.now().Sub(ts) <= c.ttl
}

// Remember records digest as ingested.
func (c *Cache) Remember(digest string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	c.items[digest] = now
	c.order = append(c.order, entry{digest: digest, ts: now})
	c.compact(now)
}

// Len returns the number of remembered digests.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Cache) compact(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.order) > 0 && (len(c.items) > c.capacity || c.order[0].ts.Before(cutoff)) {
		oldest := c.order[0]
		c.order = c.order[1:]

		// A newer Remember of the same digest owns the map entry now.
		if ts, ok := c.items[oldest.digest]; ok && ts.Equal(oldest.ts) {
			delete(c.items, oldest.digest)
		}
	}
}
