package cache

import (
	"sync"
	"time"
)

type entry struct {
	v        any
	storedAt time.Time
	lastUsed time.Time
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Size    int           `json:"size"`
	MaxSize int           `json:"max_size"`
	TTL     time.Duration `json:"ttl"`
	Hits    uint64        `json:"hits"`
	Misses  uint64        `json:"misses"`
	HitRate float64       `json:"hit_rate"`
}

// Cache is a capacity-bounded store with per-entry TTL and LRU eviction.
// It is a fail-safe optimization: no operation returns an error and a bad
// state degrades to a miss. Safe for concurrent use.
type Cache struct {
	mu      sync.Mutex
	m       map[string]*entry
	maxSize int
	ttl     time.Duration
	hits    uint64
	misses  uint64

	now func() time.Time // replaced in tests
}

// New creates a cache holding at most maxSize entries, each expiring ttl
// after insertion.
func New(maxSize int, ttl time.Duration) *Cache {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &Cache{
		m:       make(map[string]*entry, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the live value for key. An expired-but-present entry counts
// as a miss and is dropped.
func (c *Cache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if c.expired(e) {
		delete(c.m, key)
		c.misses++
		return nil, false
	}
	e.lastUsed = c.now()
	c.hits++
	return e.v, true
}

// Set stores value under key, evicting the least-recently-used entry when
// the cache is at capacity.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, exists := c.m[key]; !exists && len(c.m) >= c.maxSize {
		c.evictLRU()
	}
	c.m[key] = &entry{v: value, storedAt: now, lastUsed: now}
}

// Has reports whether a live entry exists for key. It does not touch the
// hit/miss counters or the entry's recency.
func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.m[key]
	return ok && !c.expired(e)
}

// Invalidate removes key, reporting whether an entry was present.
func (c *Cache) Invalidate(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.m[key]
	delete(c.m, key)
	return ok
}

// Clear drops every entry. Counters are kept.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.m = make(map[string]*entry, c.maxSize)
	c.mu.Unlock()
}

// Stats returns current size and counter values.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Stats{
		Size:    len(c.m),
		MaxSize: c.maxSize,
		TTL:     c.ttl,
		Hits:    c.hits,
		Misses:  c.misses,
	}
	if total := c.hits + c.misses; total > 0 {
		s.HitRate = float64(c.hits) / float64(total)
	}
	return s
}

func (c *Cache) expired(e *entry) bool {
	return c.ttl > 0 && c.now().Sub(e.storedAt) > c.ttl
}

// evictLRU drops the entry with the oldest lastUsed. Caller holds the lock.
func (c *Cache) evictLRU() {
	var oldestKey string
	var oldest time.Time
	first := true
	for k, e := range c.m {
		if first || e.lastUsed.Before(oldest) {
			oldest = e.lastUsed
			oldestKey = k
			first = false
		}
	}
	if oldestKey != "" {
		delete(c.m, oldestKey)
	}
}
