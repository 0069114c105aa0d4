package cache

import (
	"sync"
	"time"
)

const minTTL = 5 * time.Second

// Cache is a tiny in-process TTL cache keyed by string. The public doctors
// directory sits behind it so anonymous booking-page traffic does not reach
// the database on every hit. Entries are evicted lazily on read; with a
// handful of keys there is no need for a sweeper goroutine.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]entry
}

type entry struct {
	value     any
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = minTTL
	}

	return &Cache{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

func (c *Cache) Get(key string) (any, bool) {
	now := time.Now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if e.expired(now) {
		c.Delete(key)
		return nil, false
	}

	return e.value, true
}

func (c *Cache) Set(key string, value any) {
	e := entry{value: value, expiresAt: time.Now().Add(c.ttl)}

	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
}

func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}
