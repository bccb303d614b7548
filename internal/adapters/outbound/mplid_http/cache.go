package mplid_http

import (
	"sync"
	"time"
)

type cacheEntry struct {
	body    []byte
	expires time.Time
}

// cache keeps the last good body per path. Expired entries stay around as
// the stale fallback until clear.
type cache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func newCache() *cache {
	return &cache{entries: make(map[string]cacheEntry), now: time.Now}
}

func (c *cache) get(key string) (body []byte, fresh, ok bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, false
	}
	return e.body, c.now().Before(e.expires), true
}

func (c *cache) put(key string, body []byte, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{body: body, expires: c.now().Add(ttl)}
	c.mu.Unlock()
}

func (c *cache) clear() {
	c.mu.Lock()
	clear(c.entries)
	c.mu.Unlock()
}
