// Package cache provides a thread-safe in-memory TTL store used for
// full-page caching.
//
// Entries are opaque: the store never inspects or invalidates them on
// writes elsewhere in the application. A page rendered at t0 is served
// unchanged until t0+TTL or until Clear is called.
package cache

import (
	"sync"
	"time"
)

// Entry represents a cached item with expiration
type Entry struct {
	Data      []byte
	Header    map[string]string
	Status    int
	ExpiresAt time.Time
}

// Cache provides a thread-safe in-memory cache with TTL support
type Cache struct {
	mu      sync.RWMutex
	entries map[string]Entry
	ttl     time.Duration
	now     func() time.Time

	stop chan struct{}
	once sync.Once

	// OnHit and OnMiss, when set, are called on every lookup.
	OnHit  func()
	OnMiss func()
}

// New creates a cache whose entries live for ttl. A background goroutine
// drops expired entries every cleanupInterval until Close is called; a
// non-positive interval disables it.
func New(ttl, cleanupInterval time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]Entry),
		ttl:     ttl,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.cleanupLoop(cleanupInterval)
	}
	return c
}

// TTL returns the lifetime given to new entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the live entry for key. An expired entry is removed and
// reported as a miss.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		c.miss()
		return Entry{}, false
	}

	if !c.now().Before(entry.ExpiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && !c.now().Before(cur.ExpiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.miss()
		return Entry{}, false
	}

	if c.OnHit != nil {
		c.OnHit()
	}
	return entry, true
}

// Set stores entry under key with the cache's TTL.
func (c *Cache) Set(key string, entry Entry) {
	entry.ExpiresAt = c.now().Add(c.ttl)

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}

// Delete removes a single entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]Entry)
	c.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (c *Cache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *Cache) miss() {
	if c.OnMiss != nil {
		c.OnMiss()
	}
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stop:
			return
		}
	}
}

func (c *Cache) cleanup() {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if !now.Before(entry.ExpiresAt) {
			delete(c.entries, key)
		}
	}
}
