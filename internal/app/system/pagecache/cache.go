// Package pagecache keeps whole rendered pages for a fixed window.
//
// Entries expire only by time. Creating a post does not purge anything, so a
// cached feed can lag behind the database by up to one window.
package pagecache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Cache stores rendered pages by key.
type Cache interface {
	// Get returns the page and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, page []byte, ttl time.Duration) error
	// Purge drops every entry whose key starts with prefix ("" drops all).
	Purge(ctx context.Context, prefix string) error
}

type memEntry struct {
	page    []byte
	expires time.Time
}

// DefaultMaxEntries bounds a MemoryCache unless WithMaxEntries says otherwise.
const DefaultMaxEntries = 10000

// sweepInterval is how often Set drops expired entries it would otherwise
// keep until their key is read again.
const sweepInterval = time.Minute

// MemoryCache is a process-local Cache. Expired entries are removed when read
// and by a sweep run from Set at most once per minute. When full, Set evicts
// the entry closest to expiry.
type MemoryCache struct {
	mu         sync.Mutex
	entries    map[string]memEntry
	now        func() time.Time
	maxEntries int
	nextSweep  time.Time
}

// MemoryOption configures a MemoryCache.
type MemoryOption func(*MemoryCache)

// WithClock replaces time.Now, letting tests step past the window.
func WithClock(now func() time.Time) MemoryOption {
	return func(c *MemoryCache) { c.now = now }
}

// WithMaxEntries caps the number of stored pages.
func WithMaxEntries(n int) MemoryOption {
	return func(c *MemoryCache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

func NewMemory(opts ...MemoryOption) *MemoryCache {
	c := &MemoryCache{entries: make(map[string]memEntry), now: time.Now, maxEntries: DefaultMaxEntries}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, key)
		return nil, false, nil
	}
	return e.page, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, page []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	cp := make([]byte, len(page))
	copy(cp, page)

	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	_, replacing := c.entries[key]
	full := !replacing && len(c.entries) >= c.maxEntries
	if full || !now.Before(c.nextSweep) {
		c.sweepLocked(now)
		c.nextSweep = now.Add(sweepInterval)
	}
	if !replacing && len(c.entries) >= c.maxEntries {
		c.evictSoonestLocked()
	}
	c.entries[key] = memEntry{page: cp, expires: now.Add(ttl)}
	return nil
}

func (c *MemoryCache) sweepLocked(now time.Time) {
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
		}
	}
}

func (c *MemoryCache) evictSoonestLocked() {
	var (
		victim string
		first  time.Time
		found  bool
	)
	for k, e := range c.entries {
		if !found || e.expires.Before(first) {
			victim, first, found = k, e.expires, true
		}
	}
	if found {
		delete(c.entries, victim)
	}
}

func (c *MemoryCache) Purge(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
