package application

import (
	"fmt"
	"sync"
	"time"
)

// previewCache stores recently expanded occurrence previews so repeated
// editor refreshes do not re-run expansion while the schedule and term are
// unchanged.
type previewCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]previewCacheEntry
}

type previewCacheEntry struct {
	occurrences []time.Time
	expiresAt   time.Time
}

func newPreviewCache(ttl time.Duration, maxEntries int, now func() time.Time) *previewCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &previewCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]previewCacheEntry),
	}
}

func (c *previewCache) Get(key string) ([]time.Time, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneInstants(entry.occurrences), true
}

func (c *previewCache) Store(key string, occurrences []time.Time) {
	if c == nil {
		return
	}
	cloned := cloneInstants(occurrences)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = previewCacheEntry{occurrences: cloned, expiresAt: expiry}
}

func (c *previewCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]previewCacheEntry)
	c.mu.Unlock()
}

func (c *previewCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *previewCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneInstants(instants []time.Time) []time.Time {
	if len(instants) == 0 {
		return nil
	}
	out := make([]time.Time, len(instants))
	copy(out, instants)
	return out
}

func previewCacheKey(scheduleID string, scheduleUpdated, termUpdated time.Time) string {
	return fmt.Sprintf("%s|%d|%d", scheduleID, scheduleUpdated.UnixNano(), termUpdated.UnixNano())
}
