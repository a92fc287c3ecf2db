package tournament

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/livequiz/go/internal/models"
)

// Cache holds loaded tournaments shared read-only by every connection.
// Entries are replaced, never mutated.
type Cache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]cacheEntry
	ttl     time.Duration
	clock   clockwork.Clock

	// generation advances on every invalidation
	generation uint64
}

type cacheEntry struct {
	tournament *models.Tournament
	expiresAt  time.Time
}

// NewCache creates a cache. A non-positive ttl disables caching.
func NewCache(ttl time.Duration, clock clockwork.Clock) *Cache {
	return &Cache{
		entries: make(map[uuid.UUID]cacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// Get returns a cached tournament that has not expired.
func (c *Cache) Get(id uuid.UUID) (*models.Tournament, bool) {
	if c.ttl <= 0 {
		return nil, false
	}

	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok || !c.clock.Now().Before(entry.expiresAt) {
		return nil, false
	}
	return entry.tournament, true
}

// Put stores a tournament until the ttl elapses.
func (c *Cache) Put(t *models.Tournament) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(t)
}

// Generation returns the current invalidation generation. Read it before
// loading and pass it to PutIfCurrent.
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// PutIfCurrent stores t unless an invalidation happened since generation was
// read. It reports whether t was stored.
func (c *Cache) PutIfCurrent(t *models.Tournament, generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != generation {
		return false
	}
	return c.putLocked(t)
}

func (c *Cache) putLocked(t *models.Tournament) bool {
	if c.ttl <= 0 {
		return false
	}
	c.entries[t.ID] = cacheEntry{
		tournament: t,
		expiresAt:  c.clock.Now().Add(c.ttl),
	}
	c.evictExpiredLocked()
	return true
}

// Invalidate drops a tournament so the next load reads it fresh.
func (c *Cache) Invalidate(id uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, id)
	c.generation++
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[uuid.UUID]cacheEntry)
	c.generation++
	c.mu.Unlock()
}

// Len returns the number of entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) evictExpiredLocked() {
	now := c.clock.Now()
	for id, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, id)
		}
	}
}
