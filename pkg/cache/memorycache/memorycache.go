// Package memorycache provides an in-memory LRU cache with TTL support.
package memorycache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/nvtienanh/metagate/pkg/cache"
)

// entry is one cached value with its expiry.
type entry struct {
	key       string
	value     interface{}
	expiresAt time.Time
}

// Config holds configuration for the memory cache.
type Config struct {
	// MaxEntries is the maximum number of cached items. When the limit is
	// exceeded, least recently used items are evicted.
	MaxEntries int

	// DefaultTTL is the time-to-live applied when Set is called with a
	// non-positive TTL.
	DefaultTTL time.Duration
}

// Cache implements an LRU cache with TTL support. Entries past their TTL are
// dropped lazily on access.
type Cache struct {
	mu sync.Mutex

	items     map[string]*list.Element
	evictList *list.List // front = most recent

	maxEntries int
	defaultTTL time.Duration

	stats cache.Stats
}

// New creates a new memory cache with the given configuration.
func New(config *Config) *Cache {
	maxEntries := config.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	return &Cache{
		items:      make(map[string]*list.Element),
		evictList:  list.New(),
		maxEntries: maxEntries,
		defaultTTL: config.DefaultTTL,
	}
}

// Get retrieves a value from cache.
func (c *Cache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, exists := c.items[key]
	if !exists {
		c.stats.Misses++
		return nil, false
	}

	ent := elem.Value.(*entry)
	if time.Now().After(ent.expiresAt) {
		c.removeElement(elem)
		c.stats.Misses++
		return nil, false
	}

	c.evictList.MoveToFront(elem)
	c.stats.Hits++
	return ent.value, true
}

// Set stores a value in cache with TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		ent := elem.Value.(*entry)
		ent.value = value
		ent.expiresAt = time.Now().Add(ttl)
		c.evictList.MoveToFront(elem)
		return nil
	}

	elem := c.evictList.PushFront(&entry{
		key:       key,
		value:     value,
		expiresAt: time.Now().Add(ttl),
	})
	c.items[key] = elem
	c.stats.KeysAdded++

	for c.evictList.Len() > c.maxEntries {
		oldest := c.evictList.Back()
		if oldest == nil {
			break
		}
		c.removeElement(oldest)
		c.stats.KeysEvicted++
	}

	return nil
}

// Delete removes a value from cache.
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
	return nil
}

// Clear removes all entries from cache.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.evictList.Init()
	return nil
}

// Close releases resources (no-op for memory cache).
func (c *Cache) Close() error {
	return nil
}

// Stats returns cache statistics.
func (c *Cache) Stats() *cache.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	return &stats
}

// Len returns the current number of items in cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// removeElement removes an element from cache (must be called with lock held).
func (c *Cache) removeElement(elem *list.Element) {
	c.evictList.Remove(elem)
	ent := elem.Value.(*entry)
	delete(c.items, ent.key)
}
