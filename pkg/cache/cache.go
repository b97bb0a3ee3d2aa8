// Package cache defines the interface for caching entity snapshots between
// the metadata service and the persistence layer.
package cache

import (
	"context"
	"time"
)

// Cache is the interface for snapshot caching with TTL support.
type Cache interface {
	// Get retrieves a value from cache.
	// Returns the value and true if found, or nil and false if not found.
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries from cache.
	Clear(ctx context.Context) error

	// Close releases resources held by the cache.
	Close() error

	// Stats returns cache statistics.
	Stats() *Stats
}

// Stats holds cache performance statistics.
type Stats struct {
	Hits        uint64
	Misses      uint64
	KeysAdded   uint64
	KeysEvicted uint64
}

// HitRate returns the cache hit rate (0.0 to 1.0).
func (s *Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total)
}
