package metrics

import (
	"strings"
	"sync"
	"sync/atomic"

	"github.com/nvtienanh/metagate/pkg/cache"
	"github.com/nvtienanh/metagate/pkg/cache/memorycache"
)

// Collector collects and aggregates metrics for the application.
type Collector struct {
	// HTTP metrics
	httpRequests sync.Map // map[string]*uint64 - route -> count
	httpErrors   sync.Map // map[string]*uint64 - route -> error count
	httpDuration sync.Map // map[string]*durationValue - route -> total duration in seconds

	// Policy decision metrics
	decisions sync.Map // map[string]*uint64 - "class|partition|decision" -> count

	// Cache reference (optional, for querying cache-specific metrics)
	cache cache.Cache
}

// durationValue holds duration with mutex for thread-safe updates.
type durationValue struct {
	mu           sync.Mutex
	totalSeconds float64
}

// CacheMetrics holds snapshot cache performance metrics.
type CacheMetrics struct {
	Hits        uint64
	Misses      uint64
	HitRate     float64
	KeysCurrent int64
	Evictions   uint64
}

// HTTPMetrics holds HTTP request metrics.
type HTTPMetrics struct {
	RequestCounts        map[string]uint64
	ErrorCounts          map[string]uint64
	TotalDurationSeconds map[string]float64
}

// DecisionKey identifies one policy decision counter.
type DecisionKey struct {
	Class     string
	Partition string
	Decision  string
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{}
}

// SetCache sets the cache instance for collecting cache metrics.
func (c *Collector) SetCache(cache cache.Cache) {
	c.cache = cache
}

// RecordRequest records an HTTP request.
func (c *Collector) RecordRequest(route string) {
	counter := c.getOrCreateCounter(&c.httpRequests, route)
	atomic.AddUint64(counter, 1)
}

// RecordError records an HTTP error response.
func (c *Collector) RecordError(route string) {
	counter := c.getOrCreateCounter(&c.httpErrors, route)
	atomic.AddUint64(counter, 1)
}

// RecordDuration records the duration of an HTTP request in seconds.
func (c *Collector) RecordDuration(route string, durationSeconds float64) {
	val, _ := c.httpDuration.LoadOrStore(route, &durationValue{})
	dv := val.(*durationValue)

	dv.mu.Lock()
	dv.totalSeconds += durationSeconds
	dv.mu.Unlock()
}

// RecordDecision records the outcome of a metadata access check.
func (c *Collector) RecordDecision(class, partition string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	counter := c.getOrCreateCounter(&c.decisions, class+"|"+partition+"|"+decision)
	atomic.AddUint64(counter, 1)
}

// GetCacheMetrics returns current cache metrics.
func (c *Collector) GetCacheMetrics() *CacheMetrics {
	if c.cache == nil {
		return &CacheMetrics{}
	}

	stats := c.cache.Stats()
	if stats == nil {
		return &CacheMetrics{}
	}

	result := &CacheMetrics{
		Hits:      stats.Hits,
		Misses:    stats.Misses,
		HitRate:   stats.HitRate(),
		Evictions: stats.KeysEvicted,
	}

	// Get current key count if available
	if memCache, ok := c.cache.(*memorycache.Cache); ok {
		result.KeysCurrent = int64(memCache.Len())
	}

	return result
}

// GetHTTPMetrics returns current HTTP metrics.
func (c *Collector) GetHTTPMetrics() *HTTPMetrics {
	result := &HTTPMetrics{
		RequestCounts:        make(map[string]uint64),
		ErrorCounts:          make(map[string]uint64),
		TotalDurationSeconds: make(map[string]float64),
	}

	// Collect request counts
	c.httpRequests.Range(func(key, value interface{}) bool {
		route := key.(string)
		count := atomic.LoadUint64(value.(*uint64))
		result.RequestCounts[route] = count
		return true
	})

	// Collect error counts
	c.httpErrors.Range(func(key, value interface{}) bool {
		route := key.(string)
		count := atomic.LoadUint64(value.(*uint64))
		result.ErrorCounts[route] = count
		return true
	})

	// Collect duration totals
	c.httpDuration.Range(func(key, value interface{}) bool {
		route := key.(string)
		dv := value.(*durationValue)
		dv.mu.Lock()
		result.TotalDurationSeconds[route] = dv.totalSeconds
		dv.mu.Unlock()
		return true
	})

	return result
}

// GetDecisionCounts returns current policy decision counts.
func (c *Collector) GetDecisionCounts() map[DecisionKey]uint64 {
	result := make(map[DecisionKey]uint64)

	c.decisions.Range(func(key, value interface{}) bool {
		parts := splitDecisionKey(key.(string))
		result[parts] = atomic.LoadUint64(value.(*uint64))
		return true
	})

	return result
}

func splitDecisionKey(key string) DecisionKey {
	parts := strings.SplitN(key, "|", 3)
	if len(parts) != 3 {
		return DecisionKey{Class: key}
	}
	return DecisionKey{Class: parts[0], Partition: parts[1], Decision: parts[2]}
}

// getOrCreateCounter gets or creates a counter for the given key.
func (c *Collector) getOrCreateCounter(m *sync.Map, key string) *uint64 {
	val, _ := m.LoadOrStore(key, new(uint64))
	return val.(*uint64)
}
