package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusExporter exports metrics to Prometheus format.
type PrometheusExporter struct {
	collector *Collector

	// Prometheus metrics
	cacheHits      prometheus.Counter
	cacheMisses    prometheus.Counter
	cacheHitRate   prometheus.Gauge
	cacheKeys      prometheus.Gauge
	cacheEvictions prometheus.Counter
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	httpErrors     *prometheus.CounterVec
	decisions      *prometheus.CounterVec
}

// NewPrometheusExporter creates a new Prometheus exporter.
func NewPrometheusExporter(collector *Collector) *PrometheusExporter {
	return &PrometheusExporter{
		collector: collector,
		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "metagate_snapshot_cache_hits_total",
			Help: "Total number of cache hits for entity snapshots",
		}),
		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "metagate_snapshot_cache_misses_total",
			Help: "Total number of cache misses for entity snapshots",
		}),
		cacheHitRate: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "metagate_snapshot_cache_hit_rate",
			Help: "Current cache hit rate (0.0 to 1.0)",
		}),
		cacheKeys: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "metagate_snapshot_cache_keys_current",
			Help: "Current number of keys in the snapshot cache",
		}),
		cacheEvictions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "metagate_snapshot_cache_evictions_total",
			Help: "Total number of cache evictions due to capacity limits",
		}),
		httpRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "metagate_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route"},
		),
		httpDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "metagate_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
			},
			[]string{"route"},
		),
		httpErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "metagate_http_errors_total",
				Help: "Total number of HTTP error responses",
			},
			[]string{"route"},
		),
		decisions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "metagate_access_decisions_total",
				Help: "Total number of metadata access decisions",
			},
			[]string{"class", "partition", "decision"},
		),
	}
}

// Update updates Gauge metrics from the collector.
// Counters are updated via middleware, so only update gauges here.
// This should be called periodically (e.g., every 10 seconds).
func (e *PrometheusExporter) Update() {
	cacheMetrics := e.collector.GetCacheMetrics()
	e.cacheHitRate.Set(cacheMetrics.HitRate)
	e.cacheKeys.Set(float64(cacheMetrics.KeysCurrent))
}

// RecordRequest records a request in Prometheus.
func (e *PrometheusExporter) RecordRequest(route string) {
	e.httpRequests.WithLabelValues(route).Inc()
}

// RecordDuration records a duration in Prometheus.
func (e *PrometheusExporter) RecordDuration(route string, durationSeconds float64) {
	e.httpDuration.WithLabelValues(route).Observe(durationSeconds)
}

// RecordError records an error in Prometheus.
func (e *PrometheusExporter) RecordError(route string) {
	e.httpErrors.WithLabelValues(route).Inc()
}

// RecordDecision records a metadata access decision in Prometheus.
func (e *PrometheusExporter) RecordDecision(class, partition string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	e.decisions.WithLabelValues(class, partition, decision).Inc()
}

// RecordCacheHit records a cache hit.
func (e *PrometheusExporter) RecordCacheHit() {
	e.cacheHits.Inc()
}

// RecordCacheMiss records a cache miss.
func (e *PrometheusExporter) RecordCacheMiss() {
	e.cacheMisses.Inc()
}

// RecordCacheEviction records a cache eviction.
func (e *PrometheusExporter) RecordCacheEviction() {
	e.cacheEvictions.Inc()
}
