package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
)

// GinMiddleware returns a gin middleware that records metrics for each request.
// Routes are labeled by their registered pattern (e.g. /api/v1/:class/:id/metadata)
// so path parameters do not explode label cardinality.
func GinMiddleware(collector *Collector, exporter *PrometheusExporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			// Unmatched routes (404s) are grouped under one label
			route = "unmatched"
		}
		route = c.Request.Method + " " + route

		collector.RecordRequest(route)
		if exporter != nil {
			exporter.RecordRequest(route)
		}

		duration := time.Since(start).Seconds()
		collector.RecordDuration(route, duration)
		if exporter != nil {
			exporter.RecordDuration(route, duration)
		}

		if c.Writer.Status() >= 500 {
			collector.RecordError(route)
			if exporter != nil {
				exporter.RecordError(route)
			}
		}
	}
}

// DecisionRecorder fans out policy decision records to the collector and
// the Prometheus exporter.
type DecisionRecorder struct {
	collector *Collector
	exporter  *PrometheusExporter
}

// NewDecisionRecorder creates a recorder backed by the given sinks.
// Either sink may be nil.
func NewDecisionRecorder(collector *Collector, exporter *PrometheusExporter) *DecisionRecorder {
	return &DecisionRecorder{collector: collector, exporter: exporter}
}

// RecordDecision records the outcome of one metadata access check.
func (r *DecisionRecorder) RecordDecision(class, partition string, allowed bool) {
	if r.collector != nil {
		r.collector.RecordDecision(class, partition, allowed)
	}
	if r.exporter != nil {
		r.exporter.RecordDecision(class, partition, allowed)
	}
}
