// Package metrics exposes Prometheus instrumentation for the moderation
// pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline collectors. Each instance carries its own
// registry so tests never collide on global registration.
type Metrics struct {
	registry *prometheus.Registry

	verdicts       *prometheus.CounterVec
	evalDuration   prometheus.Histogram
	cacheHits      prometheus.Counter
	reviewFailures prometheus.Counter
}

// New creates a metrics set backed by a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixer",
			Subsystem: "moderation",
			Name:      "verdicts_total",
			Help:      "Moderation verdicts by intake source, outcome and rejecting rule.",
		}, []string{"source", "outcome", "rule"}),
		evalDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fixer",
			Subsystem: "moderation",
			Name:      "evaluation_duration_seconds",
			Help:      "Wall time spent deciding a submission, including cache and review.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fixer",
			Subsystem: "moderation",
			Name:      "verdict_cache_hits_total",
			Help:      "Verdicts served from the cache.",
		}),
		reviewFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "fixer",
			Subsystem: "moderation",
			Name:      "review_failures_total",
			Help:      "LLM review calls that failed and fell open to the rules verdict.",
		}),
	}
}

// Handler returns the exposition handler for this metrics set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordVerdict counts a decided verdict and observes its latency.
func (m *Metrics) RecordVerdict(source, rule string, approved bool, elapsed time.Duration) {
	outcome := "rejected"
	if approved {
		outcome = "approved"
	}
	if rule == "" {
		rule = "none"
	}
	m.verdicts.WithLabelValues(source, outcome, rule).Inc()
	m.evalDuration.Observe(elapsed.Seconds())
}

// RecordCacheHit counts a verdict served from the cache.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Inc()
}

// RecordReviewFailure counts a failed LLM review call.
func (m *Metrics) RecordReviewFailure() {
	m.reviewFailures.Inc()
}
