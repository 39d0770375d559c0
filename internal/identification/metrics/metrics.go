// Package metrics provides observability for the identification module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the identification module's Prometheus collectors. All
// methods are nil-safe so tests can pass a nil *Metrics.
type Metrics struct {
	// Cache outcomes per repository operation
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	CacheErrors *prometheus.CounterVec

	// Repository operation latency
	OpLatency *prometheus.HistogramVec

	RecordsCreated prometheus.Counter
}

// New creates and registers all identification metrics.
func New() *Metrics {
	return &Metrics{
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nfe_cache_hits_total",
			Help: "Cache hits by repository operation",
		}, []string{"operation"}),

		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nfe_cache_misses_total",
			Help: "Cache misses by repository operation",
		}, []string{"operation"}),

		CacheErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nfe_cache_errors_total",
			Help: "Cache failures treated as misses, by cache operation",
		}, []string{"operation"}),

		OpLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nfe_repository_operation_duration_seconds",
			Help:    "Duration of repository operations including store and cache time",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		RecordsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "nfe_identifications_created_total",
			Help: "Total identifications created",
		}),
	}
}

// IncrementCacheHit records a cache hit for a repository operation.
func (m *Metrics) IncrementCacheHit(operation string) {
	if m != nil {
		m.CacheHits.WithLabelValues(operation).Inc()
	}
}

// IncrementCacheMiss records a cache miss for a repository operation.
func (m *Metrics) IncrementCacheMiss(operation string) {
	if m != nil {
		m.CacheMisses.WithLabelValues(operation).Inc()
	}
}

// IncrementCacheError records a cache failure for a cache operation.
func (m *Metrics) IncrementCacheError(operation string) {
	if m != nil {
		m.CacheErrors.WithLabelValues(operation).Inc()
	}
}

// ObserveOpLatency records the duration of a repository operation.
func (m *Metrics) ObserveOpLatency(operation string, d time.Duration) {
	if m != nil {
		m.OpLatency.WithLabelValues(operation).Observe(d.Seconds())
	}
}

// IncrementRecordsCreated records a successful create.
func (m *Metrics) IncrementRecordsCreated() {
	if m != nil {
		m.RecordsCreated.Inc()
	}
}
