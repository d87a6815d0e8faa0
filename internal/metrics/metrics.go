// Package metrics exposes Prometheus metrics for detection and dispatch.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"horse.fit/easydict/internal/langdetect"
	"horse.fit/easydict/internal/translation"
)

// QueryMetrics records provider outcomes and language confirmations. It
// satisfies translation.Observer and query.Observer.
type QueryMetrics struct {
	registry *prometheus.Registry

	providerOutcomesTotal *prometheus.CounterVec
	providerLatency       *prometheus.HistogramVec
	providerCacheHits     *prometheus.CounterVec

	confirmationsTotal     *prometheus.CounterVec
	confirmationConfidence prometheus.Histogram
}

// NewQueryMetrics creates and registers query metrics.
func NewQueryMetrics(registry *prometheus.Registry) (*QueryMetrics, error) {
	m := &QueryMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *QueryMetrics) initMetrics() {
	m.providerOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "easydict_provider_outcomes_total",
			Help: "Total number of provider outcomes by state and error kind",
		},
		[]string{"provider", "state", "kind"},
	)

	m.providerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "easydict_provider_latency_seconds",
			Help: "Time from dispatch to a terminal provider outcome",
			// 50ms to ~25s
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"provider"},
	)

	m.providerCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "easydict_provider_cache_hits_total",
			Help: "Total number of provider outcomes served from the result store",
		},
		[]string{"provider"},
	)

	m.confirmationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "easydict_language_confirmations_total",
			Help: "Total number of confirmed source languages by arbitration method",
		},
		[]string{"method", "language"},
	)

	m.confirmationConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "easydict_language_confirmation_confidence",
			Help:    "Confidence of confirmed source languages",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
	)
}

// ObserveOutcome records one terminal provider outcome.
func (m *QueryMetrics) ObserveOutcome(outcome translation.Outcome) {
	provider := string(outcome.Provider)
	m.providerOutcomesTotal.WithLabelValues(provider, outcome.State.String(), outcome.Kind.String()).Inc()
	if outcome.Cached {
		m.providerCacheHits.WithLabelValues(provider).Inc()
		return
	}
	m.providerLatency.WithLabelValues(provider).Observe(outcome.Latency.Seconds())
}

// ObserveConfirmed records one arbitration result.
func (m *QueryMetrics) ObserveConfirmed(confirmed langdetect.Confirmed) {
	m.confirmationsTotal.WithLabelValues(string(confirmed.Method), confirmed.Language).Inc()
	m.confirmationConfidence.Observe(confirmed.Confidence)
}

// Describe implements the Collector interface
func (m *QueryMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.providerOutcomesTotal.Describe(ch)
	m.providerLatency.Describe(ch)
	m.providerCacheHits.Describe(ch)
	m.confirmationsTotal.Describe(ch)
	m.confirmationConfidence.Describe(ch)
}

// Collect implements the Collector interface
func (m *QueryMetrics) Collect(ch chan<- prometheus.Metric) {
	m.providerOutcomesTotal.Collect(ch)
	m.providerLatency.Collect(ch)
	m.providerCacheHits.Collect(ch)
	m.confirmationsTotal.Collect(ch)
	m.confirmationConfidence.Collect(ch)
}
