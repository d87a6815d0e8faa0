package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/errkind"
	"horse.fit/easydict/internal/langdetect"
	"horse.fit/easydict/internal/translation"
)

func TestObserveOutcome(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewQueryMetrics(registry)
	require.NoError(t, err)

	m.ObserveOutcome(translation.Outcome{
		Provider: backend.Baidu,
		State:    translation.StateFailed,
		Kind:     errkind.RateLimited,
		Latency:  120 * time.Millisecond,
	})
	m.ObserveOutcome(translation.Outcome{
		Provider: backend.Google,
		State:    translation.StateSucceeded,
		Kind:     errkind.Success,
		Cached:   true,
	})

	assert.Equal(t, float64(1), testutil.ToFloat64(m.providerOutcomesTotal.WithLabelValues("baidu", "failed", "rate_limited")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.providerOutcomesTotal.WithLabelValues("google", "succeeded", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.providerCacheHits.WithLabelValues("google")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.providerLatency))
}

func TestObserveConfirmed(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewQueryMetrics(registry)
	require.NoError(t, err)

	m.ObserveConfirmed(langdetect.Confirmed{Language: "ja", Method: langdetect.MethodAuthoritative, Confidence: 1})
	m.ObserveConfirmed(langdetect.Confirmed{Language: "ja", Method: langdetect.MethodAuthoritative, Confidence: 0.9})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.confirmationsTotal.WithLabelValues("authoritative", "ja")))
}

func TestNewQueryMetricsRejectsDuplicateRegistration(t *testing.T) {
	registry := prometheus.NewRegistry()
	_, err := NewQueryMetrics(registry)
	require.NoError(t, err)

	_, err = NewQueryMetrics(registry)
	assert.Error(t, err)
}
