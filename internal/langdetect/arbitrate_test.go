package langdetect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"horse.fit/easydict/internal/backend"
)

func newTestArbitrator(deadline time.Duration) *Arbitrator {
	policy := DefaultPolicy()
	policy.Deadline = deadline
	return NewArbitrator(policy, zerolog.Nop())
}

func feed(signals ...Signal) <-chan Signal {
	ch := make(chan Signal, len(signals))
	for _, s := range signals {
		ch <- s
	}
	close(ch)
	return ch
}

func scored(d backend.ID, lang string, confidence float64) Signal {
	return Signal{Detector: d, RawCode: lang, Language: lang, Confidence: confidence, Scored: true}
}

func TestArbitrateQuorumBeatsSingleConfidentOutlier(t *testing.T) {
	t.Parallel()

	a := newTestArbitrator(time.Second)
	got := a.Arbitrate(context.Background(), feed(
		scored("a", "fr", 0.4),
		scored("c", "de", 0.9),
		scored("b", "fr", 0.5),
	), "en")

	assert.Equal(t, "fr", got.Language)
	assert.Equal(t, MethodQuorum, got.Method)
	assert.Equal(t, backend.ID("b"), got.Detector)
	assert.InDelta(t, 0.5, got.Confidence, 1e-9)
}

func TestArbitrateAuthoritativeShortCircuits(t *testing.T) {
	t.Parallel()

	signals := make(chan Signal, 1)
	signals <- scored(backend.Script, "zh-Hans", 1.0)
	// The channel stays open: remote detectors have not answered yet.

	a := newTestArbitrator(10 * time.Second)
	started := time.Now()
	got := a.Arbitrate(context.Background(), signals, "en")

	assert.Less(t, time.Since(started), time.Second)
	assert.Equal(t, "zh-Hans", got.Language)
	assert.Equal(t, MethodAuthoritative, got.Method)
	assert.Equal(t, backend.Script, got.Detector)
}

func TestArbitrateAuthoritativeBelowThresholdWaits(t *testing.T) {
	t.Parallel()

	a := newTestArbitrator(time.Second)
	got := a.Arbitrate(context.Background(), feed(
		scored(backend.Script, "en", 0.6),
		scored(backend.Lingua, "fr", 0.7),
		Signal{Detector: backend.Baidu, RawCode: "fra", Language: "fr"},
	), "zh-Hans")

	assert.Equal(t, "fr", got.Language)
	assert.Equal(t, MethodQuorum, got.Method)
}

func TestArbitrateNonAuthoritativeHighConfidenceDoesNotShortCircuit(t *testing.T) {
	t.Parallel()

	a := newTestArbitrator(time.Second)
	got := a.Arbitrate(context.Background(), feed(
		scored(backend.Lingua, "de", 0.99),
		scored(backend.Whatlang, "nl", 0.5),
		scored(backend.Script, "en", 0.6),
		scored(backend.Google, "nl", 0),
	), "en")

	assert.Equal(t, "nl", got.Language)
	assert.Equal(t, MethodQuorum, got.Method)
}

func TestArbitrateFallsBackToHighestConfidence(t *testing.T) {
	t.Parallel()

	a := newTestArbitrator(time.Second)
	got := a.Arbitrate(context.Background(), feed(
		Signal{Detector: backend.Baidu, RawCode: "it", Language: "it"},
		scored(backend.Whatlang, "es", 0.3),
		scored(backend.Lingua, "pt", 0.45),
	), "en")

	assert.Equal(t, "pt", got.Language)
	assert.Equal(t, MethodHighest, got.Method)
	assert.Equal(t, backend.Lingua, got.Detector)
}

func TestArbitrateDeadlineUsesSignalsSoFar(t *testing.T) {
	t.Parallel()

	signals := make(chan Signal, 1)
	signals <- scored(backend.Lingua, "ru", 0.5)

	a := newTestArbitrator(50 * time.Millisecond)
	got := a.Arbitrate(context.Background(), signals, "en")

	assert.Equal(t, "ru", got.Language)
	assert.Equal(t, MethodHighest, got.Method)
}

func TestArbitrateAllDetectorsFailUsesDefault(t *testing.T) {
	t.Parallel()

	a := newTestArbitrator(time.Second)
	got := a.Arbitrate(context.Background(), feed(
		Signal{Detector: backend.Script, Err: ErrTooShort},
		Signal{Detector: backend.Baidu, Err: errors.New("54003")},
		Signal{Detector: backend.Google, RawCode: "xx"},
	), "zh-Hans")

	assert.Equal(t, Confirmed{Language: "zh-Hans", Method: MethodDefault}, got)
}

func TestArbitrateNoSignalsBeforeDeadlineUsesDefault(t *testing.T) {
	t.Parallel()

	a := newTestArbitrator(20 * time.Millisecond)
	got := a.Arbitrate(context.Background(), make(chan Signal), "ja")

	assert.Equal(t, "ja", got.Language)
	assert.Equal(t, MethodDefault, got.Method)
}

func TestArbitrateSameDetectorTwiceIsNotAQuorum(t *testing.T) {
	t.Parallel()

	a := newTestArbitrator(time.Second)
	got := a.Arbitrate(context.Background(), feed(
		scored(backend.Lingua, "sv", 0.3),
		scored(backend.Lingua, "sv", 0.3),
		scored(backend.Whatlang, "da", 0.4),
	), "en")

	assert.Equal(t, "da", got.Language)
	assert.Equal(t, MethodHighest, got.Method)
}

func TestArbitrateCanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newTestArbitrator(time.Minute)
	got := a.Arbitrate(ctx, make(chan Signal), "en")
	assert.Equal(t, MethodDefault, got.Method)
}
