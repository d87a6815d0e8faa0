package langdetect

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"horse.fit/easydict/internal/backend"
)

type stubDetector struct {
	name  backend.ID
	delay time.Duration
	sig   Signal
	err   error
	calls atomic.Int32
}

func (d *stubDetector) Name() backend.ID {
	return d.name
}

func (d *stubDetector) Detect(ctx context.Context, _ string) (Signal, error) {
	d.calls.Add(1)
	if d.delay > 0 {
		select {
		case <-time.After(d.delay):
		case <-ctx.Done():
			return Signal{}, ctx.Err()
		}
	}
	return d.sig, d.err
}

func collect(ch <-chan Signal) []Signal {
	var out []Signal
	for s := range ch {
		out = append(out, s)
	}
	return out
}

func TestPoolDetectYieldsOneSignalPerDetector(t *testing.T) {
	t.Parallel()

	fast := &stubDetector{name: "fast", sig: Signal{Language: "en", RawCode: "en"}}
	slow := &stubDetector{name: "slow", delay: 30 * time.Millisecond, sig: Signal{Language: "fr", RawCode: "fr"}}
	broken := &stubDetector{name: "broken", err: errors.New("boom")}

	pool := NewPool(zerolog.Nop(), slow, fast, broken)
	signals := collect(pool.Detect(context.Background(), "text", time.Second))

	require.Len(t, signals, 3)
	byName := map[backend.ID]Signal{}
	for _, s := range signals {
		byName[s.Detector] = s
	}
	assert.Equal(t, "en", byName["fast"].Language)
	assert.Equal(t, "fr", byName["slow"].Language)
	assert.EqualError(t, byName["broken"].Err, "boom")
	assert.Equal(t, backend.ID("slow"), signals[2].Detector, "slowest detector arrives last")
}

func TestPoolDetectTimeoutIsPerDetector(t *testing.T) {
	t.Parallel()

	stuck := &stubDetector{name: "stuck", delay: time.Minute}
	quick := &stubDetector{name: "quick", sig: Signal{Language: "de"}}

	pool := NewPool(zerolog.Nop(), stuck, quick)
	started := time.Now()
	signals := collect(pool.Detect(context.Background(), "text", 20*time.Millisecond))

	assert.Less(t, time.Since(started), time.Second)
	require.Len(t, signals, 2)
	for _, s := range signals {
		if s.Detector == "stuck" {
			assert.ErrorIs(t, s.Err, context.DeadlineExceeded)
		}
	}
}

func TestPoolDetectEmpty(t *testing.T) {
	t.Parallel()

	var pool *Pool
	assert.Empty(t, collect(pool.Detect(context.Background(), "text", time.Second)))
	assert.Empty(t, collect(NewPool(zerolog.Nop()).Detect(context.Background(), "text", time.Second)))
}

func TestPoolFeedsArbitrator(t *testing.T) {
	t.Parallel()

	script := &stubDetector{name: backend.Script, sig: Signal{Language: "ja", Confidence: 1, Scored: true}}
	remote := &stubDetector{name: backend.Baidu, delay: time.Minute}

	pool := NewPool(zerolog.Nop(), script, remote)
	got := newTestArbitrator(5*time.Second).Arbitrate(
		context.Background(),
		pool.Detect(context.Background(), "こんにちは", 50*time.Millisecond),
		"en",
	)
	assert.Equal(t, "ja", got.Language)
	assert.Equal(t, MethodAuthoritative, got.Method)
}
