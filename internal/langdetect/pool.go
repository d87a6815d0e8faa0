package langdetect

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Pool runs every detector concurrently over one text.
type Pool struct {
	detectors []Detector
	logger    zerolog.Logger
}

func NewPool(logger zerolog.Logger, detectors ...Detector) *Pool {
	return &Pool{detectors: detectors, logger: logger}
}

// Size returns the number of detectors in the pool.
func (p *Pool) Size() int {
	if p == nil {
		return 0
	}
	return len(p.detectors)
}

// Detect starts all detectors and returns their signals in completion
// order. The channel yields at most one signal per detector and is closed
// once every detector has returned. Each detector is bounded by timeout.
// The channel is buffered, so detectors finish even if nobody reads.
func (p *Pool) Detect(ctx context.Context, text string, timeout time.Duration) <-chan Signal {
	out := make(chan Signal, p.Size())
	if p.Size() == 0 {
		close(out)
		return out
	}

	var (
		detectCtx context.Context
		cancel    context.CancelFunc
	)
	if timeout > 0 {
		detectCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		detectCtx, cancel = context.WithCancel(ctx)
	}

	var wg sync.WaitGroup
	for _, detector := range p.detectors {
		wg.Add(1)
		go func(d Detector) {
			defer wg.Done()
			out <- p.run(detectCtx, d, text)
		}(detector)
	}

	go func() {
		wg.Wait()
		cancel()
		close(out)
	}()
	return out
}

func (p *Pool) run(ctx context.Context, d Detector, text string) Signal {
	started := time.Now()
	sig, err := d.Detect(ctx, text)
	if err != nil {
		sig = Signal{Detector: d.Name(), Err: err}
		p.logger.Debug().
			Err(err).
			Str("detector", string(d.Name())).
			Dur("elapsed", time.Since(started)).
			Msg("detector failed")
		return sig
	}
	sig.Detector = d.Name()
	p.logger.Debug().
		Str("detector", string(d.Name())).
		Str("raw_code", sig.RawCode).
		Str("language", sig.Language).
		Float64("confidence", sig.Confidence).
		Dur("elapsed", time.Since(started)).
		Msg("detector finished")
	return sig
}
