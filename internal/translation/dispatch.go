package translation

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/errkind"
	"horse.fit/easydict/internal/language"
)

// Codes for failures decided locally, before any network call.
const (
	CodeTooLong     = "local:too_long"
	CodeUnsupported = "local:unsupported"
	CodeThrottled   = "local:throttled"
	CodeMalformed   = "local:malformed"
	CodeTransport   = "local:transport"
)

const DefaultProviderTimeout = 6 * time.Second

// Job is one query to fan out. Source and Target are canonical ids.
type Job struct {
	Seq    uint64
	Text   string
	Source string
	Target string
}

// CacheKey identifies a cached provider result.
type CacheKey struct {
	Provider backend.ID
	Source   string
	Target   string
	Text     string
}

// ResultStore caches successful provider results.
type ResultStore interface {
	Lookup(ctx context.Context, key CacheKey) (*Result, bool, error)
	Save(ctx context.Context, key CacheKey, result *Result) error
}

// Observer is notified of every terminal outcome.
type Observer interface {
	ObserveOutcome(outcome Outcome)
}

type DispatcherOptions struct {
	// Timeout bounds each provider call. Defaults to DefaultProviderTimeout.
	Timeout time.Duration
	// RatePerSecond limits calls per provider. Zero disables limiting.
	RatePerSecond float64
	Burst         int
	Store         ResultStore
	Observer      Observer
}

// Dispatcher fans a Job out to every registered provider and reports each
// provider's outcome independently.
type Dispatcher struct {
	providers []Provider
	languages *language.Registry
	logger    zerolog.Logger
	timeout   time.Duration
	limiters  map[backend.ID]*rate.Limiter
	store     ResultStore
	observer  Observer
	group     singleflight.Group
}

func NewDispatcher(registry *Registry, languages *language.Registry, logger zerolog.Logger, opts DispatcherOptions) *Dispatcher {
	if languages == nil {
		languages = language.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	providers := registry.Providers()

	var limiters map[backend.ID]*rate.Limiter
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiters = make(map[backend.ID]*rate.Limiter, len(providers))
		for _, provider := range providers {
			limiters[provider.Name()] = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
		}
	}

	return &Dispatcher{
		providers: providers,
		languages: languages,
		logger:    logger,
		timeout:   timeout,
		limiters:  limiters,
		store:     opts.Store,
		observer:  opts.Observer,
	}
}

// Providers returns the providers a Dispatch call fans out to, in priority order.
func (d *Dispatcher) Providers() []Provider {
	return append([]Provider(nil), d.providers...)
}

// Dispatch queries every provider concurrently. The channel receives one
// terminal outcome per provider in completion order and is then closed.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job) <-chan Outcome {
	out := make(chan Outcome, len(d.providers))
	var wg sync.WaitGroup
	for _, provider := range d.providers {
		wg.Add(1)
		go func(p Provider) {
			defer wg.Done()
			out <- d.dispatchOne(ctx, p, job)
		}(provider)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

func (d *Dispatcher) dispatchOne(ctx context.Context, p Provider, job Job) Outcome {
	started := time.Now()
	outcome := d.query(ctx, p, job)
	outcome.Latency = time.Since(started)

	event := d.logger.Debug()
	if outcome.Kind == errkind.Unknown {
		event = d.logger.Warn()
	}
	event.
		Uint64("seq", job.Seq).
		Str("provider", string(p.Name())).
		Stringer("state", outcome.State).
		Stringer("kind", outcome.Kind).
		Str("code", outcome.Code).
		Dur("latency", outcome.Latency).
		Msg("provider outcome")

	if d.observer != nil {
		d.observer.ObserveOutcome(outcome)
	}
	return outcome
}

func (d *Dispatcher) query(ctx context.Context, p Provider, job Job) Outcome {
	if utf8.RuneCountInString(job.Text) > p.MaxQueryLength() {
		return failed(p, job.Seq, errkind.QueryRejected, CodeTooLong,
			fmt.Sprintf("Query exceeds %d characters", p.MaxQueryLength()))
	}

	sourceCode, sourceOK := d.languages.CodeFor(job.Source, p.Name())
	targetCode, targetOK := d.languages.CodeFor(job.Target, p.Name())
	if !sourceOK || !targetOK {
		return failed(p, job.Seq, errkind.UnsupportedLanguagePair, CodeUnsupported, "")
	}

	key := CacheKey{Provider: p.Name(), Source: job.Source, Target: job.Target, Text: job.Text}
	if d.store != nil {
		cached, found, err := d.store.Lookup(ctx, key)
		if err != nil {
			d.logger.Warn().Err(err).Str("provider", string(p.Name())).Msg("result cache lookup failed")
		} else if found {
			outcome := succeeded(p, job.Seq, cached)
			outcome.Cached = true
			return outcome
		}
	}

	if limiter := d.limiters[p.Name()]; limiter != nil && !limiter.Allow() {
		return failed(p, job.Seq, errkind.RateLimited, CodeThrottled, "")
	}

	req := Request{
		Text:       job.Text,
		Source:     job.Source,
		Target:     job.Target,
		SourceCode: sourceCode,
		TargetCode: targetCode,
	}
	flightKey := string(p.Name()) + "\x00" + sourceCode + "\x00" + targetCode + "\x00" + job.Text
	// The shared call belongs to no single caller, so only the provider
	// timeout ends it.
	value, err, _ := d.group.Do(flightKey, func() (any, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		return p.Query(callCtx, req)
	})
	if err != nil {
		return d.classify(p, job.Seq, err)
	}

	result, _ := value.(*Result)
	if result == nil {
		return failed(p, job.Seq, errkind.Unknown, CodeMalformed, "")
	}
	if result.Provider == "" {
		result.Provider = p.Name()
	}
	if d.store != nil {
		if err := d.store.Save(ctx, key, result); err != nil {
			d.logger.Warn().Err(err).Str("provider", string(p.Name())).Msg("result cache save failed")
		}
	}
	return succeeded(p, job.Seq, result)
}

func (d *Dispatcher) classify(p Provider, seq uint64, err error) Outcome {
	var backendErr *BackendError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return timedOut(p, seq)
	case errors.As(err, &backendErr):
		entry, documented := errkind.Lookup(p.Name(), backendErr.Code)
		if !documented {
			d.logger.Warn().
				Str("provider", string(p.Name())).
				Str("code", backendErr.Code).
				Str("message", backendErr.Message).
				Msg("unclassified backend status")
		}
		if entry.Kind == errkind.Success {
			return failed(p, seq, errkind.Unknown, backendErr.Code, backendErr.Message)
		}
		message := entry.Message
		if message == "" {
			message = backendErr.Message
		}
		return failed(p, seq, entry.Kind, backendErr.Code, message)
	case errors.Is(err, ErrMalformedResponse):
		return failed(p, seq, errkind.Unknown, CodeMalformed, err.Error())
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return timedOut(p, seq)
	}
	return failed(p, seq, errkind.NetworkFailure, CodeTransport, err.Error())
}
