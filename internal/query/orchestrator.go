package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"horse.fit/easydict/internal/aggregate"
	"horse.fit/easydict/internal/backend"
	"horse.fit/easydict/internal/langdetect"
	"horse.fit/easydict/internal/language"
	"horse.fit/easydict/internal/translation"
)

var (
	ErrEmptyText  = errors.New("query text is empty")
	ErrNoQuery    = errors.New("no query has been submitted")
	ErrUndetected = errors.New("source language is not confirmed yet")
	ErrSuperseded = errors.New("query was superseded by a newer query")
	ErrAutoTarget = errors.New("target language cannot be auto")
	ErrNotRunning = errors.New("orchestrator is not running")
)

// Observer is notified of every confirmed source language.
type Observer interface {
	ObserveConfirmed(confirmed langdetect.Confirmed)
}

type Options struct {
	// DefaultSource is used when a query names no source. Empty means auto.
	DefaultSource string
	// DefaultTarget is used when a query names no target.
	DefaultTarget string
	// FallbackSource is confirmed when detection yields nothing usable.
	FallbackSource string
	// SecondaryTarget replaces the target when it equals the confirmed source.
	SecondaryTarget string
	Observer        Observer
}

// Orchestrator owns all per-query state inside Run's event loop. Other
// methods talk to the loop by message.
type Orchestrator struct {
	languages  *language.Registry
	pool       *langdetect.Pool
	arbitrator *langdetect.Arbitrator
	dispatcher *translation.Dispatcher
	logger     zerolog.Logger
	opts       Options

	requests    chan request
	detections  chan detection
	outcomes    chan translation.Outcome
	running     chan struct{}
	runningOnce sync.Once

	mu          sync.Mutex
	latest      Snapshot
	subscribers map[chan Snapshot]struct{}
}

type request struct {
	text     string
	source   string
	target   string
	override bool
	reply    chan reply
}

type reply struct {
	query Context
	err   error
}

type detection struct {
	seq       uint64
	confirmed langdetect.Confirmed
}

// state is the event loop's view of the current query.
type state struct {
	current   Context
	submitted bool
	confirmed *langdetect.Confirmed
	target    string
	aggregate *aggregate.Aggregator
}

func NewOrchestrator(
	languages *language.Registry,
	pool *langdetect.Pool,
	arbitrator *langdetect.Arbitrator,
	dispatcher *translation.Dispatcher,
	logger zerolog.Logger,
	opts Options,
) *Orchestrator {
	if languages == nil {
		languages = language.Default()
	}
	if opts.DefaultSource == "" {
		opts.DefaultSource = language.Auto
	}
	if opts.DefaultTarget == "" {
		opts.DefaultTarget = "zh-Hans"
	}
	if opts.FallbackSource == "" {
		opts.FallbackSource = "en"
	}
	if opts.SecondaryTarget == "" {
		opts.SecondaryTarget = "en"
	}
	return &Orchestrator{
		languages:   languages,
		pool:        pool,
		arbitrator:  arbitrator,
		dispatcher:  dispatcher,
		logger:      logger,
		opts:        opts,
		requests:    make(chan request),
		detections:  make(chan detection),
		outcomes:    make(chan translation.Outcome),
		running:     make(chan struct{}),
		subscribers: make(map[chan Snapshot]struct{}),
	}
}

// Run processes queries until ctx is canceled. In-flight detection and
// dispatch goroutines are waited for before it returns.
func (o *Orchestrator) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	o.runningOnce.Do(func() { close(o.running) })
	st := &state{aggregate: aggregate.New()}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-o.requests:
			query, err := o.handleRequest(ctx, &wg, st, req)
			req.reply <- reply{query: query, err: err}
		case det := <-o.detections:
			o.handleDetection(ctx, &wg, st, det)
		case outcome := <-o.outcomes:
			if !st.aggregate.Offer(outcome) {
				o.logger.Debug().
					Uint64("seq", outcome.Seq).
					Uint64("current_seq", st.current.Seq).
					Str("provider", string(outcome.Provider)).
					Msg("dropping stale or duplicate outcome")
				continue
			}
			o.publish(st)
		}
	}
}

// Ready is closed once Run has started accepting requests.
func (o *Orchestrator) Ready() <-chan struct{} {
	return o.running
}

// Submit starts a new query and returns its context. source may be "auto".
// An empty target uses the configured default.
func (o *Orchestrator) Submit(ctx context.Context, text, source, target string) (Context, error) {
	return o.send(ctx, request{text: text, source: source, target: target})
}

// OverrideTarget re-dispatches the current query to a new target under a
// new sequence number, reusing the confirmed source language.
func (o *Orchestrator) OverrideTarget(ctx context.Context, target string) (Context, error) {
	return o.send(ctx, request{target: target, override: true})
}

func (o *Orchestrator) send(ctx context.Context, req request) (Context, error) {
	select {
	case <-o.running:
	default:
		return Context{}, ErrNotRunning
	}
	req.reply = make(chan reply, 1)
	select {
	case o.requests <- req:
	case <-ctx.Done():
		return Context{}, ctx.Err()
	}
	select {
	case r := <-req.reply:
		return r.query, r.err
	case <-ctx.Done():
		return Context{}, ctx.Err()
	}
}

// Snapshot returns the last published state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.latest
}

// Subscribe returns a channel holding the latest snapshot. Intermediate
// snapshots are skipped when the reader is slow. The channel is closed
// once ctx is done.
func (o *Orchestrator) Subscribe(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, 1)

	o.mu.Lock()
	o.subscribers[ch] = struct{}{}
	if o.latest.Seq > 0 {
		ch <- o.latest
	}
	o.mu.Unlock()

	go func() {
		<-ctx.Done()
		o.mu.Lock()
		delete(o.subscribers, ch)
		close(ch)
		o.mu.Unlock()
	}()
	return ch
}

// Query submits a query and waits until every provider has answered.
func (o *Orchestrator) Query(ctx context.Context, text, source, target string) (Snapshot, error) {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	updates := o.Subscribe(subCtx)

	query, err := o.Submit(ctx, text, source, target)
	if err != nil {
		return Snapshot{}, err
	}
	for {
		select {
		case <-ctx.Done():
			return o.Snapshot(), ctx.Err()
		case snapshot, ok := <-updates:
			if !ok {
				return o.Snapshot(), ctx.Err()
			}
			switch {
			case snapshot.Seq > query.Seq:
				return snapshot, ErrSuperseded
			case snapshot.Seq == query.Seq && snapshot.Complete:
				return snapshot, nil
			}
		}
	}
}

func (o *Orchestrator) handleRequest(ctx context.Context, wg *sync.WaitGroup, st *state, req request) (Context, error) {
	if req.override {
		return o.handleOverride(ctx, wg, st, req.target)
	}

	text := strings.TrimSpace(norm.NFC.String(req.text))
	if text == "" {
		return Context{}, ErrEmptyText
	}
	source, err := o.resolve(req.source, o.opts.DefaultSource)
	if err != nil {
		return Context{}, fmt.Errorf("resolve source language: %w", err)
	}
	target, err := o.resolve(req.target, o.opts.DefaultTarget)
	if err != nil {
		return Context{}, fmt.Errorf("resolve target language: %w", err)
	}
	if target == language.Auto {
		return Context{}, ErrAutoTarget
	}

	query := o.newContext(st, text, source, target)
	if source != language.Auto {
		o.confirm(ctx, wg, st, langdetect.Confirmed{Language: source, Confidence: 1, Method: langdetect.MethodUser})
		return query, nil
	}

	st.aggregate.Advance(query.Seq, text, nil)
	o.publish(st)
	o.detect(ctx, wg, query)
	return query, nil
}

func (o *Orchestrator) handleOverride(ctx context.Context, wg *sync.WaitGroup, st *state, rawTarget string) (Context, error) {
	if !st.submitted {
		return Context{}, ErrNoQuery
	}
	if st.confirmed == nil {
		return Context{}, ErrUndetected
	}
	target, err := o.resolve(rawTarget, "")
	if err != nil {
		return Context{}, fmt.Errorf("resolve target language: %w", err)
	}
	if target == language.Auto {
		return Context{}, ErrAutoTarget
	}

	confirmed := *st.confirmed
	query := o.newContext(st, st.current.Text, confirmed.Language, target)
	st.confirmed = &confirmed
	st.target = target
	if target == confirmed.Language {
		st.target = secondaryTarget(confirmed.Language, o.opts.SecondaryTarget)
	}
	o.dispatch(ctx, wg, st)
	return query, nil
}

func (o *Orchestrator) newContext(st *state, text, source, target string) Context {
	query := Context{
		Seq:       st.current.Seq + 1,
		ID:        uuid.NewString(),
		Text:      text,
		Source:    source,
		Target:    target,
		CreatedAt: time.Now().UTC(),
	}
	st.current = query
	st.submitted = true
	st.confirmed = nil
	st.target = target
	o.logger.Debug().
		Uint64("seq", query.Seq).
		Str("query_id", query.ID).
		Str("source", source).
		Str("target", target).
		Msg("query started")
	return query
}

func (o *Orchestrator) resolve(raw, fallback string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		if fallback == "" {
			return "", language.ErrNotFound
		}
		return fallback, nil
	}
	return o.languages.Resolve(raw)
}

func (o *Orchestrator) detect(ctx context.Context, wg *sync.WaitGroup, query Context) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		signals := o.pool.Detect(ctx, query.Text, o.arbitrator.Deadline())
		confirmed := o.arbitrator.Arbitrate(ctx, signals, o.opts.FallbackSource)
		select {
		case o.detections <- detection{seq: query.Seq, confirmed: confirmed}:
		case <-ctx.Done():
		}
	}()
}

func (o *Orchestrator) handleDetection(ctx context.Context, wg *sync.WaitGroup, st *state, det detection) {
	if det.seq != st.current.Seq {
		o.logger.Debug().
			Uint64("seq", det.seq).
			Uint64("current_seq", st.current.Seq).
			Msg("dropping stale detection")
		return
	}
	o.confirm(ctx, wg, st, det.confirmed)
}

func (o *Orchestrator) confirm(ctx context.Context, wg *sync.WaitGroup, st *state, confirmed langdetect.Confirmed) {
	st.confirmed = &confirmed
	st.target = st.current.Target
	if confirmed.Language == st.target {
		st.target = secondaryTarget(confirmed.Language, o.opts.SecondaryTarget)
	}
	if o.opts.Observer != nil {
		o.opts.Observer.ObserveConfirmed(confirmed)
	}
	o.dispatch(ctx, wg, st)
}

func (o *Orchestrator) dispatch(ctx context.Context, wg *sync.WaitGroup, st *state) {
	providers := o.dispatcher.Providers()
	ids := make([]backend.ID, 0, len(providers))
	for _, provider := range providers {
		ids = append(ids, provider.Name())
	}
	st.aggregate.Advance(st.current.Seq, st.current.Text, ids)
	o.publish(st)

	job := translation.Job{
		Seq:    st.current.Seq,
		Text:   st.current.Text,
		Source: st.confirmed.Language,
		Target: st.target,
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for outcome := range o.dispatcher.Dispatch(ctx, job) {
			select {
			case o.outcomes <- outcome:
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (o *Orchestrator) publish(st *state) {
	snapshot := Snapshot{
		Seq:              st.current.Seq,
		Query:            st.current,
		Target:           st.target,
		DetectionPending: st.confirmed == nil,
		Sections:         st.aggregate.Sections(),
		Notices:          st.aggregate.Notices(),
		Pending:          st.aggregate.Pending(),
	}
	if st.confirmed != nil {
		confirmed := *st.confirmed
		snapshot.Confirmed = &confirmed
		snapshot.Complete = st.aggregate.Complete()
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.latest = snapshot
	for ch := range o.subscribers {
		select {
		case ch <- snapshot:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}
