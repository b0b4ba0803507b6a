// Package orchestrator owns the viewer's state machine. It holds the
// current view state, drives fetches through the data cache, and publishes
// phase transitions to the rendering surface.
//
// The machine moves Idle -> Fetching -> (Displaying | Errored). Every
// adopted view change bumps a generation counter; a fetch result settling
// after a newer view was adopted is discarded, so the surface never shows
// data for a view the user has already left.
package orchestrator

import (
	"context"
	"sync"

	"github.com/heliodyne/pulseview/cache"
	"github.com/heliodyne/pulseview/log"
	"github.com/heliodyne/pulseview/metrics"
	"github.com/heliodyne/pulseview/sched"
	"github.com/heliodyne/pulseview/types"
)

// Phase is the orchestrator's position in its state machine.
type Phase int

const (
	// PhaseIdle means no view has been adopted yet.
	PhaseIdle Phase = iota
	// PhaseFetching means a fetch for the current view is in flight.
	PhaseFetching
	// PhaseDisplaying means the current view's data is available.
	PhaseDisplaying
	// PhaseErrored means the current view's fetch failed.
	PhaseErrored
)

// String returns the phase name for log fields.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFetching:
		return "fetching"
	case PhaseDisplaying:
		return "displaying"
	case PhaseErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Snapshot is one published orchestrator state. Series is non-nil only in
// PhaseDisplaying; Err and ErrKind are set only in PhaseErrored.
type Snapshot struct {
	Phase      Phase
	View       types.ViewState
	Generation uint64
	Series     *types.DecodedSeries
	Err        error
	ErrKind    cache.ErrorKind
}

// FetchFactory builds the fetch pipeline for one view state. The returned
// function runs on the scheduler bridge and performs the actual remote
// request and decode.
type FetchFactory func(view types.ViewState) cache.FetchFunc

// Subscriber receives every published snapshot. Callbacks run on the
// goroutine that triggered the transition; they must not call back into
// the orchestrator.
type Subscriber func(Snapshot)

// Orchestrator coordinates view changes, fetches, and publishes.
type Orchestrator struct {
	cache     *cache.Cache
	fetch     FetchFactory
	logger    *log.Logger
	collector *metrics.Collector

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	generation uint64
	phase      Phase
	view       types.ViewState
	series     *types.DecodedSeries
	err        error
	subs       []Subscriber
}

// New creates an orchestrator in PhaseIdle. logger and collector may be
// nil.
func New(c *cache.Cache, fetch FetchFactory, logger *log.Logger, collector *metrics.Collector) *Orchestrator {
	if logger == nil {
		logger = log.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Orchestrator{
		cache:     c,
		fetch:     fetch,
		logger:    logger,
		collector: collector,
		ctx:       ctx,
		cancel:    cancel,
		phase:     PhaseIdle,
	}
}

// Subscribe registers fn for every future snapshot. Not safe to call
// concurrently with itself; register subscribers during setup.
func (o *Orchestrator) Subscribe(fn Subscriber) {
	o.mu.Lock()
	o.subs = append(o.subs, fn)
	o.mu.Unlock()
}

// Current returns the latest snapshot without waiting.
func (o *Orchestrator) Current() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// View returns the currently adopted view state.
func (o *Orchestrator) View() types.ViewState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.view
}

// SetView adopts a new view state and starts fetching its data. Adopting a
// view identical to the current one while its data is displaying or still
// in flight is a no-op; in PhaseErrored an identical view retries the
// fetch.
func (o *Orchestrator) SetView(v types.ViewState) {
	v.Normalize()

	o.mu.Lock()
	if o.phase != PhaseIdle && o.phase != PhaseErrored && v.Equal(o.view) {
		o.mu.Unlock()
		return
	}
	o.view = v
	o.startFetchLocked()
}

// Reload refetches the current view from the server, bypassing the cached
// result. The entry for the view's fingerprint is evicted first so the
// fetch observes current server state.
func (o *Orchestrator) Reload() {
	o.mu.Lock()
	if o.phase == PhaseIdle {
		o.mu.Unlock()
		return
	}
	o.cache.Evict(o.view.Fingerprint())
	o.startFetchLocked()
}

// Close cancels any in-flight result delivery. Settled fetches after Close
// are discarded.
func (o *Orchestrator) Close() {
	o.cancel()
}

// startFetchLocked bumps the generation, publishes PhaseFetching, and
// hands the fetch to the cache. Called with o.mu held; releases it.
func (o *Orchestrator) startFetchLocked() {
	o.generation++
	gen := o.generation
	view := o.view
	o.phase = PhaseFetching
	o.series = nil
	o.err = nil
	snap := o.snapshotLocked()
	o.mu.Unlock()

	o.collector.IncViewChange()
	o.logger.Debug("view adopted", map[string]any{
		"generation":  gen,
		"dataset":     view.Dataset,
		"fingerprint": view.Fingerprint().Short(),
	})
	o.publish(snap)

	h := o.cache.GetOrFetch(view.Fingerprint(), o.fetch(view))
	go o.deliver(gen, h)
}

// deliver waits for the fetch handle and publishes the outcome, unless a
// newer generation was adopted while the fetch ran.
func (o *Orchestrator) deliver(gen uint64, h *sched.Handle) {
	value, err := h.Await(o.ctx)
	if o.ctx.Err() != nil {
		return
	}

	o.mu.Lock()
	if gen != o.generation {
		current := o.generation
		o.mu.Unlock()
		o.collector.IncSuperseded()
		o.logger.Debug("stale fetch result discarded", map[string]any{
			"generation": gen,
			"current":    current,
		})
		return
	}
	if err != nil {
		o.phase = PhaseErrored
		o.series = nil
		o.err = err
	} else {
		o.phase = PhaseDisplaying
		o.series, _ = value.(*types.DecodedSeries)
		o.err = nil
	}
	snap := o.snapshotLocked()
	o.mu.Unlock()

	if err != nil {
		o.collector.IncPublishErrored()
	} else {
		o.collector.IncPublishDisplayed()
	}
	o.publish(snap)
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	snap := Snapshot{
		Phase:      o.phase,
		View:       o.view,
		Generation: o.generation,
		Series:     o.series,
		Err:        o.err,
	}
	if o.err != nil {
		snap.ErrKind = cache.Classify(o.err)
	}
	return snap
}

func (o *Orchestrator) publish(snap Snapshot) {
	o.mu.Lock()
	subs := o.subs
	o.mu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}
