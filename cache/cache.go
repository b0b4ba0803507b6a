// Package cache keys decoded series by request fingerprint and collapses
// concurrent identical requests into a single fetch.
//
// The invariant is per-fingerprint single flight: while a fetch for a
// fingerprint is pending, further requests for the same fingerprint attach
// to it instead of starting another. Failures are not sticky; a request
// arriving after a failed fetch starts a fresh one.
package cache

import (
	"context"
	"sync"

	"github.com/heliodyne/pulseview/log"
	"github.com/heliodyne/pulseview/metrics"
	"github.com/heliodyne/pulseview/sched"
	"github.com/heliodyne/pulseview/types"
)

// FetchFunc loads and decodes the series for one fingerprint. It runs on
// the bridge, never on the caller's goroutine.
type FetchFunc func(ctx context.Context) (*types.DecodedSeries, error)

type entryState int

const (
	statePending entryState = iota
	stateReady
	stateFailed
)

type entry struct {
	state   entryState
	series  *types.DecodedSeries
	err     error
	waiters []*sched.Handle
}

// Cache holds decoded series keyed by fingerprint. All methods are safe for
// concurrent use.
type Cache struct {
	bridge    sched.Bridge
	logger    *log.Logger
	collector *metrics.Collector

	mu      sync.Mutex
	entries map[types.Fingerprint]*entry
}

// New creates an empty cache scheduling its fetches on bridge. logger and
// collector may be nil.
func New(bridge sched.Bridge, logger *log.Logger, collector *metrics.Collector) *Cache {
	if logger == nil {
		logger = log.Nop()
	}
	return &Cache{
		bridge:    bridge,
		logger:    logger,
		collector: collector,
		entries:   make(map[types.Fingerprint]*entry),
	}
}

// GetOrFetch returns a handle that settles with the series for fp.
//
// A ready entry settles the handle immediately without invoking fetch. A
// pending entry attaches the handle to the in-flight fetch. Otherwise fetch
// is spawned on the bridge; a previously failed entry is replaced, so the
// retry observes current server state rather than the recorded failure.
func (c *Cache) GetOrFetch(fp types.Fingerprint, fetch FetchFunc) *sched.Handle {
	c.mu.Lock()
	prev, ok := c.entries[fp]
	if ok {
		switch prev.state {
		case stateReady:
			series := prev.series
			c.mu.Unlock()
			c.collector.IncCacheHit()
			return sched.SettledHandle(series, nil)
		case statePending:
			h := sched.NewHandle()
			prev.waiters = append(prev.waiters, h)
			c.mu.Unlock()
			c.collector.IncCacheJoin()
			return h
		}
	}

	h := sched.NewHandle()
	fresh := &entry{state: statePending, waiters: []*sched.Handle{h}}
	c.entries[fp] = fresh
	c.mu.Unlock()

	if ok {
		c.collector.IncCacheRetry()
		c.logger.Debug("retrying failed fetch", map[string]any{
			"fingerprint": fp.Short(),
		})
	} else {
		c.collector.IncCacheMiss()
	}
	c.collector.IncFetchStarted()

	c.bridge.Spawn(func(ctx context.Context) (any, error) {
		series, err := fetch(ctx)
		c.complete(fp, fresh, series, err)
		return series, err
	})
	return h
}

// complete records the fetch outcome on e and settles every attached
// waiter. e may have been dropped from the map by Clear while the fetch
// ran; waiters are settled either way, the result just is not retained.
func (c *Cache) complete(fp types.Fingerprint, e *entry, series *types.DecodedSeries, err error) {
	c.mu.Lock()
	if err != nil {
		e.state = stateFailed
		e.err = err
		e.series = nil
	} else {
		e.state = stateReady
		e.series = series
	}
	waiters := e.waiters
	e.waiters = nil
	c.mu.Unlock()

	if err != nil {
		c.collector.IncFetchFailed()
		c.logger.Error("fetch failed", map[string]any{
			"fingerprint": fp.Short(),
			"kind":        string(Classify(err)),
			"error":       err.Error(),
		})
	} else {
		c.collector.IncFetchSucceeded()
		c.logger.Debug("fetch completed", map[string]any{
			"fingerprint": fp.Short(),
			"waiters":     len(waiters),
		})
	}

	for _, w := range waiters {
		w.Resolve(series, err)
	}
}

// Peek returns the cached series for fp without triggering a fetch. The
// boolean is false for absent, pending, and failed entries.
func (c *Cache) Peek(fp types.Fingerprint) (*types.DecodedSeries, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[fp]
	if !ok || e.state != stateReady {
		return nil, false
	}
	return e.series, true
}

// Evict drops the entry for fp if present. An in-flight fetch for fp still
// settles its waiters but its result is discarded.
func (c *Cache) Evict(fp types.Fingerprint) {
	c.mu.Lock()
	delete(c.entries, fp)
	c.mu.Unlock()
}

// Clear drops every entry. In-flight fetches still settle their waiters
// but their results are discarded.
func (c *Cache) Clear() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[types.Fingerprint]*entry)
	c.mu.Unlock()

	c.collector.IncCacheClear()
	c.logger.Info("cache cleared", map[string]any{
		"entries": n,
	})
}

// Len reports the number of entries in any state.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
