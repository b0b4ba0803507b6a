// Package metrics provides per-session metrics collection.
//
// The Collector accumulates counters during one viewer session. It is a
// leaf package with no internal dependencies. All increment methods are
// nil-receiver safe so components can treat the collector as optional.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of session metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Cache
	CacheHits        int64
	CacheJoins       int64 // callers attached to an in-flight fetch
	CacheMisses      int64
	CacheRetries     int64 // fetches re-triggered after a failed entry
	CacheClears      int64
	BlockStoreHits   int64
	BlockStoreMisses int64

	// Fetch pipeline
	FetchesStarted   int64
	FetchesSucceeded int64
	FetchesFailed    int64
	BytesFetched     int64
	DecodeErrors     int64

	// Orchestrator
	ViewChanges        int64
	PublishesDisplayed int64
	PublishesErrored   int64
	Superseded         int64 // fetch results discarded by a newer view

	// Dimensions (informational, set at construction)
	SessionID string
	Target    string
}

// Collector accumulates metrics during a single viewer session.
// Thread-safe via sync.Mutex.
type Collector struct {
	mu sync.Mutex

	cacheHits        int64
	cacheJoins       int64
	cacheMisses      int64
	cacheRetries     int64
	cacheClears      int64
	blockStoreHits   int64
	blockStoreMisses int64

	fetchesStarted   int64
	fetchesSucceeded int64
	fetchesFailed    int64
	bytesFetched     int64
	decodeErrors     int64

	viewChanges        int64
	publishesDisplayed int64
	publishesErrored   int64
	superseded         int64

	sessionID string
	target    string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(sessionID, target string) *Collector {
	return &Collector{sessionID: sessionID, target: target}
}

// --- Cache ---

// IncCacheHit records a request served from a Ready entry.
func (c *Collector) IncCacheHit() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.cacheHits++
	c.mu.Unlock()
}

// IncCacheJoin records a caller attached to a Pending entry.
func (c *Collector) IncCacheJoin() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.cacheJoins++
	c.mu.Unlock()
}

// IncCacheMiss records a request that created a new entry.
func (c *Collector) IncCacheMiss() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.cacheMisses++
	c.mu.Unlock()
}

// IncCacheRetry records a fetch re-triggered after a failed entry.
func (c *Collector) IncCacheRetry() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.cacheRetries++
	c.mu.Unlock()
}

// IncCacheClear records an explicit cache clear.
func (c *Collector) IncCacheClear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.cacheClears++
	c.mu.Unlock()
}

// IncBlockStoreHit records a persistent block-store hit.
func (c *Collector) IncBlockStoreHit() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.blockStoreHits++
	c.mu.Unlock()
}

// IncBlockStoreMiss records a persistent block-store miss.
func (c *Collector) IncBlockStoreMiss() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.blockStoreMisses++
	c.mu.Unlock()
}

// --- Fetch pipeline ---

// IncFetchStarted records a fetch handed to the scheduler.
func (c *Collector) IncFetchStarted() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.fetchesStarted++
	c.mu.Unlock()
}

// IncFetchSucceeded records a fetch that decoded successfully.
func (c *Collector) IncFetchSucceeded() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.fetchesSucceeded++
	c.mu.Unlock()
}

// IncFetchFailed records a fetch that settled with an error.
func (c *Collector) IncFetchFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.fetchesFailed++
	c.mu.Unlock()
}

// AddBytesFetched records raw bytes received from the server.
func (c *Collector) AddBytesFetched(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.bytesFetched += n
	c.mu.Unlock()
}

// IncDecodeError records a container decode failure.
func (c *Collector) IncDecodeError() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.decodeErrors++
	c.mu.Unlock()
}

// --- Orchestrator ---

// IncViewChange records an adopted view-state change.
func (c *Collector) IncViewChange() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.viewChanges++
	c.mu.Unlock()
}

// IncPublishDisplayed records a settled publish carrying data.
func (c *Collector) IncPublishDisplayed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.publishesDisplayed++
	c.mu.Unlock()
}

// IncPublishErrored records a settled publish carrying an error.
func (c *Collector) IncPublishErrored() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.publishesErrored++
	c.mu.Unlock()
}

// IncSuperseded records a fetch result discarded because a newer view
// state had been adopted before it settled.
func (c *Collector) IncSuperseded() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.superseded++
	c.mu.Unlock()
}


// Snapshot returns an immutable copy of all counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		CacheHits:        c.cacheHits,
		CacheJoins:       c.cacheJoins,
		CacheMisses:      c.cacheMisses,
		CacheRetries:     c.cacheRetries,
		CacheClears:      c.cacheClears,
		BlockStoreHits:   c.blockStoreHits,
		BlockStoreMisses: c.blockStoreMisses,

		FetchesStarted:   c.fetchesStarted,
		FetchesSucceeded: c.fetchesSucceeded,
		FetchesFailed:    c.fetchesFailed,
		BytesFetched:     c.bytesFetched,
		DecodeErrors:     c.decodeErrors,

		ViewChanges:        c.viewChanges,
		PublishesDisplayed: c.publishesDisplayed,
		PublishesErrored:   c.publishesErrored,
		Superseded:         c.superseded,

		SessionID: c.sessionID,
		Target:    c.target,
	}
}
