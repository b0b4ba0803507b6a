package metrics

import (
	"sync"
	"testing"
)

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	c.IncCacheHit()
	c.IncFetchStarted()
	c.AddBytesFetched(100)
	if snap := c.Snapshot(); snap.CacheHits != 0 {
		t.Fatalf("nil collector snapshot not empty: %+v", snap)
	}
}

func TestCollector_Counters(t *testing.T) {
	c := NewCollector("sess-1", "native")

	c.IncCacheMiss()
	c.IncFetchStarted()
	c.IncFetchSucceeded()
	c.AddBytesFetched(2048)
	c.IncCacheHit()
	c.IncCacheHit()
	c.IncSuperseded()

	snap := c.Snapshot()
	if snap.CacheMisses != 1 || snap.CacheHits != 2 {
		t.Errorf("cache counters = %d/%d, want 1/2", snap.CacheMisses, snap.CacheHits)
	}
	if snap.FetchesStarted != 1 || snap.FetchesSucceeded != 1 {
		t.Errorf("fetch counters = %d/%d", snap.FetchesStarted, snap.FetchesSucceeded)
	}
	if snap.BytesFetched != 2048 {
		t.Errorf("bytes = %d, want 2048", snap.BytesFetched)
	}
	if snap.Superseded != 1 {
		t.Errorf("superseded = %d, want 1", snap.Superseded)
	}
	if snap.SessionID != "sess-1" || snap.Target != "native" {
		t.Errorf("dimensions = %q/%q", snap.SessionID, snap.Target)
	}
}

func TestCollector_ConcurrentIncrements(t *testing.T) {
	c := NewCollector("sess-1", "native")

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.IncCacheHit()
		}()
	}
	wg.Wait()

	if got := c.Snapshot().CacheHits; got != 50 {
		t.Fatalf("hits = %d, want 50", got)
	}
}
