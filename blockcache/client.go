package blockcache

import (
	"context"
	"errors"
	"time"

	"github.com/heliodyne/pulseview/log"
	"github.com/heliodyne/pulseview/metrics"
	"github.com/heliodyne/pulseview/remote"
	"github.com/heliodyne/pulseview/types"
)

// CachingClient layers a persistent block store in front of a remote
// client. Fetch serves from the store when the entry is still fresh
// against the dataset's server-side modification time; otherwise it goes
// to the remote client and stores the result.
//
// When the freshness check itself fails (server unreachable), a stored
// entry is served anyway so previously viewed data stays available
// offline.
type CachingClient struct {
	inner     remote.Client
	store     Store
	logger    *log.Logger
	collector *metrics.Collector
}

// NewCachingClient wraps inner with the given store. logger and collector
// may be nil.
func NewCachingClient(inner remote.Client, store Store, logger *log.Logger, collector *metrics.Collector) *CachingClient {
	if logger == nil {
		logger = log.Nop()
	}
	return &CachingClient{
		inner:     inner,
		store:     store,
		logger:    logger,
		collector: collector,
	}
}

// Fetch serves from the store or falls through to the remote client.
func (c *CachingClient) Fetch(ctx context.Context, req remote.Request) (types.RawBlock, error) {
	fp := req.Fingerprint()

	entry, err := c.store.Get(ctx, fp)
	switch {
	case err == nil:
		if c.fresh(ctx, req.Selector, entry.StoredAt) {
			c.collector.IncBlockStoreHit()
			c.logger.Debug("block served from store", map[string]any{
				"fingerprint": fp.Short(),
				"selector":    req.Selector,
			})
			return entry.Block, nil
		}
		// Stale entry; drop it and refetch.
		if err := c.store.Delete(ctx, fp); err != nil {
			c.logger.Warn("stale entry delete failed", map[string]any{
				"fingerprint": fp.Short(),
				"error":       err.Error(),
			})
		}
	case errors.Is(err, ErrNotFound):
		// Fall through to the remote fetch.
	default:
		c.logger.Warn("block store read failed", map[string]any{
			"fingerprint": fp.Short(),
			"error":       err.Error(),
		})
	}
	c.collector.IncBlockStoreMiss()

	block, err := c.inner.Fetch(ctx, req)
	if err != nil {
		// Serve a stale entry rather than nothing when the server is gone.
		if entry != nil {
			var te *remote.TransportError
			if errors.As(err, &te) && te.Kind != remote.ErrServerRejected {
				c.logger.Warn("serving stale entry, server unreachable", map[string]any{
					"fingerprint": fp.Short(),
					"selector":    req.Selector,
				})
				return entry.Block, nil
			}
		}
		return types.RawBlock{}, err
	}

	if err := c.store.Put(ctx, fp, block); err != nil {
		c.logger.Warn("block store write failed", map[string]any{
			"fingerprint": fp.Short(),
			"error":       err.Error(),
		})
	}
	return block, nil
}

// ModifiedTime delegates to the remote client.
func (c *CachingClient) ModifiedTime(ctx context.Context, selector string) (time.Time, error) {
	return c.inner.ModifiedTime(ctx, selector)
}

// fresh reports whether an entry stored at storedAt is still current for
// the dataset. An unreachable freshness endpoint counts as fresh so cached
// data remains viewable offline.
func (c *CachingClient) fresh(ctx context.Context, selector string, storedAt time.Time) bool {
	modified, err := c.inner.ModifiedTime(ctx, selector)
	if err != nil {
		c.logger.Debug("freshness check unavailable", map[string]any{
			"selector": selector,
			"error":    err.Error(),
		})
		return true
	}
	return !modified.After(storedAt)
}

var _ remote.Client = (*CachingClient)(nil)
