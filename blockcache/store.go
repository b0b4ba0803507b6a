// Package blockcache persists raw blocks between sessions so previously
// viewed datasets render without a round trip to the processing server.
//
// It is a second-level cache below the in-memory series cache: entries are
// raw container bytes keyed by request fingerprint, validated against the
// server-reported dataset modification time before reuse. Two backends
// exist, a local directory for single-machine use and Redis for shared
// deployments.
package blockcache

import (
	"context"
	"errors"
	"time"

	"github.com/heliodyne/pulseview/types"
)

// ErrNotFound indicates no entry exists for the fingerprint.
var ErrNotFound = errors.New("blockcache: entry not found")

// Entry is one persisted block plus the time it was stored. StoredAt is
// compared against the dataset's server-side modification time to detect
// stale entries.
type Entry struct {
	Block    types.RawBlock
	StoredAt time.Time
}

// Store persists raw blocks keyed by fingerprint. Implementations are safe
// for concurrent use.
type Store interface {
	// Get returns the entry for fp, or ErrNotFound.
	Get(ctx context.Context, fp types.Fingerprint) (*Entry, error)

	// Put stores the block under fp, overwriting any previous entry.
	Put(ctx context.Context, fp types.Fingerprint, block types.RawBlock) error

	// Delete removes the entry for fp. Deleting an absent entry is not an
	// error.
	Delete(ctx context.Context, fp types.Fingerprint) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by stores that can drop all entries at once.
type Clearer interface {
	Clear(ctx context.Context) error
}
