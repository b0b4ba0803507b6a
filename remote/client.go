// Package remote issues byte-oriented requests to the external processing
// server and returns raw, undecoded blocks.
//
// Two backends exist: an HTTP client for live processing servers and an S3
// client for archived runs in object storage. Both perform a single logical
// request per call, support context cancellation, and surface failures as
// *TransportError without retrying.
package remote

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/heliodyne/pulseview/types"
)

// Request is the fetch-relevant subset of a view state: everything that
// identifies the bytes to retrieve, nothing about how they are displayed.
type Request struct {
	// Selector is the dataset selector (acquisition run path).
	Selector string
	// FromNs and ToNs bound the requested window; ToNs == 0 means end of run.
	FromNs int64
	ToNs   int64
	// Channels is the requested channel set.
	Channels []int
	// Options are the decode parameters applied server-side.
	Options types.DecodeOptions
}

// RequestFromView extracts the fetch request from a view state.
func RequestFromView(v types.ViewState) Request {
	return Request{
		Selector: v.Dataset,
		FromNs:   v.FromNs,
		ToNs:     v.ToNs,
		Channels: v.Channels,
		Options:  v.Options,
	}
}

// Fingerprint derives the cache key identifying this request's bytes. It
// matches the fingerprint of any view state the request was extracted from.
func (r Request) Fingerprint() types.Fingerprint {
	v := types.ViewState{
		Dataset:  r.Selector,
		FromNs:   r.FromNs,
		ToNs:     r.ToNs,
		Channels: r.Channels,
		Options:  r.Options,
	}
	return v.Fingerprint()
}

// Client retrieves raw blocks from a data source.
type Client interface {
	// Fetch performs one logical request and returns the raw block bytes
	// with their declared content kind. No retry is attempted.
	Fetch(ctx context.Context, req Request) (types.RawBlock, error)

	// ModifiedTime reports the server-side modification time of the
	// dataset, used for persistent-cache freshness checks.
	ModifiedTime(ctx context.Context, selector string) (time.Time, error)
}

// channelList renders the channel set as the comma-separated wire form
// shared with the view-state encoding.
func channelList(channels []int) string {
	parts := make([]string, len(channels))
	for i, ch := range channels {
		parts[i] = strconv.Itoa(ch)
	}
	return strings.Join(parts, ",")
}
