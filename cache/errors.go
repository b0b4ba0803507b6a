package cache

import (
	"context"
	"errors"

	"github.com/heliodyne/pulseview/codec"
	"github.com/heliodyne/pulseview/remote"
	"github.com/heliodyne/pulseview/viewstate"
)

// ErrorKind classifies a fetch failure for display and log routing. It is
// derived from the typed errors of the layers below; callers switch on the
// kind instead of unwrapping package-specific error types themselves.
type ErrorKind string

const (
	// KindTransport covers remote failures: unreachable server, timeout,
	// or an explicit rejection.
	KindTransport ErrorKind = "transport"
	// KindDecode covers malformed, truncated, or unsupported block data.
	KindDecode ErrorKind = "decode"
	// KindConfig covers invalid view parameters.
	KindConfig ErrorKind = "config"
	// KindCanceled covers context cancellation and shutdown.
	KindCanceled ErrorKind = "canceled"
	// KindInternal covers everything else.
	KindInternal ErrorKind = "internal"
)

// Classify maps an error from a fetch pipeline to its kind. Nil maps to the
// empty kind.
func Classify(err error) ErrorKind {
	if err == nil {
		return ""
	}
	// Transport errors may wrap context.DeadlineExceeded, so check the
	// typed error before the bare context sentinels.
	var te *remote.TransportError
	if errors.As(err, &te) {
		return KindTransport
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	var de *codec.DecodeError
	if errors.As(err, &de) {
		return KindDecode
	}
	if errors.Is(err, viewstate.ErrInvalidValue) {
		return KindConfig
	}
	return KindInternal
}
