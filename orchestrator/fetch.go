package orchestrator

import (
	"context"

	"github.com/heliodyne/pulseview/cache"
	"github.com/heliodyne/pulseview/codec"
	"github.com/heliodyne/pulseview/metrics"
	"github.com/heliodyne/pulseview/remote"
	"github.com/heliodyne/pulseview/types"
)

// FetchPipeline builds the standard fetch factory: one remote request per
// view followed by a container decode. collector may be nil. Byte
// accounting happens inside the client, not here.
func FetchPipeline(client remote.Client, collector *metrics.Collector) FetchFactory {
	return func(view types.ViewState) cache.FetchFunc {
		req := remote.RequestFromView(view)
		return func(ctx context.Context) (*types.DecodedSeries, error) {
			block, err := client.Fetch(ctx, req)
			if err != nil {
				return nil, err
			}

			series, err := codec.Decode(block)
			if err != nil {
				collector.IncDecodeError()
				return nil, err
			}
			return series, nil
		}
	}
}
