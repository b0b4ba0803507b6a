package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/heliodyne/pulseview/codec"
	"github.com/heliodyne/pulseview/metrics"
	"github.com/heliodyne/pulseview/remote"
	"github.com/heliodyne/pulseview/types"
)

type staticClient struct {
	block types.RawBlock
	err   error
}

func (s *staticClient) Fetch(ctx context.Context, req remote.Request) (types.RawBlock, error) {
	if s.err != nil {
		return types.RawBlock{}, s.err
	}
	return s.block, nil
}

func (s *staticClient) ModifiedTime(ctx context.Context, selector string) (time.Time, error) {
	return time.Time{}, nil
}

func TestFetchPipelineDecodesBlock(t *testing.T) {
	series := &types.DecodedSeries{
		Selector: "run-1",
		Kind:     types.BlockKind{FormatVersion: types.BlockFormatVersion, Record: types.RecordHistogram},
		Channels: []types.ChannelSeries{
			{
				Meta:    types.SeriesMeta{ChannelID: 1, SampleCount: 1},
				Samples: []types.Sample{{Coord: 5, Value: 9}},
			},
		},
	}
	block, err := codec.Encode(series)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	collector := metrics.NewCollector("s", "native")
	factory := FetchPipeline(&staticClient{block: block}, collector)

	got, err := factory(viewFor("run-1"))(t.Context())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Selector != "run-1" || len(got.Channels) != 1 {
		t.Fatalf("decoded = %+v", got)
	}
	// The client owns byte accounting; a client that counts nothing must
	// leave the counter at zero, or real clients would count twice.
	if snap := collector.Snapshot(); snap.BytesFetched != 0 {
		t.Fatalf("BytesFetched = %d, want 0", snap.BytesFetched)
	}
}

func TestFetchPipelineCountsDecodeErrors(t *testing.T) {
	bad := types.RawBlock{
		Kind:  types.BlockKind{FormatVersion: types.BlockFormatVersion, Record: types.RecordHistogram},
		Bytes: []byte("not a container"),
	}
	collector := metrics.NewCollector("s", "native")
	factory := FetchPipeline(&staticClient{block: bad}, collector)

	_, err := factory(viewFor("run-2"))(t.Context())
	if _, ok := codec.IsDecodeError(err); !ok {
		t.Fatalf("err = %v, want decode error", err)
	}
	if snap := collector.Snapshot(); snap.DecodeErrors != 1 {
		t.Fatalf("DecodeErrors = %d, want 1", snap.DecodeErrors)
	}
}
