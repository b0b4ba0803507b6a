package blockcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/heliodyne/pulseview/codec"
	"github.com/heliodyne/pulseview/iox"
	"github.com/heliodyne/pulseview/remote"
	"github.com/heliodyne/pulseview/types"
)

func testBlock(t *testing.T, selector string) types.RawBlock {
	t.Helper()
	series := &types.DecodedSeries{
		Selector: selector,
		Kind:     types.BlockKind{FormatVersion: types.BlockFormatVersion, Record: types.RecordAmplitudes},
		Channels: []types.ChannelSeries{
			{
				Meta:    types.SeriesMeta{ChannelID: 0, SampleCount: 2},
				Samples: []types.Sample{{Coord: 10, Value: 1.5}, {Coord: 20, Value: 2.5}},
			},
		},
	}
	block, err := codec.Encode(series)
	if err != nil {
		t.Fatalf("encode test block: %v", err)
	}
	return block
}

func testFP(dataset string) types.Fingerprint {
	v := types.DefaultViewState()
	v.Dataset = dataset
	return v.Fingerprint()
}

func TestFSStoreRoundTrip(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	block := testBlock(t, "run-1")
	fp := testFP("run-1")

	if _, err := store.Get(t.Context(), fp); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get before Put: %v, want ErrNotFound", err)
	}

	if err := store.Put(t.Context(), fp, block); err != nil {
		t.Fatalf("Put: %v", err)
	}
	entry, err := store.Get(t.Context(), fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry.Block.Kind != block.Kind {
		t.Fatalf("kind = %+v, want %+v", entry.Block.Kind, block.Kind)
	}
	if string(entry.Block.Bytes) != string(block.Bytes) {
		t.Fatal("stored bytes differ from original")
	}
	if entry.StoredAt.IsZero() {
		t.Fatal("StoredAt not set")
	}

	if err := store.Delete(t.Context(), fp); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(t.Context(), fp); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete: %v, want ErrNotFound", err)
	}
	// Deleting again is not an error.
	if err := store.Delete(t.Context(), fp); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestFSStoreClear(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	block := testBlock(t, "run-8")
	for _, ds := range []string{"run-8", "run-9"} {
		if err := store.Put(t.Context(), testFP(ds), block); err != nil {
			t.Fatalf("Put %s: %v", ds, err)
		}
	}
	if err := store.Clear(t.Context()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := store.Get(t.Context(), testFP("run-8")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Clear: %v, want ErrNotFound", err)
	}
	// The directory itself survives so the store stays usable.
	if err := store.Put(t.Context(), testFP("run-8"), block); err != nil {
		t.Fatalf("Put after Clear: %v", err)
	}
}

func TestRedisStoreClear(t *testing.T) {
	srv := miniredis.RunT(t)
	store, err := NewRedisStore(RedisConfig{URL: "redis://" + srv.Addr()})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(iox.CloseFunc(store))

	block := testBlock(t, "run-8")
	for _, ds := range []string{"run-8", "run-9"} {
		if err := store.Put(t.Context(), testFP(ds), block); err != nil {
			t.Fatalf("Put %s: %v", ds, err)
		}
	}
	if err := store.Clear(t.Context()); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, err := store.Get(t.Context(), testFP("run-9")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Clear: %v, want ErrNotFound", err)
	}
}

func TestFSStoreRequiresDirectory(t *testing.T) {
	if _, err := NewFSStore(""); err == nil {
		t.Fatal("expected an error for empty cache directory")
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	store, err := NewRedisStore(RedisConfig{URL: "redis://" + srv.Addr()})
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	t.Cleanup(iox.CloseFunc(store))

	block := testBlock(t, "run-2")
	fp := testFP("run-2")

	if _, err := store.Get(t.Context(), fp); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get before Put: %v, want ErrNotFound", err)
	}

	if err := store.Put(t.Context(), fp, block); err != nil {
		t.Fatalf("Put: %v", err)
	}
	entry, err := store.Get(t.Context(), fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if entry.Block.Kind != block.Kind {
		t.Fatalf("kind = %+v, want %+v", entry.Block.Kind, block.Kind)
	}
	if string(entry.Block.Bytes) != string(block.Bytes) {
		t.Fatal("stored bytes differ from original")
	}

	if err := store.Delete(t.Context(), fp); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(t.Context(), fp); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete: %v, want ErrNotFound", err)
	}
}

func TestRedisStoreRejectsBadConfig(t *testing.T) {
	if _, err := NewRedisStore(RedisConfig{}); err == nil {
		t.Fatal("expected an error for missing URL")
	}
	if _, err := NewRedisStore(RedisConfig{URL: "://nope"}); err == nil {
		t.Fatal("expected an error for invalid URL")
	}
}

// fakeRemote counts fetches and lets tests control the reported
// modification time.
type fakeRemote struct {
	block    types.RawBlock
	fetchErr error
	modified time.Time
	modErr   error
	fetches  int
}

func (f *fakeRemote) Fetch(ctx context.Context, req remote.Request) (types.RawBlock, error) {
	f.fetches++
	if f.fetchErr != nil {
		return types.RawBlock{}, f.fetchErr
	}
	return f.block, nil
}

func (f *fakeRemote) ModifiedTime(ctx context.Context, selector string) (time.Time, error) {
	return f.modified, f.modErr
}

func TestCachingClientServesFreshEntry(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	block := testBlock(t, "run-3")
	fake := &fakeRemote{block: block, modified: time.Now().Add(-time.Hour)}
	client := NewCachingClient(fake, store, nil, nil)

	req := remote.Request{Selector: "run-3", Channels: []int{0}}

	got, err := client.Fetch(t.Context(), req)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if string(got.Bytes) != string(block.Bytes) {
		t.Fatal("first fetch returned wrong bytes")
	}
	if fake.fetches != 1 {
		t.Fatalf("remote fetched %d times, want 1", fake.fetches)
	}

	// Second fetch is served from the store; the dataset has not been
	// modified since the entry was written.
	if _, err := client.Fetch(t.Context(), req); err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if fake.fetches != 1 {
		t.Fatalf("remote fetched %d times, want 1", fake.fetches)
	}
}

func TestCachingClientRefetchesStaleEntry(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	block := testBlock(t, "run-4")
	fake := &fakeRemote{block: block, modified: time.Now().Add(-time.Hour)}
	client := NewCachingClient(fake, store, nil, nil)

	req := remote.Request{Selector: "run-4", Channels: []int{0}}
	if _, err := client.Fetch(t.Context(), req); err != nil {
		t.Fatalf("prime fetch: %v", err)
	}

	// The dataset was modified after the entry was stored.
	fake.modified = time.Now().Add(time.Hour)
	if _, err := client.Fetch(t.Context(), req); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if fake.fetches != 2 {
		t.Fatalf("remote fetched %d times, want 2", fake.fetches)
	}
}

func TestCachingClientServesStaleWhenUnreachable(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	block := testBlock(t, "run-5")
	fake := &fakeRemote{block: block, modified: time.Now().Add(-time.Hour)}
	client := NewCachingClient(fake, store, nil, nil)

	req := remote.Request{Selector: "run-5", Channels: []int{0}}
	if _, err := client.Fetch(t.Context(), req); err != nil {
		t.Fatalf("prime fetch: %v", err)
	}

	// Server goes away; the stale entry is still served.
	fake.modified = time.Now().Add(time.Hour)
	fake.fetchErr = &remote.TransportError{Kind: remote.ErrUnreachable, Op: "fetch", Target: "http://example"}
	got, err := client.Fetch(t.Context(), req)
	if err != nil {
		t.Fatalf("offline fetch: %v", err)
	}
	if string(got.Bytes) != string(block.Bytes) {
		t.Fatal("offline fetch returned wrong bytes")
	}
}

func TestCachingClientPropagatesRejection(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFSStore: %v", err)
	}
	fake := &fakeRemote{
		fetchErr: &remote.TransportError{Kind: remote.ErrServerRejected, Op: "fetch", Status: 404},
	}
	client := NewCachingClient(fake, store, nil, nil)

	_, err = client.Fetch(t.Context(), remote.Request{Selector: "run-6"})
	if te, ok := remote.IsTransportError(err); !ok || te.Kind != remote.ErrServerRejected {
		t.Fatalf("error = %v, want server rejection", err)
	}
}
