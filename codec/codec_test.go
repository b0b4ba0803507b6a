package codec

import (
	"bytes"
	"encoding/binary"
	"io"
	"slices"
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/heliodyne/pulseview/types"
)

func sampleSeries() *types.DecodedSeries {
	acquired := time.Date(2024, 11, 3, 14, 30, 0, 0, time.UTC)
	return &types.DecodedSeries{
		Selector: "/2024_11/Tritium_2/set_1/p0",
		Kind:     types.BlockKind{FormatVersion: types.BlockFormatVersion, Record: types.RecordAmplitudes},
		Channels: []types.ChannelSeries{
			{
				Meta: types.SeriesMeta{ChannelID: 1, Units: "keV", AcquiredAt: acquired},
				Samples: []types.Sample{
					{Coord: 0.5, Value: 12.25},
					{Coord: 1.5, Value: 13.5},
					{Coord: 2.5, Value: 0.125},
				},
			},
			{
				Meta:    types.SeriesMeta{ChannelID: 4, Units: "keV", AcquiredAt: acquired},
				Samples: []types.Sample{{Coord: 0.5, Value: 99.0}},
			},
		},
	}
}

func mustEncode(t *testing.T, series *types.DecodedSeries) types.RawBlock {
	t.Helper()
	block, err := Encode(series)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return block
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	in := sampleSeries()
	block := mustEncode(t, in)

	out, err := Decode(block)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if out.Selector != in.Selector {
		t.Errorf("selector = %q, want %q", out.Selector, in.Selector)
	}
	if out.Kind != in.Kind {
		t.Errorf("kind = %+v, want %+v", out.Kind, in.Kind)
	}
	if len(out.Channels) != len(in.Channels) {
		t.Fatalf("channel count = %d, want %d", len(out.Channels), len(in.Channels))
	}
	for i := range in.Channels {
		want, got := in.Channels[i], out.Channels[i]
		if got.Meta.ChannelID != want.Meta.ChannelID || got.Meta.Units != want.Meta.Units {
			t.Errorf("channel %d meta = %+v, want %+v", i, got.Meta, want.Meta)
		}
		if !got.Meta.AcquiredAt.Equal(want.Meta.AcquiredAt) {
			t.Errorf("channel %d acquired_at = %v, want %v", i, got.Meta.AcquiredAt, want.Meta.AcquiredAt)
		}
		if !slices.Equal(got.Samples, want.Samples) {
			t.Errorf("channel %d samples differ", i)
		}
	}
}

func TestDecode_Deterministic(t *testing.T) {
	block := mustEncode(t, sampleSeries())

	first, err := Decode(block)
	if err != nil {
		t.Fatalf("first Decode failed: %v", err)
	}
	second, err := Decode(block)
	if err != nil {
		t.Fatalf("second Decode failed: %v", err)
	}

	if first.Selector != second.Selector || len(first.Channels) != len(second.Channels) {
		t.Fatalf("repeated decode disagrees")
	}
	for i := range first.Channels {
		if !slices.Equal(first.Channels[i].Samples, second.Channels[i].Samples) {
			t.Fatalf("repeated decode produced different samples for channel %d", i)
		}
	}
}

func TestDecode_BadMagic(t *testing.T) {
	block := mustEncode(t, sampleSeries())
	data := bytes.Clone(block.Bytes)
	copy(data, []byte("NOPE"))

	_, err := DecodeBytes(data)
	if !IsKind(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want unsupported_format", err)
	}
}

func TestDecode_UnsupportedVersion(t *testing.T) {
	block := mustEncode(t, sampleSeries())
	data := bytes.Clone(block.Bytes)
	data[4] = 99

	_, err := DecodeBytes(data)
	if !IsKind(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want unsupported_format", err)
	}
}

func TestDecode_UnknownRecordType(t *testing.T) {
	block := mustEncode(t, sampleSeries())
	data := bytes.Clone(block.Bytes)
	data[5] = 0xEE

	_, err := DecodeBytes(data)
	if !IsKind(err, ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want unsupported_format", err)
	}
}

func TestDecode_TruncatedPayload(t *testing.T) {
	block := mustEncode(t, sampleSeries())

	// Cut the stream mid-payload: valid header, declared length larger
	// than what remains.
	data := block.Bytes[:len(block.Bytes)-9]

	_, err := DecodeBytes(data)
	if !IsKind(err, ErrTruncated) {
		t.Fatalf("err = %v, want truncated", err)
	}
}

func TestDecode_TruncatedHeader(t *testing.T) {
	block := mustEncode(t, sampleSeries())

	_, err := DecodeBytes(block.Bytes[:7])
	if !IsKind(err, ErrTruncated) {
		t.Fatalf("err = %v, want truncated", err)
	}
}

func TestDecode_PayloadLengthDisagreement(t *testing.T) {
	// Hand-build a block whose payload length prefix disagrees with the
	// declared sample count.
	series := &types.DecodedSeries{
		Selector: "/p0",
		Kind:     types.BlockKind{FormatVersion: types.BlockFormatVersion, Record: types.RecordAmplitudes},
		Channels: []types.ChannelSeries{
			{
				Meta:    types.SeriesMeta{ChannelID: 0},
				Samples: []types.Sample{{Coord: 1, Value: 2}},
			},
		},
	}
	block := mustEncode(t, series)
	data := bytes.Clone(block.Bytes)

	// The payload length prefix is the last uint32 before the 16-byte
	// sample payload.
	off := len(data) - sampleSize - 4
	binary.BigEndian.PutUint32(data[off:], sampleSize*2)

	_, err := DecodeBytes(data)
	if !IsKind(err, ErrMalformed) {
		t.Fatalf("err = %v, want malformed", err)
	}
}

// rawBlockFrame assembles a fixed header plus headerBody and any channel
// record bytes into one block stream, bypassing Encode's validation.
func rawBlockFrame(t *testing.T, headerBody []byte, records ...[]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(Magic[:])
	buf.WriteByte(byte(types.BlockFormatVersion))
	buf.WriteByte(recordAmplitudes)

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(headerBody)))
	buf.Write(lenBuf[:])
	buf.Write(headerBody)
	for _, r := range records {
		buf.Write(r)
	}
	return buf.Bytes()
}

func TestDecode_ChannelCountOutOfRange(t *testing.T) {
	headerBody, err := msgpack.Marshal(BlockHeader{Selector: "/p0", ChannelCount: 1 << 60})
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}

	_, err = DecodeBytes(rawBlockFrame(t, headerBody))
	if !IsKind(err, ErrMalformed) {
		t.Fatalf("err = %v, want malformed", err)
	}
}

func TestDecode_SampleCountOutOfRange(t *testing.T) {
	headerBody, err := msgpack.Marshal(BlockHeader{Selector: "/p0", ChannelCount: 1})
	if err != nil {
		t.Fatalf("marshal header: %v", err)
	}
	metaBody, err := msgpack.Marshal(types.SeriesMeta{ChannelID: 0, SampleCount: 1 << 60})
	if err != nil {
		t.Fatalf("marshal meta: %v", err)
	}

	// A declared payload length of zero matches the sample count times the
	// sample size once the product wraps; the count must be rejected on
	// its own before that comparison.
	var record bytes.Buffer
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(metaBody)))
	record.Write(lenBuf[:])
	record.Write(metaBody)
	binary.BigEndian.PutUint32(lenBuf[:], 0)
	record.Write(lenBuf[:])

	_, err = DecodeBytes(rawBlockFrame(t, headerBody, record.Bytes()))
	if !IsKind(err, ErrMalformed) {
		t.Fatalf("err = %v, want malformed", err)
	}
}

func TestBlockDecoder_Streaming(t *testing.T) {
	block := mustEncode(t, sampleSeries())
	d := NewBlockDecoder(bytes.NewReader(block.Bytes))

	if err := d.ReadHeader(); err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}
	if d.Header().ChannelCount != 2 {
		t.Fatalf("channel count = %d, want 2", d.Header().ChannelCount)
	}

	var got []int
	for {
		ch, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		got = append(got, ch.Meta.ChannelID)
	}

	if !slices.Equal(got, []int{1, 4}) {
		t.Fatalf("streamed channels = %v, want [1 4]", got)
	}
}

func TestKind_Probe(t *testing.T) {
	block := mustEncode(t, sampleSeries())

	kind, err := Kind(block.Bytes)
	if err != nil {
		t.Fatalf("Kind failed: %v", err)
	}
	if kind.Record != types.RecordAmplitudes || kind.FormatVersion != types.BlockFormatVersion {
		t.Fatalf("kind = %+v", kind)
	}
}
