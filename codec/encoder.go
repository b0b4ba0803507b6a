package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/heliodyne/pulseview/types"
)

// Encode serializes a decoded dataset back into container form. Encoding
// exists for round-trip verification and local block caching; the viewer
// never writes blocks back to the server.
func Encode(series *types.DecodedSeries) (types.RawBlock, error) {
	wire, ok := recordTypeToWire(series.Kind.Record)
	if !ok {
		return types.RawBlock{}, fmt.Errorf("encode: unknown record type %q", series.Kind.Record)
	}

	header := BlockHeader{
		Selector:     series.Selector,
		ChannelCount: len(series.Channels),
	}
	headerBytes, err := msgpack.Marshal(&header)
	if err != nil {
		return types.RawBlock{}, fmt.Errorf("encode: marshal block header: %w", err)
	}

	var buf bytes.Buffer
	buf.Write(Magic[:])
	buf.WriteByte(types.BlockFormatVersion)
	buf.WriteByte(wire)

	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(headerBytes)))
	buf.Write(lenBuf[:])
	buf.Write(headerBytes)

	for i := range series.Channels {
		ch := &series.Channels[i]

		meta := ch.Meta
		meta.SampleCount = len(ch.Samples)

		metaBytes, err := msgpack.Marshal(&meta)
		if err != nil {
			return types.RawBlock{}, fmt.Errorf("encode: marshal channel meta: %w", err)
		}

		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(metaBytes)))
		buf.Write(lenBuf[:])
		buf.Write(metaBytes)

		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(ch.Samples)*sampleSize))
		buf.Write(lenBuf[:])

		var sampleBuf [sampleSize]byte
		for _, s := range ch.Samples {
			binary.LittleEndian.PutUint64(sampleBuf[:8], math.Float64bits(s.Coord))
			binary.LittleEndian.PutUint64(sampleBuf[8:], math.Float64bits(s.Value))
			buf.Write(sampleBuf[:])
		}
	}

	return types.RawBlock{
		Kind:  types.BlockKind{FormatVersion: types.BlockFormatVersion, Record: series.Kind.Record},
		Bytes: buf.Bytes(),
	}, nil
}
