package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/heliodyne/pulseview/types"
)

// BlockDecoder decodes channel records from a block stream one at a time,
// so large datasets do not have to be materialized per record twice. The
// whole-block Decode helpers are built on top of it.
type BlockDecoder struct {
	reader    io.Reader
	kind      types.BlockKind
	header    BlockHeader
	remaining int
	started   bool
}

// NewBlockDecoder creates a decoder reading from r. The fixed header and
// block metadata are not consumed until ReadHeader or the first Next call.
func NewBlockDecoder(r io.Reader) *BlockDecoder {
	return &BlockDecoder{reader: r}
}

// ReadHeader consumes and validates the fixed header and block metadata.
// Calling it more than once is a no-op.
func (d *BlockDecoder) ReadHeader() error {
	if d.started {
		return nil
	}

	var fixed [fixedHeaderSize]byte
	if _, err := io.ReadFull(d.reader, fixed[:]); err != nil {
		return &DecodeError{Kind: ErrTruncated, Msg: "failed to read fixed header", Err: err}
	}

	kind, err := Kind(fixed[:])
	if err != nil {
		return err
	}
	d.kind = kind

	headerLen := binary.BigEndian.Uint32(fixed[6:10])
	if headerLen > MaxHeaderSize {
		return &DecodeError{
			Kind: ErrMalformed,
			Msg:  fmt.Sprintf("header length %d exceeds maximum %d", headerLen, MaxHeaderSize),
		}
	}

	headerBytes := make([]byte, headerLen)
	if _, err := io.ReadFull(d.reader, headerBytes); err != nil {
		return &DecodeError{Kind: ErrTruncated, Msg: "failed to read block header", Err: err}
	}
	if err := decodeMsgpack(headerBytes, &d.header, "block header"); err != nil {
		return err
	}
	if d.header.ChannelCount < 0 || d.header.ChannelCount > MaxChannelCount {
		return &DecodeError{
			Kind: ErrMalformed,
			Msg:  fmt.Sprintf("channel count %d out of range", d.header.ChannelCount),
		}
	}

	d.remaining = d.header.ChannelCount
	d.started = true
	return nil
}

// Kind returns the block content kind. Valid after ReadHeader.
func (d *BlockDecoder) Kind() types.BlockKind { return d.kind }

// Header returns the block metadata. Valid after ReadHeader.
func (d *BlockDecoder) Header() BlockHeader { return d.header }

// Next decodes the next channel record. Returns io.EOF after the last
// declared record has been read.
func (d *BlockDecoder) Next() (*types.ChannelSeries, error) {
	if err := d.ReadHeader(); err != nil {
		return nil, err
	}
	if d.remaining == 0 {
		return nil, io.EOF
	}

	var lenBuf [4]byte
	if _, err := io.ReadFull(d.reader, lenBuf[:]); err != nil {
		return nil, &DecodeError{Kind: ErrTruncated, Msg: "failed to read meta length", Err: err}
	}
	metaLen := binary.BigEndian.Uint32(lenBuf[:])
	if metaLen > MaxHeaderSize {
		return nil, &DecodeError{
			Kind: ErrMalformed,
			Msg:  fmt.Sprintf("meta length %d exceeds maximum %d", metaLen, MaxHeaderSize),
		}
	}

	metaBytes := make([]byte, metaLen)
	if _, err := io.ReadFull(d.reader, metaBytes); err != nil {
		return nil, &DecodeError{Kind: ErrTruncated, Msg: "failed to read channel meta", Err: err}
	}
	var meta types.SeriesMeta
	if err := decodeMsgpack(metaBytes, &meta, "channel meta"); err != nil {
		return nil, err
	}
	if meta.SampleCount < 0 || meta.SampleCount > MaxSampleCount {
		return nil, &DecodeError{
			Kind: ErrMalformed,
			Msg:  fmt.Sprintf("sample count %d out of range", meta.SampleCount),
		}
	}

	if _, err := io.ReadFull(d.reader, lenBuf[:]); err != nil {
		return nil, &DecodeError{Kind: ErrTruncated, Msg: "failed to read payload length", Err: err}
	}
	payloadLen := binary.BigEndian.Uint32(lenBuf[:])
	if payloadLen > MaxRecordSize {
		return nil, &DecodeError{
			Kind: ErrMalformed,
			Msg:  fmt.Sprintf("payload length %d exceeds maximum %d", payloadLen, MaxRecordSize),
		}
	}

	// The payload length is redundant with the declared sample count.
	// Disagreement means the producer is broken; reject rather than guess.
	if int(payloadLen) != meta.SampleCount*sampleSize {
		return nil, &DecodeError{
			Kind: ErrMalformed,
			Msg: fmt.Sprintf("payload length %d disagrees with sample count %d",
				payloadLen, meta.SampleCount),
		}
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(d.reader, payload); err != nil {
		return nil, &DecodeError{Kind: ErrTruncated, Msg: "failed to read sample payload", Err: err}
	}

	samples := make([]types.Sample, meta.SampleCount)
	for i := range samples {
		off := i * sampleSize
		samples[i] = types.Sample{
			Coord: math.Float64frombits(binary.LittleEndian.Uint64(payload[off:])),
			Value: math.Float64frombits(binary.LittleEndian.Uint64(payload[off+8:])),
		}
	}

	d.remaining--
	return &types.ChannelSeries{Meta: meta, Samples: samples}, nil
}

// Decode decodes a whole raw block into a typed dataset. It is
// deterministic: decoding the same block twice yields equal results.
func Decode(block types.RawBlock) (*types.DecodedSeries, error) {
	return DecodeBytes(block.Bytes)
}

// DecodeBytes decodes a whole block from a byte slice.
func DecodeBytes(data []byte) (*types.DecodedSeries, error) {
	d := NewBlockDecoder(bytes.NewReader(data))
	if err := d.ReadHeader(); err != nil {
		return nil, err
	}

	out := &types.DecodedSeries{
		Selector: d.Header().Selector,
		Kind:     d.Kind(),
		Channels: make([]types.ChannelSeries, 0, d.Header().ChannelCount),
	}

	for {
		ch, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		out.Channels = append(out.Channels, *ch)
	}

	return out, nil
}
