// Package codec implements the self-describing binary container format for
// detector datasets.
//
// A block is laid out as:
//
//	magic        [4]byte "PVBK"
//	version      uint8
//	record type  uint8
//	header len   uint32 big-endian
//	header       msgpack BlockHeader
//	repeated channel records:
//	  meta len     uint32 big-endian
//	  meta         msgpack types.SeriesMeta
//	  payload len  uint32 big-endian
//	  payload      sample_count little-endian float64 (coord, value) pairs
//
// All integer prefixes are big-endian; sample payloads are little-endian.
// Unknown magic or version is rejected before any payload byte is
// interpreted. Inputs shorter than a declared length are rejected as
// truncated, never zero-filled, and declared lengths and counts are
// checked against the size limits below before anything is allocated.
package codec

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/heliodyne/pulseview/types"
)

// Magic identifies a pulseview block container.
var Magic = [4]byte{'P', 'V', 'B', 'K'}

// Size limits. A header or channel record above these limits is rejected
// as malformed before allocation.
const (
	// MaxHeaderSize bounds the block header metadata.
	MaxHeaderSize = 1 * 1024 * 1024
	// MaxRecordSize bounds a single channel record payload (64 MiB).
	MaxRecordSize = 64 * 1024 * 1024
	// MaxChannelCount bounds the declared channel record count. Detector
	// boards top out at a few dozen channels per block.
	MaxChannelCount = 1 << 16
	// MaxSampleCount bounds the declared per-channel sample count so the
	// byte-length product cannot overflow.
	MaxSampleCount = MaxRecordSize / sampleSize
	// fixedHeaderSize is magic + version + record type + header length.
	fixedHeaderSize = 4 + 1 + 1 + 4
	// sampleSize is one little-endian (coord, value) float64 pair.
	sampleSize = 16
)

// Record type wire values.
const (
	recordAmplitudes = 1
	recordWaveforms  = 2
	recordHistogram  = 3
)

// BlockHeader is the block-level metadata carried after the fixed header.
type BlockHeader struct {
	// Selector is the dataset selector this block was produced for.
	Selector string `msgpack:"selector"`
	// ChannelCount is the number of channel records that follow.
	ChannelCount int `msgpack:"channel_count"`
}

func recordTypeToWire(r types.RecordType) (byte, bool) {
	switch r {
	case types.RecordAmplitudes:
		return recordAmplitudes, true
	case types.RecordWaveforms:
		return recordWaveforms, true
	case types.RecordHistogram:
		return recordHistogram, true
	default:
		return 0, false
	}
}

func recordTypeFromWire(b byte) (types.RecordType, bool) {
	switch b {
	case recordAmplitudes:
		return types.RecordAmplitudes, true
	case recordWaveforms:
		return types.RecordWaveforms, true
	case recordHistogram:
		return types.RecordHistogram, true
	default:
		return "", false
	}
}

// Kind probes the fixed header of data and returns the declared content
// kind without decoding any payload. Used to tag a RawBlock on receipt.
func Kind(data []byte) (types.BlockKind, error) {
	if len(data) < fixedHeaderSize {
		return types.BlockKind{}, &DecodeError{Kind: ErrTruncated, Msg: "input shorter than fixed header"}
	}
	if [4]byte(data[:4]) != Magic {
		return types.BlockKind{}, &DecodeError{Kind: ErrUnsupportedFormat, Msg: "bad magic"}
	}
	version := int(data[4])
	if version != types.BlockFormatVersion {
		return types.BlockKind{}, &DecodeError{
			Kind: ErrUnsupportedFormat,
			Msg:  "unsupported format version",
		}
	}
	record, ok := recordTypeFromWire(data[5])
	if !ok {
		return types.BlockKind{}, &DecodeError{Kind: ErrUnsupportedFormat, Msg: "unknown record type"}
	}
	return types.BlockKind{FormatVersion: version, Record: record}, nil
}

func decodeMsgpack(payload []byte, v any, what string) error {
	if err := msgpack.Unmarshal(payload, v); err != nil {
		return &DecodeError{Kind: ErrMalformed, Msg: "failed to decode " + what, Err: err}
	}
	return nil
}
