package types

import "time"

// BlockFormatVersion is the container format version this release reads
// and writes. Decoders reject any other version.
const BlockFormatVersion = 1

// RecordType discriminates the payload carried by a raw block.
type RecordType string

// Record type constants carried in the block header metadata.
const (
	RecordAmplitudes RecordType = "amplitudes"
	RecordWaveforms  RecordType = "waveforms"
	RecordHistogram  RecordType = "histogram"
)

// BlockKind is the declared content kind of a raw block: format version
// plus record type. Populated from the container header before the payload
// is interpreted.
type BlockKind struct {
	FormatVersion int
	Record        RecordType
}

// RawBlock is an undecoded byte payload plus its declared content kind.
// Immutable once received; consumers must not modify Bytes.
type RawBlock struct {
	Kind  BlockKind
	Bytes []byte
}

// SeriesMeta describes one decoded channel series.
type SeriesMeta struct {
	// ChannelID is the detector channel this series belongs to.
	ChannelID int `msgpack:"channel_id"`
	// Units is the value unit label (e.g. "ADC", "keV", "counts").
	Units string `msgpack:"units"`
	// AcquiredAt is the acquisition start time of the underlying point.
	AcquiredAt time.Time `msgpack:"acquired_at"`
	// SampleCount is the declared number of samples in the payload.
	SampleCount int `msgpack:"sample_count"`
}

// Sample is one (coordinate, value) pair. The coordinate meaning depends on
// the record type: event time for amplitude records, bin center for
// histogram records.
type Sample struct {
	Coord float64
	Value float64
}

// ChannelSeries is the decoded sample sequence for a single channel.
type ChannelSeries struct {
	Meta    SeriesMeta
	Samples []Sample
}

// DecodedSeries is a fully decoded dataset ready for rendering: one series
// per requested channel, in ascending channel order. Owned by the cache
// entry that produced it; read-only once published.
type DecodedSeries struct {
	// Selector is the dataset selector the block was fetched for.
	Selector string
	// Kind echoes the container kind the series was decoded from.
	Kind BlockKind
	// Channels holds one decoded series per channel.
	Channels []ChannelSeries
}

// TotalSamples returns the sample count summed over all channels.
func (d *DecodedSeries) TotalSamples() int {
	n := 0
	for _, ch := range d.Channels {
		n += len(ch.Samples)
	}
	return n
}

// Channel returns the series for the given channel id, or nil.
func (d *DecodedSeries) Channel(id int) *ChannelSeries {
	for i := range d.Channels {
		if d.Channels[i].Meta.ChannelID == id {
			return &d.Channels[i]
		}
	}
	return nil
}
