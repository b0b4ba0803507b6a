// Package types defines the core data model shared by every pulseview
// component: view state, decoded series, raw blocks, and request
// fingerprints. It is a leaf package with no internal dependencies.
package types

import (
	"fmt"
	"slices"
)

// PlotMode selects how decoded series are presented.
type PlotMode string

// Plot mode constants. The string values are part of the shareable
// view-state encoding and must not change once published.
const (
	PlotHistogram PlotMode = "hist"
	PlotSeries    PlotMode = "series"
	PlotSpectrum  PlotMode = "spectrum"
)

// Valid returns true for a known plot mode.
func (m PlotMode) Valid() bool {
	return m == PlotHistogram || m == PlotSeries || m == PlotSpectrum
}

// ParsePlotMode parses the wire form of a plot mode.
func ParsePlotMode(s string) (PlotMode, error) {
	m := PlotMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("invalid plot mode %q (want hist, series, or spectrum)", s)
	}
	return m, nil
}

// ScaleMode selects the value-axis scale.
type ScaleMode string

// Scale mode constants, part of the view-state encoding.
const (
	ScaleLinear ScaleMode = "lin"
	ScaleLog    ScaleMode = "log"
)

// Valid returns true for a known scale mode.
func (s ScaleMode) Valid() bool {
	return s == ScaleLinear || s == ScaleLog
}

// ParseScale parses the wire form of a scale mode.
func ParseScale(s string) (ScaleMode, error) {
	m := ScaleMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("invalid scale %q (want lin or log)", s)
	}
	return m, nil
}

// Default display values applied when the encoded form omits a key.
const (
	DefaultBins   = 512
	DefaultAmpMin = 0.0
	DefaultAmpMax = 400.0
)

// DecodeOptions are the processing parameters forwarded to the server with
// every fetch. They participate in the request fingerprint: two requests
// that differ only in options are distinct cache entries.
type DecodeOptions struct {
	// ConvertToKeV requests amplitude conversion from ADC counts to keV.
	ConvertToKeV bool
	// DeadTimeNs is the effective detector dead time correction in
	// nanoseconds. Zero disables the correction.
	DeadTimeNs int64
}

// ViewState is the complete set of user-controlled display and query
// parameters. It is mutated only by the orchestrator and must round-trip
// losslessly through the viewstate codec.
type ViewState struct {
	// Dataset is the dataset selector (acquisition run path on the server).
	Dataset string
	// FromNs and ToNs bound the requested time window, in nanoseconds
	// since the acquisition epoch. ToNs == 0 means "until end of run".
	FromNs int64
	ToNs   int64
	// Channels is the active channel set, kept sorted and deduplicated.
	Channels []int
	// Options are the decode parameters sent to the processing server.
	Options DecodeOptions

	// Display-only parameters. These do not affect the fetch fingerprint.
	Mode    PlotMode
	Scale   ScaleMode
	Overlay bool
	Bins    int
	AmpMin  float64
	AmpMax  float64
}

// DefaultViewState returns a view state with documented default values.
// The encoded form of the default state is the empty query string plus the
// dataset selector.
func DefaultViewState() ViewState {
	return ViewState{
		Mode:   PlotHistogram,
		Scale:  ScaleLinear,
		Bins:   DefaultBins,
		AmpMin: DefaultAmpMin,
		AmpMax: DefaultAmpMax,
	}
}

// Normalize sorts and deduplicates the channel set in place.
// Serialization and fingerprinting both assume a normalized state.
func (v *ViewState) Normalize() {
	slices.Sort(v.Channels)
	v.Channels = slices.Compact(v.Channels)
}

// Equal reports whether two view states are identical, including
// display-only parameters. Used by the orchestrator for change detection.
func (v ViewState) Equal(other ViewState) bool {
	return v.Dataset == other.Dataset &&
		v.FromNs == other.FromNs &&
		v.ToNs == other.ToNs &&
		slices.Equal(v.Channels, other.Channels) &&
		v.Options == other.Options &&
		v.Mode == other.Mode &&
		v.Scale == other.Scale &&
		v.Overlay == other.Overlay &&
		v.Bins == other.Bins &&
		v.AmpMin == other.AmpMin &&
		v.AmpMax == other.AmpMax
}

// Clone returns a deep copy. The channel slice is the only reference field.
func (v ViewState) Clone() ViewState {
	out := v
	out.Channels = slices.Clone(v.Channels)
	return out
}
