package types

import "testing"

func baseState() ViewState {
	v := DefaultViewState()
	v.Dataset = "/2024_11/Tritium_2/set_1/p0"
	v.FromNs = 1_000_000
	v.ToNs = 5_000_000
	v.Channels = []int{1, 3, 5}
	return v
}

func TestFingerprint_Deterministic(t *testing.T) {
	a := baseState()
	b := baseState()
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("identical states produced different fingerprints")
	}
}

func TestFingerprint_ChannelOrderIndependent(t *testing.T) {
	a := baseState()
	a.Channels = []int{5, 1, 3}
	b := baseState()
	b.Channels = []int{1, 3, 5}
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("channel order changed the fingerprint")
	}
}

func TestFingerprint_DuplicateChannelsCollapse(t *testing.T) {
	a := baseState()
	a.Channels = []int{1, 1, 3, 5, 5}
	if a.Fingerprint() != baseState().Fingerprint() {
		t.Fatalf("duplicate channels changed the fingerprint")
	}
}

func TestFingerprint_DisplayOptionsExcluded(t *testing.T) {
	a := baseState()
	b := baseState()
	b.Mode = PlotSpectrum
	b.Scale = ScaleLog
	b.Overlay = true
	b.Bins = 99
	b.AmpMax = 1000
	if a.Fingerprint() != b.Fingerprint() {
		t.Fatalf("display-only options changed the fingerprint")
	}
}

func TestFingerprint_FetchParamsIncluded(t *testing.T) {
	base := baseState().Fingerprint()

	cases := []struct {
		name   string
		mutate func(*ViewState)
	}{
		{"dataset", func(v *ViewState) { v.Dataset = "/other/run" }},
		{"from", func(v *ViewState) { v.FromNs = 42 }},
		{"to", func(v *ViewState) { v.ToNs = 42 }},
		{"channels", func(v *ViewState) { v.Channels = []int{2} }},
		{"kev", func(v *ViewState) { v.Options.ConvertToKeV = true }},
		{"deadtime", func(v *ViewState) { v.Options.DeadTimeNs = 7000 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := baseState()
			tc.mutate(&v)
			if v.Fingerprint() == base {
				t.Fatalf("changing %s did not change the fingerprint", tc.name)
			}
		})
	}
}

func TestViewState_NormalizeAndEqual(t *testing.T) {
	a := baseState()
	a.Channels = []int{5, 3, 1, 3}
	a.Normalize()

	b := baseState()
	if !a.Equal(b) {
		t.Fatalf("normalized state not equal to sorted state: %v vs %v", a.Channels, b.Channels)
	}

	c := b.Clone()
	c.Channels[0] = 99
	if b.Channels[0] == 99 {
		t.Fatalf("Clone shares the channel slice")
	}
}
