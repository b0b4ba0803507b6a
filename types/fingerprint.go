package types

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"slices"
)

// Fingerprint is a deterministic key summarizing a data request. Two
// logically identical requests always produce equal fingerprints, so it can
// be used directly as a cache key. The string form is hex-encoded SHA-256.
type Fingerprint string

// Fingerprint derives the request fingerprint for the fetch-relevant part
// of the view state: dataset selector, time window, channel set, and decode
// options. Display-only parameters are excluded. The channel set is sorted
// before hashing so ordering in the input does not matter.
func (v ViewState) Fingerprint() Fingerprint {
	channels := slices.Clone(v.Channels)
	slices.Sort(channels)
	channels = slices.Compact(channels)

	h := sha256.New()
	h.Write([]byte(v.Dataset))
	h.Write([]byte{0x00})

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v.FromNs))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(v.ToNs))
	h.Write(buf[:])

	for _, ch := range channels {
		binary.BigEndian.PutUint32(buf[:4], uint32(ch))
		h.Write(buf[:4])
	}
	h.Write([]byte{0x00})

	if v.Options.ConvertToKeV {
		h.Write([]byte{0x01})
	} else {
		h.Write([]byte{0x00})
	}
	binary.BigEndian.PutUint64(buf[:], uint64(v.Options.DeadTimeNs))
	h.Write(buf[:])

	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// Short returns a truncated fingerprint for log fields.
func (f Fingerprint) Short() string {
	if len(f) > 12 {
		return string(f[:12])
	}
	return string(f)
}
