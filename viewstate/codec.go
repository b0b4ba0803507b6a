// Package viewstate converts between a ViewState and its flat, URL-safe
// query-string encoding.
//
// The key set is a published contract (states are shared as URLs):
//
//	ds      dataset selector (string)
//	from    window start, ns since acquisition epoch (int)
//	to      window end, ns; 0 means end of run (int)
//	ch      active channels, comma-separated ints
//	kev     convert amplitudes to keV (0/1)
//	dt      dead-time correction, ns (int)
//	mode    plot mode: hist | series | spectrum
//	scale   value axis scale: lin | log
//	ov      overlay channels in one plot (0/1)
//	bins    histogram bin count (int)
//	amin    amplitude range lower bound (float)
//	amax    amplitude range upper bound (float)
//
// Keys may be added over time; decoders ignore unknown keys and apply
// documented defaults for missing ones. Serialization emits keys in the
// order above and omits keys holding their default value, so two equal
// states always serialize to the same string.
package viewstate

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/heliodyne/pulseview/types"
)

// Serialize encodes a view state as a URL query string without the leading
// question mark. The output is deterministic: stable key order, default
// values omitted.
func Serialize(v types.ViewState) string {
	v.Normalize()

	var sb strings.Builder
	add := func(key, value string) {
		if sb.Len() > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(key)
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(value))
	}

	if v.Dataset != "" {
		add(keyDataset, v.Dataset)
	}
	if v.FromNs != 0 {
		add(keyFrom, strconv.FormatInt(v.FromNs, 10))
	}
	if v.ToNs != 0 {
		add(keyTo, strconv.FormatInt(v.ToNs, 10))
	}
	if len(v.Channels) > 0 {
		add(keyChannels, joinChannels(v.Channels))
	}
	if v.Options.ConvertToKeV {
		add(keyKeV, "1")
	}
	if v.Options.DeadTimeNs != 0 {
		add(keyDeadTime, strconv.FormatInt(v.Options.DeadTimeNs, 10))
	}
	if v.Mode != types.PlotHistogram {
		add(keyMode, string(v.Mode))
	}
	if v.Scale != types.ScaleLinear {
		add(keyScale, string(v.Scale))
	}
	if v.Overlay {
		add(keyOverlay, "1")
	}
	if v.Bins != types.DefaultBins {
		add(keyBins, strconv.Itoa(v.Bins))
	}
	if v.AmpMin != types.DefaultAmpMin {
		add(keyAmpMin, formatFloat(v.AmpMin))
	}
	if v.AmpMax != types.DefaultAmpMax {
		add(keyAmpMax, formatFloat(v.AmpMax))
	}

	return sb.String()
}

// Deserialize parses a query string (with or without a leading question
// mark) into a view state. Unknown keys are ignored; missing keys take
// their documented defaults. Invalid values yield a *ConfigError.
func Deserialize(query string) (types.ViewState, error) {
	query = strings.TrimPrefix(query, "?")

	values, err := url.ParseQuery(query)
	if err != nil {
		return types.ViewState{}, &ConfigError{Key: "", Value: query, Err: err}
	}

	v := types.DefaultViewState()

	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		// Last occurrence wins, matching typical query-string handling.
		raw := vals[len(vals)-1]

		switch key {
		case keyDataset:
			v.Dataset = raw
		case keyFrom:
			if v.FromNs, err = parseInt(key, raw); err != nil {
				return types.ViewState{}, err
			}
		case keyTo:
			if v.ToNs, err = parseInt(key, raw); err != nil {
				return types.ViewState{}, err
			}
		case keyChannels:
			if v.Channels, err = splitChannels(raw); err != nil {
				return types.ViewState{}, err
			}
		case keyKeV:
			if v.Options.ConvertToKeV, err = parseBool(key, raw); err != nil {
				return types.ViewState{}, err
			}
		case keyDeadTime:
			if v.Options.DeadTimeNs, err = parseInt(key, raw); err != nil {
				return types.ViewState{}, err
			}
		case keyMode:
			mode := types.PlotMode(raw)
			if !mode.Valid() {
				return types.ViewState{}, invalidValue(key, raw, nil)
			}
			v.Mode = mode
		case keyScale:
			scale := types.ScaleMode(raw)
			if !scale.Valid() {
				return types.ViewState{}, invalidValue(key, raw, nil)
			}
			v.Scale = scale
		case keyOverlay:
			if v.Overlay, err = parseBool(key, raw); err != nil {
				return types.ViewState{}, err
			}
		case keyBins:
			bins, err := parseInt(key, raw)
			if err != nil {
				return types.ViewState{}, err
			}
			if bins <= 0 {
				return types.ViewState{}, invalidValue(key, raw, nil)
			}
			v.Bins = int(bins)
		case keyAmpMin:
			if v.AmpMin, err = parseFloat(key, raw); err != nil {
				return types.ViewState{}, err
			}
		case keyAmpMax:
			if v.AmpMax, err = parseFloat(key, raw); err != nil {
				return types.ViewState{}, err
			}
		default:
			// Unknown keys are ignored for forward compatibility.
		}
	}

	v.Normalize()
	return v, nil
}

func joinChannels(channels []int) string {
	parts := make([]string, len(channels))
	for i, ch := range channels {
		parts[i] = strconv.Itoa(ch)
	}
	return strings.Join(parts, ",")
}

func splitChannels(raw string) ([]int, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	channels := make([]int, 0, len(parts))
	for _, part := range parts {
		ch, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, invalidValue(keyChannels, raw, err)
		}
		if ch < 0 {
			return nil, invalidValue(keyChannels, raw, nil)
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

func parseInt(key, raw string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, invalidValue(key, raw, err)
	}
	return n, nil
}

func parseFloat(key, raw string) (float64, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, invalidValue(key, raw, err)
	}
	return f, nil
}

func parseBool(key, raw string) (bool, error) {
	switch raw {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	default:
		return false, invalidValue(key, raw, nil)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
