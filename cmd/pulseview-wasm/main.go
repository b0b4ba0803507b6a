//go:build js && wasm

// Package main exposes the pulseview core to a browser frontend.
//
// The module runs single-threaded: fetch tasks queue on a cooperative
// bridge and the host pumps them with pulseviewStep (typically from
// requestAnimationFrame). State updates reach JS through the callback
// registered with pulseviewSubscribe.
//
// Exported functions:
//
//	pulseviewInit(serverURL)        -> {"ok": true} | {"error": ...}
//	pulseviewSetView(query)         -> {"ok": true} | {"error": ...}
//	pulseviewReload()               -> {"ok": true}
//	pulseviewStep()                 -> pending task count
//	pulseviewSnapshot()             -> snapshot JSON
//	pulseviewSubscribe(callback)    -> callback(snapshotJSON) per publish
//	pulseviewDecodeBlock(bytes)     -> decoded series JSON
//	pulseviewEncodeState(json)      -> query string
//	pulseviewDecodeState(query)     -> view fields JSON
package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/heliodyne/pulseview/cache"
	"github.com/heliodyne/pulseview/codec"
	"github.com/heliodyne/pulseview/log"
	"github.com/heliodyne/pulseview/metrics"
	"github.com/heliodyne/pulseview/orchestrator"
	"github.com/heliodyne/pulseview/remote"
	"github.com/heliodyne/pulseview/sched"
	"github.com/heliodyne/pulseview/types"
	"github.com/heliodyne/pulseview/viewstate"
)

// One viewer per WASM instance. The browser owns the lifecycle: init once,
// then drive the view through set/step/subscribe.
var (
	bridge *sched.CoopBridge
	orch   *orchestrator.Orchestrator
)

func errJSON(err error) string {
	out, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(out)
}

func okJSON() string {
	return `{"ok": true}`
}

// snapshotJSON flattens an orchestrator snapshot for the frontend. Errors
// are carried as strings with their classified kind.
func snapshotJSON(snap orchestrator.Snapshot) string {
	payload := map[string]any{
		"phase":      snap.Phase.String(),
		"state":      viewstate.Serialize(snap.View),
		"generation": snap.Generation,
	}
	if snap.Series != nil {
		payload["series"] = seriesPayload(snap.Series)
	}
	if snap.Err != nil {
		payload["error"] = snap.Err.Error()
		payload["errorKind"] = string(snap.ErrKind)
	}
	out, _ := json.Marshal(payload)
	return string(out)
}

func seriesPayload(s *types.DecodedSeries) map[string]any {
	channels := make([]map[string]any, 0, len(s.Channels))
	for _, ch := range s.Channels {
		coords := make([]float64, len(ch.Samples))
		values := make([]float64, len(ch.Samples))
		for i, sample := range ch.Samples {
			coords[i] = sample.Coord
			values[i] = sample.Value
		}
		channels = append(channels, map[string]any{
			"channel": ch.Meta.ChannelID,
			"units":   ch.Meta.Units,
			"coords":  coords,
			"values":  values,
		})
	}
	return map[string]any{
		"record":   s.Kind.Record,
		"channels": channels,
	}
}

// pulseviewInit builds the fetch pipeline against the given server URL.
// args[0] = string (server base URL)
func pulseviewInit(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errJSON(errArg("pulseviewInit requires a server URL"))
	}
	serverURL := args[0].String()

	meta := log.NewSessionMeta("wasm", serverURL)
	logger := log.NewLogger(meta)
	collector := metrics.NewCollector(meta.SessionID, meta.Target)

	client, err := remote.NewHTTPClient(remote.HTTPConfig{
		BaseURL:   serverURL,
		Logger:    logger,
		Collector: collector,
	})
	if err != nil {
		return errJSON(err)
	}

	if orch != nil {
		orch.Close()
		bridge.Close()
	}
	bridge = sched.NewCoop()
	dataCache := cache.New(bridge, logger, collector)
	orch = orchestrator.New(dataCache, orchestrator.FetchPipeline(client, collector), logger, collector)
	orch.Subscribe(notifyJS)
	return okJSON()
}

// pulseviewSetView parses a view-state query string and starts a fetch.
// args[0] = string (query)
func pulseviewSetView(_ js.Value, args []js.Value) any {
	if orch == nil {
		return errJSON(errArg("pulseviewInit must be called first"))
	}
	if len(args) < 1 {
		return errJSON(errArg("pulseviewSetView requires a query string"))
	}
	view, err := viewstate.Deserialize(args[0].String())
	if err != nil {
		return errJSON(err)
	}
	orch.SetView(view)
	return okJSON()
}

// pulseviewReload discards the cached block for the current view and
// fetches it again.
func pulseviewReload(_ js.Value, _ []js.Value) any {
	if orch == nil {
		return errJSON(errArg("pulseviewInit must be called first"))
	}
	orch.Reload()
	return okJSON()
}

// pulseviewStep runs one queued fetch task and returns how many remain.
// The host calls this from its frame loop.
func pulseviewStep(_ js.Value, _ []js.Value) any {
	if bridge == nil {
		return 0
	}
	bridge.Step()
	return bridge.Pending()
}

// pulseviewSnapshot returns the current viewer state without waiting.
func pulseviewSnapshot(_ js.Value, _ []js.Value) any {
	if orch == nil {
		return errJSON(errArg("pulseviewInit must be called first"))
	}
	return snapshotJSON(orch.Current())
}

// jsCallback receives snapshot JSON on every publish. Undefined until the
// host subscribes.
var jsCallback = js.Undefined()

func notifyJS(snap orchestrator.Snapshot) {
	if jsCallback.Type() == js.TypeFunction {
		jsCallback.Invoke(snapshotJSON(snap))
	}
}

// pulseviewSubscribe registers the publish callback.
// args[0] = function(snapshotJSON string)
func pulseviewSubscribe(_ js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeFunction {
		return errJSON(errArg("pulseviewSubscribe requires a callback function"))
	}
	jsCallback = args[0]
	return okJSON()
}

// pulseviewDecodeBlock decodes container bytes without going through the
// pipeline. Used for drag-and-drop of exported block files.
// args[0] = Uint8Array
func pulseviewDecodeBlock(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errJSON(errArg("pulseviewDecodeBlock requires a Uint8Array"))
	}
	data := make([]byte, args[0].Get("length").Int())
	js.CopyBytesToGo(data, args[0])

	series, err := codec.DecodeBytes(data)
	if err != nil {
		return errJSON(err)
	}
	out, _ := json.Marshal(seriesPayload(series))
	return string(out)
}

// pulseviewEncodeState turns a JSON view description into the shareable
// query-string form.
// args[0] = string (JSON with the wire-key field names)
func pulseviewEncodeState(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errJSON(errArg("pulseviewEncodeState requires a JSON string"))
	}
	var fields struct {
		Dataset  string  `json:"ds"`
		FromNs   int64   `json:"from"`
		ToNs     int64   `json:"to"`
		Channels []int   `json:"ch"`
		KeV      bool    `json:"kev"`
		DeadTime int64   `json:"dt"`
		Mode     string  `json:"mode"`
		Scale    string  `json:"scale"`
		Overlay  bool    `json:"ov"`
		Bins     int     `json:"bins"`
		AmpMin   float64 `json:"amin"`
		AmpMax   float64 `json:"amax"`
	}
	if err := json.Unmarshal([]byte(args[0].String()), &fields); err != nil {
		return errJSON(err)
	}

	v := types.DefaultViewState()
	v.Dataset = fields.Dataset
	v.FromNs = fields.FromNs
	v.ToNs = fields.ToNs
	if len(fields.Channels) > 0 {
		v.Channels = fields.Channels
	}
	v.Options.ConvertToKeV = fields.KeV
	v.Options.DeadTimeNs = fields.DeadTime
	if fields.Mode != "" {
		mode, err := types.ParsePlotMode(fields.Mode)
		if err != nil {
			return errJSON(err)
		}
		v.Mode = mode
	}
	if fields.Scale != "" {
		scale, err := types.ParseScale(fields.Scale)
		if err != nil {
			return errJSON(err)
		}
		v.Scale = scale
	}
	v.Overlay = fields.Overlay
	if fields.Bins > 0 {
		v.Bins = fields.Bins
	}
	if fields.AmpMax > 0 {
		v.AmpMin = fields.AmpMin
		v.AmpMax = fields.AmpMax
	}
	v.Normalize()
	return viewstate.Serialize(v)
}

// pulseviewDecodeState parses a query string back into view fields.
// args[0] = string (query)
func pulseviewDecodeState(_ js.Value, args []js.Value) any {
	if len(args) < 1 {
		return errJSON(errArg("pulseviewDecodeState requires a query string"))
	}
	v, err := viewstate.Deserialize(args[0].String())
	if err != nil {
		return errJSON(err)
	}
	out, _ := json.Marshal(map[string]any{
		"ds":    v.Dataset,
		"from":  v.FromNs,
		"to":    v.ToNs,
		"ch":    v.Channels,
		"kev":   v.Options.ConvertToKeV,
		"dt":    v.Options.DeadTimeNs,
		"mode":  string(v.Mode),
		"scale": string(v.Scale),
		"ov":    v.Overlay,
		"bins":  v.Bins,
		"amin":  v.AmpMin,
		"amax":  v.AmpMax,
	})
	return string(out)
}

type argError string

func (e argError) Error() string { return string(e) }

func errArg(msg string) error { return argError(msg) }

func main() {
	js.Global().Set("pulseviewInit", js.FuncOf(pulseviewInit))
	js.Global().Set("pulseviewSetView", js.FuncOf(pulseviewSetView))
	js.Global().Set("pulseviewReload", js.FuncOf(pulseviewReload))
	js.Global().Set("pulseviewStep", js.FuncOf(pulseviewStep))
	js.Global().Set("pulseviewSnapshot", js.FuncOf(pulseviewSnapshot))
	js.Global().Set("pulseviewSubscribe", js.FuncOf(pulseviewSubscribe))
	js.Global().Set("pulseviewDecodeBlock", js.FuncOf(pulseviewDecodeBlock))
	js.Global().Set("pulseviewEncodeState", js.FuncOf(pulseviewEncodeState))
	js.Global().Set("pulseviewDecodeState", js.FuncOf(pulseviewDecodeState))

	// Block forever so the exported functions stay registered.
	select {}
}
