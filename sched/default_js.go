//go:build js && wasm

package sched

import "context"

// Default returns the bridge for the current build target: a cooperative
// single-threaded queue in the browser, pumped by one background
// goroutine. The Go wasm runtime multiplexes that goroutine onto the host
// event loop, so I/O suspension yields control back to the browser.
func Default() Bridge {
	b := NewCoop()
	go b.Run(context.Background())
	return b
}
