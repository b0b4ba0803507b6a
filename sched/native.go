package sched

import (
	"context"
	"runtime"
	"sync"
)

// NativeConfig configures the native bridge.
type NativeConfig struct {
	// Workers caps the number of concurrently running tasks. Zero means
	// GOMAXPROCS. Decode work is CPU-bound, so the cap keeps a burst of
	// fetches from starving the UI thread.
	Workers int
}

// NativeBridge runs tasks on a bounded goroutine pool with real
// parallelism. The caller's goroutine is never blocked by Spawn.
type NativeBridge struct {
	ctx    context.Context
	cancel context.CancelFunc
	slots  chan struct{}
	wg     sync.WaitGroup
}

// NewNative creates a native bridge.
func NewNative(cfg NativeConfig) *NativeBridge {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &NativeBridge{
		ctx:    ctx,
		cancel: cancel,
		slots:  make(chan struct{}, workers),
	}
}

// Spawn implements Bridge.
func (b *NativeBridge) Spawn(task Task) *Handle {
	h := NewHandle()
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		// A closed bridge still settles the handle: the slot wait aborts
		// and the task runs with a cancelled context.
		select {
		case b.slots <- struct{}{}:
			defer func() { <-b.slots }()
		case <-b.ctx.Done():
		}

		value, err := task(b.ctx)
		h.settle(value, err)
	}()
	return h
}

// Close implements Bridge. It cancels running tasks and waits for every
// spawned task to settle its handle.
func (b *NativeBridge) Close() {
	b.cancel()
	b.wg.Wait()
}

var _ Bridge = (*NativeBridge)(nil)
