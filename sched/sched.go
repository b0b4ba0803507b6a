// Package sched abstracts "run this fetch/decode work off the UI path"
// over two execution models.
//
// The native backend runs tasks on a bounded pool of goroutines with real
// parallelism. The cooperative backend runs tasks strictly one at a time in
// submission order: spawning never executes the task inline, so a callback
// fired while another task runs cannot observe partially-updated state.
//
// Components above this package (cache, orchestrator) are written purely
// against Bridge and Handle and never touch backend primitives.
package sched

import (
	"context"
	"sync"
)

// Task is a unit of work. The task may block on I/O; the context is
// cancelled when the bridge shuts down.
type Task func(ctx context.Context) (any, error)

// Bridge schedules tasks without blocking the caller.
type Bridge interface {
	// Spawn enqueues the task and returns a handle to its eventual result.
	// The task's result becomes visible to the caller only after the task
	// completes; no partial writes are observable through the handle.
	Spawn(task Task) *Handle

	// Close stops the bridge. Already-running tasks get a cancelled
	// context; queued tasks still run (with the cancelled context) so
	// every handle settles.
	Close()
}

// Handle is a future for a spawned task's result. It can be polled or
// awaited; under the cooperative backend awaiting from outside the
// scheduler does not block pending tasks.
type Handle struct {
	done chan struct{}

	mu    sync.Mutex
	value any
	err   error
}

// NewHandle returns an unsettled handle. Exposed so the cache can settle
// already-cached results without scheduling a task.
func NewHandle() *Handle {
	return &Handle{done: make(chan struct{})}
}

// SettledHandle returns a handle that is already resolved.
func SettledHandle(value any, err error) *Handle {
	h := NewHandle()
	h.settle(value, err)
	return h
}

// Resolve settles the handle exactly once; later calls are ignored.
// Exposed for components that fan one task result out to multiple waiting
// handles (the data cache's waiter list).
func (h *Handle) Resolve(value any, err error) {
	h.settle(value, err)
}

// settle resolves the handle exactly once. Later calls are ignored.
func (h *Handle) settle(value any, err error) {
	h.mu.Lock()
	select {
	case <-h.done:
		h.mu.Unlock()
		return
	default:
	}
	h.value = value
	h.err = err
	h.mu.Unlock()
	close(h.done)
}

// Done returns a channel closed when the task has completed.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Poll returns the result if the task has completed. The boolean reports
// completion; value and error are zero until then.
func (h *Handle) Poll() (any, error, bool) {
	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.value, h.err, true
	default:
		return nil, nil, false
	}
}

// Await blocks until the task completes or ctx is cancelled.
func (h *Handle) Await(ctx context.Context) (any, error) {
	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.value, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Await is the typed form of Handle.Await.
func Await[T any](ctx context.Context, h *Handle) (T, error) {
	var zero T
	value, err := h.Await(ctx)
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok && value != nil {
		return zero, &TypeError{Got: value}
	}
	return typed, nil
}
