package sched

import (
	"context"
	"sync"
)

// CoopBridge is the single-threaded cooperative backend. Tasks are queued
// by Spawn and executed strictly one at a time, in FIFO order, on whichever
// goroutine pumps the bridge (Step, Drain, or Run).
//
// Spawn never executes the task inline. A task that spawns further work
// only lengthens the queue; nothing runs until the current task returns.
// This is the reentrancy guard: a synchronous callback cannot observe
// another task half-run.
//
// In the browser build one goroutine calls Run; the Go runtime parks it at
// I/O suspension points and yields to the host event loop, which is exactly
// the cooperative model the browser requires.
type CoopBridge struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	queue   []queuedTask
	running bool
	closed  bool

	notify chan struct{}
}

type queuedTask struct {
	task   Task
	handle *Handle
}

// NewCoop creates a cooperative bridge. Nothing executes until the bridge
// is pumped.
func NewCoop() *CoopBridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &CoopBridge{
		ctx:    ctx,
		cancel: cancel,
		notify: make(chan struct{}, 1),
	}
}

// Spawn implements Bridge. The task is enqueued, never run inline.
func (b *CoopBridge) Spawn(task Task) *Handle {
	h := NewHandle()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		h.settle(nil, b.ctx.Err())
		return h
	}
	b.queue = append(b.queue, queuedTask{task: task, handle: h})
	b.mu.Unlock()

	select {
	case b.notify <- struct{}{}:
	default:
	}
	return h
}

// Step runs the task at the head of the queue to completion on the calling
// goroutine. It returns false when the queue is empty or when called from
// inside a running task (no preemption).
//
// Completion, not suspension, is the task boundary: a task blocked on
// network I/O holds the queue until it returns, so later tasks wait out
// the round-trip. Callers who need overlap enqueue the fetch and the
// decode as separate tasks.
// TODO: split FetchPipeline's fetch and decode into chained tasks so a
// slow server does not serialize unrelated fetches on this bridge.
func (b *CoopBridge) Step() bool {
	b.mu.Lock()
	if b.running || len(b.queue) == 0 {
		b.mu.Unlock()
		return false
	}
	next := b.queue[0]
	b.queue = b.queue[1:]
	b.running = true
	b.mu.Unlock()

	value, err := next.task(b.ctx)
	next.handle.settle(value, err)

	b.mu.Lock()
	b.running = false
	b.mu.Unlock()
	return true
}

// Drain runs queued tasks until the queue is empty, including tasks
// enqueued by the tasks themselves.
func (b *CoopBridge) Drain() {
	for b.Step() {
	}
}

// Pending returns the number of queued, not-yet-started tasks.
func (b *CoopBridge) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Run pumps the bridge until ctx is cancelled or the bridge is closed.
// Intended as the single scheduler loop of the browser target.
func (b *CoopBridge) Run(ctx context.Context) {
	for {
		b.Drain()
		select {
		case <-ctx.Done():
			return
		case <-b.ctx.Done():
			// Settle what is left before exiting.
			b.Drain()
			return
		case <-b.notify:
		}
	}
}

// Close implements Bridge. Running tasks see a cancelled context; queued
// tasks still execute on the next pump so their handles settle.
func (b *CoopBridge) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.cancel()

	select {
	case b.notify <- struct{}{}:
	default:
	}
}

var _ Bridge = (*CoopBridge)(nil)
