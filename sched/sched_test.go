package sched

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestNative_SpawnAndAwait(t *testing.T) {
	b := NewNative(NativeConfig{Workers: 2})
	defer b.Close()

	h := b.Spawn(func(ctx context.Context) (any, error) {
		return 42, nil
	})

	got, err := Await[int](t.Context(), h)
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if got != 42 {
		t.Fatalf("Await = %d, want 42", got)
	}
}

func TestNative_ErrorPropagates(t *testing.T) {
	b := NewNative(NativeConfig{Workers: 1})
	defer b.Close()

	boom := errors.New("boom")
	h := b.Spawn(func(ctx context.Context) (any, error) {
		return nil, boom
	})

	_, err := h.Await(t.Context())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestNative_ParallelTasks(t *testing.T) {
	b := NewNative(NativeConfig{Workers: 4})
	defer b.Close()

	// Two tasks that can only finish if they run concurrently.
	gate := make(chan struct{})
	h1 := b.Spawn(func(ctx context.Context) (any, error) {
		close(gate)
		return "a", nil
	})
	h2 := b.Spawn(func(ctx context.Context) (any, error) {
		select {
		case <-gate:
			return "b", nil
		case <-time.After(5 * time.Second):
			return nil, errors.New("never ran in parallel")
		}
	})

	if _, err := h1.Await(t.Context()); err != nil {
		t.Fatalf("h1: %v", err)
	}
	if _, err := h2.Await(t.Context()); err != nil {
		t.Fatalf("h2: %v", err)
	}
}

func TestNative_CloseSettlesHandles(t *testing.T) {
	b := NewNative(NativeConfig{Workers: 1})

	h := b.Spawn(func(ctx context.Context) (any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	done := make(chan struct{})
	go func() {
		b.Close()
		close(done)
	}()

	if _, err := h.Await(t.Context()); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	<-done
}

func TestCoop_SpawnDoesNotRunInline(t *testing.T) {
	b := NewCoop()
	defer b.Close()

	var ran atomic.Bool
	h := b.Spawn(func(ctx context.Context) (any, error) {
		ran.Store(true)
		return nil, nil
	})

	if ran.Load() {
		t.Fatalf("task ran before the bridge was pumped")
	}
	if _, _, settled := h.Poll(); settled {
		t.Fatalf("handle settled before the bridge was pumped")
	}

	b.Drain()

	if !ran.Load() {
		t.Fatalf("task did not run after Drain")
	}
	if _, _, settled := h.Poll(); !settled {
		t.Fatalf("handle not settled after Drain")
	}
}

func TestCoop_FIFOOrder(t *testing.T) {
	b := NewCoop()
	defer b.Close()

	var order []int
	for i := range 5 {
		b.Spawn(func(ctx context.Context) (any, error) {
			order = append(order, i)
			return nil, nil
		})
	}
	b.Drain()

	for i, got := range order {
		if got != i {
			t.Fatalf("order = %v, want ascending", order)
		}
	}
}

func TestCoop_TaskSpawnedFromTaskRunsAfter(t *testing.T) {
	b := NewCoop()
	defer b.Close()

	var trace []string
	b.Spawn(func(ctx context.Context) (any, error) {
		trace = append(trace, "outer-start")
		inner := b.Spawn(func(ctx context.Context) (any, error) {
			trace = append(trace, "inner")
			return nil, nil
		})
		if _, _, settled := inner.Poll(); settled {
			return nil, errors.New("inner ran inside outer")
		}
		trace = append(trace, "outer-end")
		return nil, nil
	})
	b.Drain()

	want := []string{"outer-start", "outer-end", "inner"}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", trace, want)
		}
	}
}

func TestCoop_StepFromInsideTaskIsRefused(t *testing.T) {
	b := NewCoop()
	defer b.Close()

	b.Spawn(func(ctx context.Context) (any, error) {
		b.Spawn(func(ctx context.Context) (any, error) { return nil, nil })
		if b.Step() {
			return nil, errors.New("nested Step ran a task")
		}
		return nil, nil
	})

	b.Drain()
	if b.Pending() != 0 {
		t.Fatalf("queue not drained: %d pending", b.Pending())
	}
}

func TestCoop_RunPumpsUntilCancelled(t *testing.T) {
	b := NewCoop()
	defer b.Close()

	ctx, cancel := context.WithCancel(t.Context())
	go b.Run(ctx)

	h := b.Spawn(func(ctx context.Context) (any, error) {
		return "pumped", nil
	})

	got, err := Await[string](t.Context(), h)
	if err != nil || got != "pumped" {
		t.Fatalf("Await = %q, %v", got, err)
	}
	cancel()
}

func TestAwait_TypeMismatch(t *testing.T) {
	h := SettledHandle("a string", nil)
	_, err := Await[int](t.Context(), h)
	var te *TypeError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want *TypeError", err)
	}
}

func TestHandle_AwaitRespectsContext(t *testing.T) {
	h := NewHandle()
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if _, err := h.Await(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
