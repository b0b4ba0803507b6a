package iox

import (
	"errors"
	"testing"
)

type spyCloser struct{ closed int }

func (s *spyCloser) Close() error { s.closed++; return errors.New("ignored") }

func TestDiscardClose(t *testing.T) {
	s := &spyCloser{}
	DiscardClose(s)
	if s.closed != 1 {
		t.Fatalf("Close called %d times, want 1", s.closed)
	}
}

func TestCloseFunc(t *testing.T) {
	s := &spyCloser{}
	fn := CloseFunc(s)
	if s.closed != 0 {
		t.Fatal("Close called before invoking returned func")
	}
	fn()
	if s.closed != 1 {
		t.Fatalf("Close called %d times, want 1", s.closed)
	}
}

func TestDiscardErr(t *testing.T) {
	called := false
	DiscardErr(func() error {
		called = true
		return errors.New("ignored")
	})
	if !called {
		t.Fatal("fn was not called")
	}
}
