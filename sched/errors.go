package sched

import "fmt"

// TypeError reports a typed Await against a handle holding a different
// result type. Always a programming error, never external input.
type TypeError struct {
	Got any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("sched: handle holds %T, not the awaited type", e.Got)
}
