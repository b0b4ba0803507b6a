package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// TransportErrorKind classifies transport failures.
type TransportErrorKind int

const (
	// ErrUnreachable indicates the server could not be reached at all
	// (connection refused, DNS failure, no route).
	ErrUnreachable TransportErrorKind = iota
	// ErrTimeout indicates the request exceeded its deadline.
	ErrTimeout
	// ErrServerRejected indicates the server answered with a non-success
	// status (bad selector, unknown dataset, internal error).
	ErrServerRejected
)

// String returns the kind name for log fields and error text.
func (k TransportErrorKind) String() string {
	switch k {
	case ErrUnreachable:
		return "unreachable"
	case ErrTimeout:
		return "timeout"
	case ErrServerRejected:
		return "server_rejected"
	default:
		return "unknown"
	}
}

// TransportError represents a failed request to the data server. The
// client performs exactly one logical request per call and never retries;
// retry policy, if any, belongs to the caller.
type TransportError struct {
	Kind TransportErrorKind
	// Op is the operation that failed (e.g. "fetch", "modified").
	Op string
	// Target is the URL or object key involved.
	Target string
	// Status is the HTTP status code, when one was received.
	Status int
	// Err is the underlying error.
	Err error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: %s (status %d)", e.Op, e.Target, e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Target, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Target, e.Kind)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError returns the typed transport error if err is one.
func IsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}

// classifyDialError maps a low-level request error to a transport kind.
// Classification follows error type first, message patterns second.
func classifyDialError(err error) TransportErrorKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	var timeoutErr interface{ Timeout() bool }
	if errors.As(err, &timeoutErr) && timeoutErr.Timeout() {
		return ErrTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out") ||
		strings.Contains(msg, "deadline exceeded"):
		return ErrTimeout
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host") ||
		strings.Contains(msg, "no route to host") || strings.Contains(msg, "network unreachable") ||
		strings.Contains(msg, "dial tcp"):
		return ErrUnreachable
	default:
		return ErrUnreachable
	}
}
