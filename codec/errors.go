package codec

import (
	"errors"
	"fmt"
)

// DecodeErrorKind classifies container decoding errors.
type DecodeErrorKind int

const (
	// ErrUnsupportedFormat indicates an unknown magic or format version.
	ErrUnsupportedFormat DecodeErrorKind = iota
	// ErrTruncated indicates the input ended before the declared length.
	ErrTruncated
	// ErrMalformed indicates structurally invalid content behind a valid
	// header (bad metadata, length disagreement).
	ErrMalformed
)

// String returns the kind name for log fields and error text.
func (k DecodeErrorKind) String() string {
	switch k {
	case ErrUnsupportedFormat:
		return "unsupported_format"
	case ErrTruncated:
		return "truncated"
	case ErrMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// DecodeError represents a container decoding failure. Decoding never
// panics on malformed external input; every parse failure is returned as a
// *DecodeError.
type DecodeError struct {
	Kind DecodeErrorKind
	Msg  string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("decode: %s: %s", e.Kind, e.Msg)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError returns the typed decode error if err is one.
func IsDecodeError(err error) (*DecodeError, bool) {
	var de *DecodeError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind reports whether err is a decode error of the given kind.
func IsKind(err error, kind DecodeErrorKind) bool {
	de, ok := IsDecodeError(err)
	return ok && de.Kind == kind
}
