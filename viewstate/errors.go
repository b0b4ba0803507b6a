package viewstate

import (
	"errors"
	"fmt"
)

// ErrInvalidValue is the sentinel for view-state parse failures.
// Use errors.Is(err, ErrInvalidValue) for classification.
var ErrInvalidValue = errors.New("invalid value")

// ConfigError reports a value that could not be parsed for a known key.
// Unknown keys never produce errors; they are ignored.
type ConfigError struct {
	// Key is the query-string key, empty when the whole query failed to parse.
	Key string
	// Value is the offending raw value.
	Value string
	// Err is the underlying parse error, if any.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("view state: malformed query: %v", e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("view state: key %q: invalid value %q: %v", e.Key, e.Value, e.Err)
	}
	return fmt.Sprintf("view state: key %q: invalid value %q", e.Key, e.Value)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is reports whether the error matches ErrInvalidValue.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidValue
}

func invalidValue(key, value string, err error) *ConfigError {
	return &ConfigError{Key: key, Value: value, Err: err}
}
