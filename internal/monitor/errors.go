package monitor

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by every operation once Close has been called.
var ErrClosed = errors.New("change monitor is closed")

// ConfigError reports a missing or invalid construction argument.
type ConfigError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid monitor config: field '%s' (value: %q): %s", e.Field, e.Value, e.Reason)
}

// StoreInitError reports that the store could not be created or opened.
type StoreInitError struct {
	Path string
	Err  error
}

func (e *StoreInitError) Error() string {
	return fmt.Sprintf("failed to initialize etag store at '%s': %v", e.Path, e.Err)
}

func (e *StoreInitError) Unwrap() error { return e.Err }

// StoreSchemaError reports an existing store file whose schema is not the etag table.
type StoreSchemaError struct {
	Path string
	Err  error
}

func (e *StoreSchemaError) Error() string {
	return fmt.Sprintf("etag store at '%s' has an invalid schema: %v", e.Path, e.Err)
}

func (e *StoreSchemaError) Unwrap() error { return e.Err }

// StoreReadError reports that the stored identifier could not be read.
type StoreReadError struct {
	Path string
	Err  error
}

func (e *StoreReadError) Error() string {
	return fmt.Sprintf("failed to read stored etag from '%s': %v", e.Path, e.Err)
}

func (e *StoreReadError) Unwrap() error { return e.Err }

// StoreWriteError reports that a new identifier could not be persisted.
type StoreWriteError struct {
	Path string
	Err  error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("failed to persist etag to '%s': %v", e.Path, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// NetworkError reports a HEAD request that failed or answered with an error
// status. StatusCode is zero when no response was received.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("network error for '%s' (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("network error for '%s': %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MissingHeaderError reports a response without a usable ETag header.
type MissingHeaderError struct {
	URL        string
	Header     string
	StatusCode int
}

func (e *MissingHeaderError) Error() string {
	return fmt.Sprintf("response from '%s' (status %d) has no %s header", e.URL, e.StatusCode, e.Header)
}
