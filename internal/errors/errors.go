// Package errors consolidates error definitions for the mempool archive.
//
// This package provides:
// - Sentinel errors for common conditions
// - Typed errors carrying day/kind/field context
// - Category checking helpers
//
// Row-level decode failures are not represented here: they are absorbed and
// logged at the decode layer and never surface as call failures.
package errors

import (
	"errors"
	"fmt"
)

// ============================================================================
// Sentinel errors
// ============================================================================

var (
	// ErrSourceNotFound indicates the remote per-day dump does not exist.
	ErrSourceNotFound = errors.New("source file not found")

	// ErrEmptyListing indicates a remote index page yielded no entries.
	ErrEmptyListing = errors.New("empty listing")

	// ErrUnknownKind indicates an unrecognized record kind.
	ErrUnknownKind = errors.New("unknown record kind")

	// ErrInvalidDay indicates a day string that is not YYYY-MM-DD.
	ErrInvalidDay = errors.New("invalid day")
)

// ============================================================================
// Typed errors
// ============================================================================

// InvalidTimestampError indicates a query bound that does not convert to a
// valid calendar timestamp, or an inverted query window.
type InvalidTimestampError struct {
	Field  string // "from_ms" or "to_ms"
	Millis int64
	Reason string
}

func (e *InvalidTimestampError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid timestamp %s=%d: %s", e.Field, e.Millis, e.Reason)
	}
	return fmt.Sprintf("invalid timestamp %s=%d: not a valid calendar time", e.Field, e.Millis)
}

// DayNotFoundError indicates a missing partition file for an enumerated day.
// The query preflight returns this for the first missing day and reads nothing.
type DayNotFoundError struct {
	Kind string
	Day  string
}

func (e *DayNotFoundError) Error() string {
	return fmt.Sprintf("no %s partition for day %s", e.Kind, e.Day)
}

// PartitionWriteError indicates a failed partition write. It is fatal to that
// day's ingestion only.
type PartitionWriteError struct {
	Kind string
	Day  string
	Err  error
}

func (e *PartitionWriteError) Error() string {
	return fmt.Sprintf("write %s partition for day %s: %v", e.Kind, e.Day, e.Err)
}

func (e *PartitionWriteError) Unwrap() error { return e.Err }

// PartitionReadError indicates a corrupt or schema-mismatched partition file.
// It is fatal to the whole query call.
type PartitionReadError struct {
	Path string
	Err  error
}

func (e *PartitionReadError) Error() string {
	return fmt.Sprintf("read partition %s: %v", e.Path, e.Err)
}

func (e *PartitionReadError) Unwrap() error { return e.Err }

// ============================================================================
// Category checks
// ============================================================================

// IsDayNotFound reports whether err is a missing-partition error.
func IsDayNotFound(err error) bool {
	var e *DayNotFoundError
	return errors.As(err, &e)
}

// IsInvalidTimestamp reports whether err is a timestamp validation error.
func IsInvalidTimestamp(err error) bool {
	var e *InvalidTimestampError
	return errors.As(err, &e)
}

// ============================================================================
// Re-exports so callers do not need to import both packages
// ============================================================================

// New creates a new error (re-export of errors.New).
func New(text string) error { return errors.New(text) }

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }
