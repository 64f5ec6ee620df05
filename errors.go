package csvsort

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by SortFile when the input file does not exist.
	ErrNotFound = errors.New("input not found")

	// ErrEmptyInput is returned when the input has no data rows after the header
	// (or no header at all). No output is produced in that case.
	ErrEmptyInput = errors.New("input has no data rows")

	// ErrColumnNotFound is wrapped by ColumnError when a column name is not in the header.
	ErrColumnNotFound = errors.New("column not found")

	// ErrColumnOutOfRange is wrapped by ColumnError when a column index is outside the header.
	ErrColumnOutOfRange = errors.New("column index out of range")
)

// ColumnError represents a column selector that cannot be resolved against the header
type ColumnError struct {
	// Column is the selector as given by the caller
	Column Column
	// Header is the header it was resolved against
	Header []string
	// Err is ErrColumnNotFound or ErrColumnOutOfRange
	Err error
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%v: %s (header: %v)", e.Err, e.Column, e.Header)
}

func (e *ColumnError) Unwrap() error {
	return e.Err
}

// DiskError represents a failure of the underlying storage while reading,
// writing or deleting the input, a run or the output
type DiskError struct {
	// Op is the operation that failed, for example "write run"
	Op string
	// Path is the file or run name involved, if any
	Path string
	// Err is the underlying I/O error
	Err error
}

// NewDiskError creates a DiskError wrapping the underlying I/O error
func NewDiskError(err error, operation, path string) error {
	return &DiskError{Op: operation, Path: path, Err: err}
}

func (e *DiskError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("disk error during %s on %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("disk error during %s: %v", e.Op, e.Err)
}

func (e *DiskError) Unwrap() error {
	return e.Err
}

// CorruptionError represents a stream whose content does not match what the
// sorter expects: a run without its header, or a row with the wrong number of
// fields. It is not recoverable for the current invocation.
type CorruptionError struct {
	// Source is the input name or run name
	Source string
	// Line is the 1-based record number within Source (the header is line 1), 0 if unknown
	Line int64
	// Reason describes what was wrong
	Reason string
	// Err is the decoding error, if any
	Err error
}

func (e *CorruptionError) Error() string {
	msg := fmt.Sprintf("corrupt data in %s", e.Source)
	if e.Line > 0 {
		msg = fmt.Sprintf("%s at record %d", msg, e.Line)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CorruptionError) Unwrap() error {
	return e.Err
}

// ConfigError represents an error in configuration parameters
type ConfigError struct {
	// Field is the name of the configuration field that's invalid
	Field string
	// Value is the invalid value provided
	Value any
	// Reason explains why the value is invalid
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in field %s (value: %v): %s", e.Field, e.Value, e.Reason)
}

// OrderError is returned by Verify for the first pair of adjacent records
// that are out of order
type OrderError struct {
	// Line is the record number of Next (the header is line 1)
	Line int64
	// Prev and Next are the offending keys
	Prev, Next Key
	Order      Order
}

func (e *OrderError) Error() string {
	return fmt.Sprintf("record %d out of %s order: %s after %s", e.Line, e.Order, e.Next, e.Prev)
}
