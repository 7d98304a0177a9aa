package models

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceUnavailable is returned when neither the snapshot nor the
	// spreadsheet can be read.
	ErrSourceUnavailable = errors.New("no survey source available")
	// ErrInvalidColorCode is returned for a colour code that is malformed or
	// has no palette entry.
	ErrInvalidColorCode = errors.New("invalid colour code")
	// ErrMissingAverage is returned when a group has no numeric average.
	ErrMissingAverage = errors.New("no average value in group")
)

// SchemaError reports a column the pipeline expects but the source lacks.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema: missing column %q", e.Column)
}

// ValidationError reports a data-integrity violation for one record.
type ValidationError struct {
	// Key identifies the row or group, e.g. an activity ID.
	Key   string
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %q for %s: %v", e.Field, e.Value, e.Key, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
