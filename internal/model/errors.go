package model

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrEmptyTable is returned when an aggregate is requested over zero records.
// Callers should treat it as "nothing to display".
var ErrEmptyTable = errors.New("empty table")

// DataIntegrityError reports malformed source data. It is fatal for the batch:
// no partial table is produced.
type DataIntegrityError struct {
	Source string // file path or "input"
	Row    int    // 1-based data row, 0 when not row-specific
	Field  string
	Reason string
}

func (e *DataIntegrityError) Error() string {
	loc := e.Source
	if loc == "" {
		loc = "input"
	}
	if e.Row > 0 {
		loc += ":" + strconv.Itoa(e.Row)
	}
	if e.Field != "" {
		return fmt.Sprintf("data integrity: %s: %s: %s", loc, e.Field, e.Reason)
	}
	return fmt.Sprintf("data integrity: %s: %s", loc, e.Reason)
}

// ValidationError reports a lever or target parameter outside its domain.
// It is recoverable and meant to be shown to the end user.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid " + e.Field + ": " + e.Reason
}

// Message returns the user-facing text for the error.
func (e *ValidationError) Message() string {
	if e.Value == "" {
		return fmt.Sprintf("%s %s.", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s %s (got %q).", e.Field, e.Reason, e.Value)
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsDataIntegrity reports whether err is or wraps a *DataIntegrityError.
func IsDataIntegrity(err error) bool {
	var de *DataIntegrityError
	return errors.As(err, &de)
}
