package task

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches a required field that is empty.
	ErrValidation = errors.New("validation failed")
	// ErrDateFormat matches a date that is not YYYY-MM-DD.
	ErrDateFormat = errors.New("invalid date format")
	// ErrRecordFormat matches an encoded line with the wrong shape.
	ErrRecordFormat = errors.New("invalid record format")
)

// ValidationError reports an empty required field.
type ValidationError struct {
	Field string
	Err   error // optional detail
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: required field is empty", e.Field)
}

// Unwrap returns the underlying detail error, if any.
func (e *ValidationError) Unwrap() error { return e.Err }

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// DateFormatError reports an unparseable date.
type DateFormatError struct {
	Field string
	Value string
	Err   error
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("%s: invalid date %q (want YYYY-MM-DD)", e.Field, e.Value)
}

func (e *DateFormatError) Unwrap() error { return e.Err }

// Is reports whether target is ErrDateFormat.
func (e *DateFormatError) Is(target error) bool { return target == ErrDateFormat }

// RecordFormatError reports an encoded line with the wrong number of fields.
type RecordFormatError struct {
	Format   string // "record", "compact" or "tagged"
	Expected int
	Actual   int
}

func (e *RecordFormatError) Error() string {
	return fmt.Sprintf("%s: wrong field count: expected %d, got %d", e.Format, e.Expected, e.Actual)
}

// Is reports whether target is ErrRecordFormat.
func (e *RecordFormatError) Is(target error) bool { return target == ErrRecordFormat }
