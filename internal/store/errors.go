package store

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange matches an operation on a row that does not exist.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrIO matches a failure reading or writing the backing storage.
	ErrIO = errors.New("storage i/o failed")
)

// IndexError reports a selection outside the task list.
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	if e.Len == 0 {
		return fmt.Sprintf("no task at index %d: list is empty", e.Index)
	}
	return fmt.Sprintf("no task at index %d: valid range is 0..%d", e.Index, e.Len-1)
}

// Is reports whether target is ErrIndexOutOfRange.
func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }

// IOError wraps a backend failure with the operation and location.
type IOError struct {
	Op       string // "read" or "write"
	Location string
	Err      error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Location, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// LineError attributes a parse failure to a 1-based line of the source.
// For JSON documents Line is the 1-based position in the tasks array.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }
