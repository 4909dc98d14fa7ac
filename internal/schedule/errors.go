package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced event, series, or occurrence
	// does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCalendarNotFound is returned when a query names an unknown calendar.
	ErrCalendarNotFound = errors.New("calendar not found")

	// ErrInvalidOperation marks structural misuse, such as applying a series
	// operation to a standalone event or editing a cancelled occurrence.
	ErrInvalidOperation = errors.New("invalid operation")
)

// ConflictError is returned by commands when a proposed interval overlaps an
// existing visible event. EventID names one conflicting event so the caller
// can report something useful.
type ConflictError struct {
	EventID int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule conflict with event %d", e.EventID)
}
