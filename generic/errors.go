/*
errors.go - Centralized error types for the engine and its collaborators

PURPOSE:
  All error types in one place for consistency and discoverability.
  The calculation engine itself degrades defensively (bad times and dates
  become "no activity"); the only engine failure is a caller contract
  violation, reported as ErrInvalidArgument.

ERROR CATEGORIES:
  1. Contract errors - nil inputs handed to the engine
  2. Validation errors - malformed dates, periods, clock times at the edges
  3. Store errors - missing records

USAGE:
  if errors.Is(err, generic.ErrInvalidArgument) {
      // skip the entry, keep aggregating
  }

SEE ALSO:
  - earnings/breakdown.go: returns InvalidArgumentError
  - api/handlers.go: maps errors to HTTP status codes
*/
package generic

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidArgument is returned when a caller violates the engine contract,
	// e.g. by passing a nil entry or nil settings.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidDate is returned at the edges (API, store, CLI) when a date
	// cannot be parsed. The engine itself never returns it.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidTime is returned at the edges when an "HH:MM" value is malformed.
	ErrInvalidTime = errors.New("invalid time")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrEntryNotFound is returned when no work entry exists for a date.
	ErrEntryNotFound = errors.New("work entry not found")

	// ErrHolidayNotFound is returned when deleting an unknown custom holiday.
	ErrHolidayNotFound = errors.New("holiday not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidArgumentError names the offending argument.
type InvalidArgumentError struct {
	Argument string
	Reason   string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Argument, e.Reason)
}

func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// FieldError reports a malformed field of a submitted document.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v (%q)", e.Field, e.Err, e.Value)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidTime) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrHolidayNotFound)
}
