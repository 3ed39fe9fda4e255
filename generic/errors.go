/*
errors.go - Centralized error types for the hours engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages and stores wrap these errors with additional context.

ERROR CATEGORIES:
  1. Lookup errors - Missing employees, weeks
  2. Ledger errors - Confirming twice, editing a confirmed week
  3. Input errors - Invalid numbers, week identifiers, periods

  Business-data gaps (no active employment period, a rule missing from the
  rule tables) are NOT errors: calculators return neutral results for them.

USAGE:
  if errors.Is(err, generic.ErrWeekConfirmed) {
      // unlock the week before editing
  }

SEE ALSO:
  - timekeeping/entry.go: InvalidNumericError at the entry boundary
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
	// ErrEmployeeNotFound is returned when a referenced employee doesn't exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrWeekNotFound is returned when no weekly record exists for the week.
	ErrWeekNotFound = errors.New("weekly record not found")

	// ErrPeriodNotFound is returned when a referenced employment period doesn't exist.
	ErrPeriodNotFound = errors.New("employment period not found")

	// ErrWeekConfirmed is returned when editing or re-confirming a confirmed week.
	ErrWeekConfirmed = errors.New("weekly record is confirmed")

	// ErrWeekNotConfirmed is returned when unlocking a week that is still open.
	ErrWeekNotConfirmed = errors.New("weekly record is not confirmed")

	// ErrInvalidNumeric is returned for negative or non-finite hour values.
	ErrInvalidNumeric = errors.New("invalid numeric value")

	// ErrInvalidWeekID is returned for malformed ISO week identifiers.
	ErrInvalidWeekID = errors.New("invalid week identifier")

	// ErrInvalidPeriod is returned when a date range is malformed or a day
	// falls outside its week.
	ErrInvalidPeriod = errors.New("invalid period")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidWeekIDError reports the rejected identifier.
type InvalidWeekIDError struct {
	Value string
}

func (e *InvalidWeekIDError) Error() string {
	return fmt.Sprintf("invalid week identifier %q (want YYYY-Www)", e.Value)
}

func (e *InvalidWeekIDError) Unwrap() error { return ErrInvalidWeekID }

// WeekStateError reports a ledger operation attempted in the wrong state.
type WeekStateError struct {
	EmployeeID EmployeeID
	Week       WeekID
	Err        error
}

func (e *WeekStateError) Error() string {
	return fmt.Sprintf("%s: employee %s week %s", e.Err, e.EmployeeID, e.Week)
}

func (e *WeekStateError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidNumeric) ||
		errors.Is(err, ErrInvalidWeekID) ||
		errors.Is(err, ErrInvalidPeriod)
}

// IsConflict returns true if the error is a ledger state conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrWeekConfirmed) ||
		errors.Is(err, ErrWeekNotConfirmed)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrWeekNotFound) ||
		errors.Is(err, ErrPeriodNotFound)
}
