package operation

import (
	"errors"
	"fmt"
)

// Failure families. Concrete errors wrap one of these so callers can branch
// with errors.Is without knowing every case.
var (
	ErrParse            = errors.New("parse failure")
	ErrValidation       = errors.New("validation failure")
	ErrLateModification = errors.New("late modification")
	ErrInvariant        = errors.New("invariant violation")
)

var (
	ErrUnknownCurrency    = fmt.Errorf("%w: unknown currency", ErrValidation)
	ErrInvalidAmount      = fmt.Errorf("%w: invalid amount", ErrValidation)
	ErrInvalidTopUp       = fmt.Errorf("%w: top-up must be a positive integer", ErrValidation)
	ErrTopUpExceedsAmount = fmt.Errorf("%w: top-up exceeds the remaining amount", ErrValidation)
	ErrInvalidTransition  = fmt.Errorf("%w: action not allowed in current state", ErrValidation)
	ErrUnknownCategory    = fmt.Errorf("%w: unknown category", ErrValidation)
	ErrEmptySchedule      = fmt.Errorf("%w: recurrence has no days", ErrParse)
	ErrInvalidSchedule    = fmt.Errorf("%w: invalid recurrence", ErrParse)
	ErrTopUpTooLate       = fmt.Errorf("%w: received amount can only change on the day of the operation", ErrLateModification)
)

// Store errors.
var (
	ErrInstanceNotFound = errors.New("operation not found")
	ErrTemplateNotFound = errors.New("regular operation not found")
)
