package exercise

import "errors"

var (
	// ErrFrozen is returned when the attempt has been graded.
	ErrFrozen = errors.New("attempt is graded")

	// ErrInFlight is returned while a submission is pending.
	ErrInFlight = errors.New("submission in progress")

	// ErrIncomplete is returned when submitting without a complete answer.
	ErrIncomplete = errors.New("answer incomplete")

	ErrInvalidAnswer = errors.New("invalid answer")
	ErrUnsupported   = errors.New("unsupported exercise type")
	ErrEmptyResult   = errors.New("empty grading result")
)
