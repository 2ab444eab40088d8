package shift

import "errors"

var (
	// Configuration errors: the engine cannot derive a correct shift date
	// from the data as set up. Distinct from user-input validation.
	ErrNoScheduleFound     = errors.New("no shift schedule resolvable for employee and date")
	ErrMalformedAssignment = errors.New("schedule assignment has an end date before its start date")

	ErrScheduleNotFound   = errors.New("shift schedule not found")
	ErrAssignmentNotFound = errors.New("schedule assignment not found")
)
