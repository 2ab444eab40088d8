package timesheet

import "errors"

// Timesheet domain errors
var (
	// Lifecycle invariant violations
	ErrAlreadyClockedIn = errors.New("an open timesheet entry already exists")
	ErrNoOpenEntry      = errors.New("no open timesheet entry to clock out")

	// General errors
	ErrTimesheetNotFound = errors.New("timesheet entry not found")
)
