package timesheet

import "context"

// TimesheetService is the attendance entry lifecycle: OPEN on clock-in,
// CLOSED exactly once on clock-out, amendable only through the explicit
// manual-correction path.
type TimesheetService interface {
	// ClockIn opens a new entry. Fails with ErrAlreadyClockedIn while an
	// open entry exists; Force bypasses only a carried-over open entry from
	// a previous period.
	ClockIn(ctx context.Context, req ClockInRequest) (ClockResult, error)

	// ClockOut closes the open entry, re-resolving the shift assignment and
	// computing duration, undertime and excess. Fails with ErrNoOpenEntry.
	ClockOut(ctx context.Context, req ClockOutRequest) (ClockResult, error)

	// ManualCorrect amends time_in or time_out of an entry and re-runs the
	// resolution and computation pipeline.
	ManualCorrect(ctx context.Context, req ManualCorrectRequest) (ClockResult, error)

	// EntriesWithin lists an employee's entries in a shift-date range,
	// ascending by time_in.
	EntriesWithin(ctx context.Context, filter ListFilter) ([]TimesheetResponse, error)
}
