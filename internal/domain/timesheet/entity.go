package timesheet

import (
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
)

// Timesheet is one attendance entry. ShiftDate is the logical work day the
// punch pair belongs to, which for overnight shifts can differ from the
// calendar date of TimeIn. TimeOut is nil while the entry is open.
//
// Duration, MinutesUndertime and MinutesExcess are zero and meaningless
// while open; they are set at the clock-out transition and may later be
// zeroed again when a subsequent entry of the same shift day supersedes
// this one (merge policy).
type Timesheet struct {
	ID         string
	EmployeeID string
	ShiftDate  time.Time
	TimeIn     time.Time
	TimeOut    *time.Time

	Schedule        shift.Schedule
	Detail          shift.Detail
	NextDaySchedule shift.Schedule
	NextDayDetail   shift.Detail

	Duration         int
	MinutesLate      int
	MinutesUndertime int
	MinutesExcess    int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Open reports whether the entry is still awaiting its clock-out.
func (t Timesheet) Open() bool {
	return t.TimeOut == nil
}
