package timesheet

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timesheet"
)

// Resolution is the outcome of assigning a punch to a logical shift day.
type Resolution struct {
	ShiftDate       time.Time
	Schedule        shift.Schedule
	Detail          shift.Detail
	NextDaySchedule shift.Schedule
	NextDayDetail   shift.Detail
}

// Resolver assigns raw punches to shift days. ResolveClockIn makes the
// initial guess from the clock-in timestamp; ResolveClockOut revisits it
// once the clock-out timestamp is known, because only then can an overnight
// or off-day punch pair be attributed with certainty.
type Resolver struct {
	shifts   shift.Calendar
	holidays holiday.Calendar
}

func NewResolver(shifts shift.Calendar, holidays holiday.Calendar) *Resolver {
	return &Resolver{shifts: shifts, holidays: holidays}
}

// ResolveClockIn resolves the shift day a clock-in belongs to. The calendar
// date of timeIn is the initial guess; the detail's overnight rollback rule
// may pull it back one day, and if the schedule assignment active on the
// corrected date differs from the guessed one the lookup is redone against
// the correct schedule.
func (r *Resolver) ResolveClockIn(ctx context.Context, emp employee.Employee, timeIn time.Time) (Resolution, error) {
	naiveDate := shift.DateOf(timeIn)

	schedule, err := r.shifts.ScheduleFor(ctx, emp.ID, naiveDate)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to resolve schedule: %w", err)
	}
	detail := schedule.DetailFor(timeIn.Weekday())
	shiftDate := detail.ShiftDate(timeIn)

	// The rollback may have landed on a date governed by a different
	// assignment than the naive guess. Redo the lookup from that date.
	covered, err := r.assignmentCovers(ctx, emp.ID, schedule.ID, shiftDate)
	if err != nil {
		return Resolution{}, err
	}
	if !covered {
		schedule, err = r.shifts.ScheduleFor(ctx, emp.ID, shiftDate)
		if err != nil {
			return Resolution{}, fmt.Errorf("failed to resolve schedule: %w", err)
		}
		detail = schedule.DetailFor(timeIn.Weekday())
		shiftDate = detail.ShiftDate(timeIn)
	}

	res := Resolution{
		ShiftDate: shiftDate,
		Schedule:  schedule,
		Detail:    detail,
	}
	if err := r.resolveNextDay(ctx, emp.ID, &res); err != nil {
		return Resolution{}, err
	}
	return res, nil
}

// ResolveClockOut re-resolves a just-closed entry's shift day. Idempotent:
// when the raw time_in sits inside the assigned shift's range on a work day
// the assignment already holds and the entry is returned unchanged.
func (r *Resolver) ResolveClockOut(ctx context.Context, emp employee.Employee, entry timesheet.Timesheet, loc *time.Location) (timesheet.Timesheet, error) {
	if entry.TimeOut == nil {
		return entry, nil
	}

	shiftDate := entry.ShiftDate
	timeIn := entry.TimeIn.In(loc)
	timeOut := entry.TimeOut.In(loc)

	shiftRange := entry.Detail.ShiftRange(shiftDate)
	shiftStart := shiftRange.Min

	workDay, err := r.isWorkDay(ctx, emp.BranchID, entry.Detail, shiftDate)
	if err != nil {
		return timesheet.Timesheet{}, err
	}
	if shiftRange.Covers(timeIn) && workDay {
		return entry, nil
	}

	// When no assignment of the resolved schedule covers the shift date the
	// stored shift start is stale; recompute it from the schedule actually
	// active on that date.
	covered, err := r.assignmentCovers(ctx, emp.ID, entry.Schedule.ID, shiftDate)
	if err != nil {
		return timesheet.Timesheet{}, err
	}
	if !covered {
		active, err := r.shifts.ScheduleFor(ctx, emp.ID, shiftDate)
		if err != nil {
			return timesheet.Timesheet{}, fmt.Errorf("failed to resolve schedule: %w", err)
		}
		activeDetail := active.DetailFor(time.Weekday(entry.Detail.DayOfWeek))
		shiftStart = activeDetail.ValidClockIn(shiftDate).Min
	}

	// Upper clock-in bound of the following shift. A clock-out beyond it
	// cannot belong to this shift day anymore.
	maxEnd := entry.NextDayDetail.ValidClockIn(shiftDate.AddDate(0, 0, 1)).Max

	diff := 0
	if shiftRange.Covers(timeIn) {
		// Reached only on non-work days: a punch pair entirely before the
		// nominal start belongs to the previous shift day.
		if timeIn.Before(shiftStart) && timeOut.Before(shiftStart) {
			diff = -1
		}
	} else {
		if timeIn.After(shiftStart) && timeOut.After(maxEnd) {
			diff = 1
		}
		if timeIn.Before(shiftStart) && timeOut.Before(shiftStart) {
			diff = -1
		}
	}
	if diff == 0 {
		return entry, nil
	}

	newDate := shiftDate.AddDate(0, 0, diff)
	schedule, err := r.shifts.ScheduleFor(ctx, emp.ID, newDate)
	if err != nil {
		return timesheet.Timesheet{}, fmt.Errorf("failed to resolve schedule: %w", err)
	}

	entry.ShiftDate = newDate
	entry.Schedule = schedule
	// The corrected date already reflects the roll; look the detail up by
	// its own day of week, not by the raw timestamp.
	entry.Detail = schedule.DetailFor(newDate.Weekday())

	res := Resolution{ShiftDate: newDate, Schedule: schedule, Detail: entry.Detail}
	if err := r.resolveNextDay(ctx, emp.ID, &res); err != nil {
		return timesheet.Timesheet{}, err
	}
	entry.NextDaySchedule = res.NextDaySchedule
	entry.NextDayDetail = res.NextDayDetail

	return entry, nil
}

// resolveNextDay fills in the schedule and detail for the day after the
// resolution's shift date, needed later for overnight boundary checks.
func (r *Resolver) resolveNextDay(ctx context.Context, employeeID string, res *Resolution) error {
	nextDate := res.ShiftDate.AddDate(0, 0, 1)
	nextSchedule, err := r.shifts.ScheduleFor(ctx, employeeID, nextDate)
	if err != nil {
		return fmt.Errorf("failed to resolve next-day schedule: %w", err)
	}
	nextDay := (res.Detail.DayOfWeek + 1) % 7
	res.NextDaySchedule = nextSchedule
	res.NextDayDetail = nextSchedule.DetailFor(time.Weekday(nextDay))
	return nil
}

// assignmentCovers reports whether any of the employee's assignments to the
// given schedule is in effect on the date. Malformed assignment ranges are a
// configuration error.
func (r *Resolver) assignmentCovers(ctx context.Context, employeeID, scheduleID string, date time.Time) (bool, error) {
	assignments, err := r.shifts.Assignments(ctx, employeeID)
	if err != nil {
		return false, fmt.Errorf("failed to get schedule assignments: %w", err)
	}
	for _, a := range assignments {
		if a.ScheduleID != scheduleID {
			continue
		}
		if a.Malformed() {
			return false, shift.ErrMalformedAssignment
		}
		if a.Covers(date) {
			return true, nil
		}
	}
	return false, nil
}

// isWorkDay reports whether the shift date is a regular working day: not
// the detail's day off and not a branch holiday.
func (r *Resolver) isWorkDay(ctx context.Context, branchID string, detail shift.Detail, date time.Time) (bool, error) {
	if detail.IsDayOff {
		return false, nil
	}
	isHoliday, err := r.holidays.IsHoliday(ctx, branchID, date)
	if err != nil {
		return false, fmt.Errorf("failed to check holiday: %w", err)
	}
	return !isHoliday, nil
}
