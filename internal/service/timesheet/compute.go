package timesheet

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timesheet"
)

// Computer derives duration, undertime and excess for a closed entry,
// applying the merge policy across the other punches of the same shift day.
type Computer struct {
	holidays holiday.Calendar
}

func NewComputer(holidays holiday.Calendar) *Computer {
	return &Computer{holidays: holidays}
}

// Compute fills in the entry's duration, minutes_undertime and
// minutes_excess. siblings are all entries of the employee sharing the
// entry's shift day, ascending by time_in; entries punched after this one
// are ignored. The returned ids are prior entries whose totals must be
// zeroed in the same transaction: when a later punch continues an earlier
// block, only the closing entry carries the totals.
func (c *Computer) Compute(ctx context.Context, emp employee.Employee, entry timesheet.Timesheet, siblings []timesheet.Timesheet, loc *time.Location) (timesheet.Timesheet, []string, error) {
	if entry.TimeOut == nil {
		return entry, nil, nil
	}

	prior := priorPunches(entry, siblings)
	timeOut := entry.TimeOut.In(loc)

	within, err := c.isWithinShift(ctx, emp, entry, prior, loc)
	if err != nil {
		return timesheet.Timesheet{}, nil, err
	}

	if within {
		anchor := entry
		if len(prior) > 0 {
			anchor = prior[0]
		}
		anchorIn, err := c.effectiveTimeIn(ctx, emp.BranchID, anchor, loc)
		if err != nil {
			return timesheet.Timesheet{}, nil, err
		}
		validOut, err := c.validTimeOut(ctx, emp.BranchID, anchor, loc)
		if err != nil {
			return timesheet.Timesheet{}, nil, err
		}

		entry.Duration = floorMinutes(timeOut.Sub(anchorIn))
		entry.MinutesUndertime = maxInt(0, ceilMinutes(validOut.Sub(timeOut)))
		if entry.MinutesUndertime > 0 {
			entry.MinutesExcess = 0
		} else {
			entry.MinutesExcess = maxInt(0, floorMinutes(timeOut.Sub(validOut)))
		}

		var zeroIDs []string
		for _, p := range prior {
			zeroIDs = append(zeroIDs, p.ID)
		}
		return entry, zeroIDs, nil
	}

	// Outside the shift window the punch only counts when the day is not a
	// work day, or regular shift time was already rendered by an earlier
	// within-shift punch. Otherwise it stays zeroed, pending a later punch
	// that does qualify.
	workDay, err := c.isWorkDay(ctx, emp.BranchID, entry.Detail, entry.ShiftDate)
	if err != nil {
		return timesheet.Timesheet{}, nil, err
	}
	counts := !workDay
	if !counts {
		counts, err = c.anyWithinShift(ctx, emp, prior, loc)
		if err != nil {
			return timesheet.Timesheet{}, nil, err
		}
	}
	if !counts {
		return entry, nil, nil
	}

	effIn, err := c.effectiveTimeIn(ctx, emp.BranchID, entry, loc)
	if err != nil {
		return timesheet.Timesheet{}, nil, err
	}
	undertimes := 0
	for _, p := range prior {
		undertimes += p.MinutesUndertime
	}
	entry.Duration = floorMinutes(timeOut.Sub(effIn))
	entry.MinutesUndertime = 0
	// An outstanding undertime balance absorbs the extra time before any of
	// it counts as excess.
	if undertimes > 0 {
		entry.MinutesExcess = 0
	} else {
		entry.MinutesExcess = entry.Duration
	}
	return entry, nil, nil
}

// MinutesLate computes lateness at clock-in. Only the first punch of a
// shift day accrues lateness, only on work days, and only when the punch
// falls within the shift window.
func (c *Computer) MinutesLate(ctx context.Context, emp employee.Employee, entry timesheet.Timesheet, siblings []timesheet.Timesheet, loc *time.Location) (int, error) {
	prior := priorPunches(entry, siblings)
	if len(prior) > 0 {
		return 0, nil
	}

	workDay, err := c.isWorkDay(ctx, emp.BranchID, entry.Detail, entry.ShiftDate)
	if err != nil {
		return 0, err
	}
	if !workDay {
		return 0, nil
	}

	within, err := c.isWithinShift(ctx, emp, entry, prior, loc)
	if err != nil {
		return 0, err
	}
	if !within {
		return 0, nil
	}

	effIn, err := c.effectiveTimeIn(ctx, emp.BranchID, entry, loc)
	if err != nil {
		return 0, err
	}
	cutoff := entry.Detail.ValidClockIn(entry.ShiftDate).Max
	if !effIn.After(cutoff) {
		return 0, nil
	}
	return floorMinutes(effIn.Sub(cutoff)), nil
}

// isWithinShift reports whether the entry's punch falls inside the nominal
// working block of its shift day. The block is anchored at the first
// punch's effective time_in, capped at the clock-in cutoff, and extends for
// the shift's nominal minutes. Never true on non-work days or once the
// prior punches already rendered the full nominal time.
func (c *Computer) isWithinShift(ctx context.Context, emp employee.Employee, entry timesheet.Timesheet, prior []timesheet.Timesheet, loc *time.Location) (bool, error) {
	workDay, err := c.isWorkDay(ctx, emp.BranchID, entry.Detail, entry.ShiftDate)
	if err != nil {
		return false, err
	}
	if !workDay {
		return false, nil
	}

	rendered := 0
	for _, p := range prior {
		rendered += p.Duration
	}
	if rendered >= entry.Detail.NominalMinutes() {
		return false, nil
	}

	first := entry
	if len(prior) > 0 {
		first = prior[0]
	}
	start, err := c.effectiveTimeIn(ctx, emp.BranchID, first, loc)
	if err != nil {
		return false, err
	}
	if cutoff := entry.Detail.ValidClockIn(first.ShiftDate).Max; start.After(cutoff) {
		start = cutoff
	}
	end := start.Add(time.Duration(entry.Detail.NominalMinutes()) * time.Minute)

	effIn, err := c.effectiveTimeIn(ctx, emp.BranchID, entry, loc)
	if err != nil {
		return false, err
	}
	return shift.Window{Min: start, Max: end}.Covers(effIn), nil
}

// anyWithinShift reports whether any of the ordered prior punches was
// itself a within-shift punch at the time it closed.
func (c *Computer) anyWithinShift(ctx context.Context, emp employee.Employee, prior []timesheet.Timesheet, loc *time.Location) (bool, error) {
	for i, p := range prior {
		within, err := c.isWithinShift(ctx, emp, p, prior[:i], loc)
		if err != nil {
			return false, err
		}
		if within {
			return true, nil
		}
	}
	return false, nil
}

// effectiveTimeIn is the punch time the computation works with: the raw
// time_in, clamped up to the clock-in window's lower bound on non-holidays
// so that punching early never inflates worked time.
func (c *Computer) effectiveTimeIn(ctx context.Context, branchID string, entry timesheet.Timesheet, loc *time.Location) (time.Time, error) {
	raw := entry.TimeIn.In(loc)
	isHoliday, err := c.holidays.IsHoliday(ctx, branchID, shift.DateOf(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to check holiday: %w", err)
	}
	if isHoliday {
		return raw, nil
	}
	if min := entry.Detail.ValidClockIn(entry.ShiftDate).Min; raw.Before(min) {
		return min, nil
	}
	return raw, nil
}

// validTimeOut is the theoretical end of the entry's working block: the
// clock-out window's upper bound when the entry was late, otherwise the
// effective time_in plus the shift's nominal minutes.
func (c *Computer) validTimeOut(ctx context.Context, branchID string, entry timesheet.Timesheet, loc *time.Location) (time.Time, error) {
	if entry.MinutesLate > 0 {
		return entry.Detail.ValidClockOut(entry.ShiftDate).Max, nil
	}
	effIn, err := c.effectiveTimeIn(ctx, branchID, entry, loc)
	if err != nil {
		return time.Time{}, err
	}
	return effIn.Add(time.Duration(entry.Detail.NominalMinutes()) * time.Minute), nil
}

func (c *Computer) isWorkDay(ctx context.Context, branchID string, detail shift.Detail, date time.Time) (bool, error) {
	if detail.IsDayOff {
		return false, nil
	}
	isHoliday, err := c.holidays.IsHoliday(ctx, branchID, date)
	if err != nil {
		return false, fmt.Errorf("failed to check holiday: %w", err)
	}
	return !isHoliday, nil
}

// priorPunches filters siblings down to the entries punched before the
// given one, keeping ascending time_in order.
func priorPunches(entry timesheet.Timesheet, siblings []timesheet.Timesheet) []timesheet.Timesheet {
	var prior []timesheet.Timesheet
	for _, s := range siblings {
		if s.ID == entry.ID || s.TimeIn.After(entry.TimeIn) {
			continue
		}
		prior = append(prior, s)
	}
	return prior
}

// floorMinutes truncates toward negative infinity so partial-minute
// duration and excess are never over-reported.
func floorMinutes(d time.Duration) int {
	return int(math.Floor(d.Minutes()))
}

// ceilMinutes rounds toward positive infinity so partial-minute undertime
// is never under-reported.
func ceilMinutes(d time.Duration) int {
	return int(math.Ceil(d.Minutes()))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
