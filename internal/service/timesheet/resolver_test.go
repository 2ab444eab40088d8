package timesheet

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2026-03-02 is a Monday.
func monday() time.Time {
	return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
}

func mondayAt(hour, min int) time.Time {
	return time.Date(2026, 3, 2, hour, min, 0, 0, time.UTC)
}

func testEmployee() employee.Employee {
	return employee.Employee{ID: testEmployeeID, BranchID: testBranchID}
}

func TestResolver_ClockIn_DayShift(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cal := &fakeCalendar{byID: map[string]shift.Schedule{"day": daySchedule("day")}, fallback: "day"}
	r := NewResolver(cal, &fakeHolidays{days: map[string]bool{}})

	res, err := r.ResolveClockIn(ctx, testEmployee(), mondayAt(9, 10))

	require.NoError(t, err)
	assert.Equal(t, monday(), res.ShiftDate)
	assert.Equal(t, "day", res.Schedule.ID)
	assert.Equal(t, 1, res.Detail.DayOfWeek)
	assert.Equal(t, 2, res.NextDayDetail.DayOfWeek)
}

func TestResolver_ClockIn_OvernightBeforeMidnight(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cal := &fakeCalendar{byID: map[string]shift.Schedule{"night": nightSchedule("night")}, fallback: "night"}
	r := NewResolver(cal, &fakeHolidays{days: map[string]bool{}})

	res, err := r.ResolveClockIn(ctx, testEmployee(), mondayAt(23, 30))

	require.NoError(t, err)
	assert.Equal(t, monday(), res.ShiftDate, "late punch stays on its own calendar date")
}

func TestResolver_ClockIn_OvernightAfterMidnight(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cal := &fakeCalendar{byID: map[string]shift.Schedule{"night": nightSchedule("night")}, fallback: "night"}
	r := NewResolver(cal, &fakeHolidays{days: map[string]bool{}})

	// 00:30 on Tuesday still belongs to Monday's graveyard shift.
	res, err := r.ResolveClockIn(ctx, testEmployee(), time.Date(2026, 3, 3, 0, 30, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, monday(), res.ShiftDate)
}

func TestResolver_ClockIn_OvernightAssignmentCoversRolledDate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	end := monday().AddDate(0, 0, 1)
	cal := &fakeCalendar{
		byID: map[string]shift.Schedule{
			"day":   daySchedule("day"),
			"night": nightSchedule("night"),
		},
		assignments: []shift.Assignment{{
			ID:         "assign-1",
			EmployeeID: testEmployeeID,
			ScheduleID: "night",
			StartDate:  monday().AddDate(0, 0, -7),
			EndDate:    &end,
		}},
		fallback: "day",
	}
	r := NewResolver(cal, &fakeHolidays{days: map[string]bool{}})

	res, err := r.ResolveClockIn(ctx, testEmployee(), time.Date(2026, 3, 3, 0, 30, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, "night", res.Schedule.ID)
	assert.Equal(t, monday(), res.ShiftDate)
}

func TestResolver_ClockIn_MalformedAssignment(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	badEnd := monday().AddDate(0, 0, -30)
	cal := &fakeCalendar{
		byID: map[string]shift.Schedule{"day": daySchedule("day")},
		assignments: []shift.Assignment{{
			ID:         "assign-bad",
			EmployeeID: testEmployeeID,
			ScheduleID: "day",
			StartDate:  monday(),
			EndDate:    &badEnd,
		}},
		fallback: "day",
	}
	r := NewResolver(cal, &fakeHolidays{days: map[string]bool{}})

	_, err := r.ResolveClockIn(ctx, testEmployee(), mondayAt(9, 10))

	assert.ErrorIs(t, err, shift.ErrMalformedAssignment)
}

func TestResolver_ClockOut_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cal := &fakeCalendar{byID: map[string]shift.Schedule{"day": daySchedule("day")}, fallback: "day"}
	r := NewResolver(cal, &fakeHolidays{days: map[string]bool{}})

	entry := testEntry("ts-1", daySchedule("day"), monday(), mondayAt(9, 10), timePtr(mondayAt(17, 5)))

	once, err := r.ResolveClockOut(ctx, testEmployee(), entry, time.UTC)
	require.NoError(t, err)
	twice, err := r.ResolveClockOut(ctx, testEmployee(), once, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, entry.ShiftDate, once.ShiftDate)
	assert.Equal(t, once, twice)
}

func TestResolver_ClockOut_RollsForward(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cal := &fakeCalendar{byID: map[string]shift.Schedule{"day": daySchedule("day")}, fallback: "day"}
	r := NewResolver(cal, &fakeHolidays{days: map[string]bool{}})

	// Punched in long after Monday's shift ended and out after Tuesday's
	// clock-in cutoff: the pair belongs to Tuesday.
	entry := testEntry("ts-1", daySchedule("day"), monday(),
		mondayAt(20, 0), timePtr(time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)))

	resolved, err := r.ResolveClockOut(ctx, testEmployee(), entry, time.UTC)

	require.NoError(t, err)
	assert.Equal(t, monday().AddDate(0, 0, 1), resolved.ShiftDate)
	assert.Equal(t, 2, resolved.Detail.DayOfWeek)
	assert.Equal(t, 3, resolved.NextDayDetail.DayOfWeek)
}

func TestResolver_ClockOut_RollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cal := &fakeCalendar{byID: map[string]shift.Schedule{"day": daySchedule("day")}, fallback: "day"}
	r := NewResolver(cal, &fakeHolidays{days: map[string]bool{}})

	// Both punches before Monday's shift start: the pair belongs to Sunday.
	entry := testEntry("ts-1", daySchedule("day"), monday(),
		mondayAt(5, 0), timePtr(mondayAt(8, 0)))

	resolved, err := r.ResolveClockOut(ctx, testEmployee(), entry, time.UTC)

	require.NoError(t, err)
	assert.Equal(t, monday().AddDate(0, 0, -1), resolved.ShiftDate)
	assert.Equal(t, 0, resolved.Detail.DayOfWeek)
}

func TestResolver_ClockOut_HolidayEarlyPairRollsBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// The stored entry was resolved under a stale day schedule; the active
	// schedule is the night shift, so the real start is 21:30 and a holiday
	// morning pair sits entirely before it.
	cal := &fakeCalendar{
		byID:     map[string]shift.Schedule{"night": nightSchedule("night")},
		fallback: "night",
	}
	holidays := &fakeHolidays{days: map[string]bool{monday().Format("2006-01-02"): true}}
	r := NewResolver(cal, holidays)

	entry := testEntry("ts-1", daySchedule("day"), monday(),
		mondayAt(10, 0), timePtr(mondayAt(11, 0)))

	resolved, err := r.ResolveClockOut(ctx, testEmployee(), entry, time.UTC)

	require.NoError(t, err)
	assert.Equal(t, monday().AddDate(0, 0, -1), resolved.ShiftDate)
	assert.Equal(t, "night", resolved.Schedule.ID)
}
