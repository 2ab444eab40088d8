package timesheet

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timesheet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noHolidays() *fakeHolidays {
	return &fakeHolidays{days: map[string]bool{}}
}

func assertExclusive(t *testing.T, e timesheet.Timesheet) {
	t.Helper()
	if e.MinutesExcess > 0 {
		assert.Zero(t, e.MinutesUndertime, "excess and undertime must be mutually exclusive")
	}
	if e.MinutesUndertime > 0 {
		assert.Zero(t, e.MinutesExcess, "excess and undertime must be mutually exclusive")
	}
}

func TestComputer_UndertimeBoundary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	comp := NewComputer(noHolidays())

	entry := testEntry("ts-1", daySchedule("day"), monday(), mondayAt(9, 0), timePtr(mondayAt(16, 30)))

	got, zeroIDs, err := comp.Compute(ctx, testEmployee(), entry, nil, time.UTC)

	require.NoError(t, err)
	assert.Empty(t, zeroIDs)
	assert.Equal(t, 450, got.Duration)
	assert.Equal(t, 30, got.MinutesUndertime)
	assert.Equal(t, 0, got.MinutesExcess)
	assertExclusive(t, got)
}

func TestComputer_ExcessBoundary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	comp := NewComputer(noHolidays())

	entry := testEntry("ts-1", daySchedule("day"), monday(), mondayAt(9, 0), timePtr(mondayAt(17, 20)))

	got, _, err := comp.Compute(ctx, testEmployee(), entry, nil, time.UTC)

	require.NoError(t, err)
	assert.Equal(t, 500, got.Duration)
	assert.Equal(t, 0, got.MinutesUndertime)
	assert.Equal(t, 20, got.MinutesExcess)
	assertExclusive(t, got)
}

func TestComputer_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	comp := NewComputer(noHolidays())

	entry := testEntry("ts-1", daySchedule("day"), monday(), mondayAt(9, 0), timePtr(mondayAt(16, 30)))

	first, _, err := comp.Compute(ctx, testEmployee(), entry, nil, time.UTC)
	require.NoError(t, err)
	second, _, err := comp.Compute(ctx, testEmployee(), first, nil, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

// Three punch pairs inside one shift: only the closing entry of the block
// carries the totals, anchored at the first punch.
func TestComputer_MergePolicy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	emp := testEmployee()
	comp := NewComputer(noHolidays())
	sched := daySchedule("day")

	e1 := testEntry("ts-1", sched, monday(), mondayAt(8, 0), timePtr(mondayAt(9, 0)))
	e1, zeroIDs, err := comp.Compute(ctx, emp, e1, nil, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, zeroIDs)
	// The 08:00 punch is clamped to the 09:00 window floor.
	assert.Equal(t, 0, e1.Duration)
	assert.Equal(t, 480, e1.MinutesUndertime)

	e2 := testEntry("ts-2", sched, monday(), mondayAt(9, 0), timePtr(mondayAt(12, 0)))
	e2, zeroIDs, err = comp.Compute(ctx, emp, e2, []timesheet.Timesheet{e1}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"ts-1"}, zeroIDs)
	assert.Equal(t, 180, e2.Duration)
	assert.Equal(t, 300, e2.MinutesUndertime)

	e1.Duration, e1.MinutesUndertime, e1.MinutesExcess = 0, 0, 0

	e3 := testEntry("ts-3", sched, monday(), mondayAt(12, 0), timePtr(mondayAt(17, 0)))
	e3, zeroIDs, err = comp.Compute(ctx, emp, e3, []timesheet.Timesheet{e1, e2}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, []string{"ts-1", "ts-2"}, zeroIDs)
	assert.Equal(t, 480, e3.Duration, "closing entry spans from the block's first punch")
	assert.Equal(t, 0, e3.MinutesUndertime)
	assert.Equal(t, 0, e3.MinutesExcess)
	assertExclusive(t, e3)
}

func TestComputer_MinutesLate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	emp := testEmployee()

	entry := testEntry("ts-1", daySchedule("day"), monday(), mondayAt(9, 30), nil)

	comp := NewComputer(noHolidays())
	late, err := comp.MinutesLate(ctx, emp, entry, nil, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 15, late)

	// The same punch on a holiday accrues nothing.
	holidayComp := NewComputer(&fakeHolidays{days: map[string]bool{monday().Format("2006-01-02"): true}})
	late, err = holidayComp.MinutesLate(ctx, emp, entry, nil, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 0, late)
}

func TestComputer_LateOnlyForFirstEntry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	comp := NewComputer(noHolidays())
	sched := daySchedule("day")

	prior := testEntry("ts-1", sched, monday(), mondayAt(9, 0), timePtr(mondayAt(10, 0)))
	entry := testEntry("ts-2", sched, monday(), mondayAt(10, 30), nil)

	late, err := comp.MinutesLate(ctx, testEmployee(), entry, []timesheet.Timesheet{prior}, time.UTC)

	require.NoError(t, err)
	assert.Equal(t, 0, late)
}

func TestComputer_DayOffPunchCountsAsExcess(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	comp := NewComputer(noHolidays())

	sched := daySchedule("day")
	sched.Details[1].IsDayOff = true
	entry := testEntry("ts-1", sched, monday(), mondayAt(10, 0), timePtr(mondayAt(12, 0)))

	got, _, err := comp.Compute(ctx, testEmployee(), entry, nil, time.UTC)

	require.NoError(t, err)
	assert.Equal(t, 120, got.Duration)
	assert.Equal(t, 0, got.MinutesUndertime)
	assert.Equal(t, 120, got.MinutesExcess)
}

// A work-day punch outside the shift window with no within-shift punch
// before it is logged but not counted.
func TestComputer_OutsideWindowPendingStaysZero(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	comp := NewComputer(noHolidays())

	entry := testEntry("ts-1", daySchedule("day"), monday(), mondayAt(19, 0), timePtr(mondayAt(20, 0)))

	got, zeroIDs, err := comp.Compute(ctx, testEmployee(), entry, nil, time.UTC)

	require.NoError(t, err)
	assert.Empty(t, zeroIDs)
	assert.Zero(t, got.Duration)
	assert.Zero(t, got.MinutesUndertime)
	assert.Zero(t, got.MinutesExcess)
}

func TestComputer_OvertimeAfterFullShift(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	emp := testEmployee()
	comp := NewComputer(noHolidays())
	sched := daySchedule("day")

	e1 := testEntry("ts-1", sched, monday(), mondayAt(9, 0), timePtr(mondayAt(17, 0)))
	e1, _, err := comp.Compute(ctx, emp, e1, nil, time.UTC)
	require.NoError(t, err)
	require.Equal(t, 480, e1.Duration)

	e2 := testEntry("ts-2", sched, monday(), mondayAt(18, 0), timePtr(mondayAt(19, 0)))
	e2, _, err = comp.Compute(ctx, emp, e2, []timesheet.Timesheet{e1}, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, 60, e2.Duration)
	assert.Equal(t, 60, e2.MinutesExcess)
	assert.Equal(t, 0, e2.MinutesUndertime)
}

// An outstanding undertime balance from the shift absorbs later extra time
// before any of it counts as excess.
func TestComputer_UndertimeAbsorbsOvertime(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	emp := testEmployee()
	comp := NewComputer(noHolidays())
	sched := daySchedule("day")

	e1 := testEntry("ts-1", sched, monday(), mondayAt(9, 0), timePtr(mondayAt(16, 0)))
	e1, _, err := comp.Compute(ctx, emp, e1, nil, time.UTC)
	require.NoError(t, err)
	require.Equal(t, 60, e1.MinutesUndertime)

	e2 := testEntry("ts-2", sched, monday(), mondayAt(17, 30), timePtr(mondayAt(18, 30)))
	e2, _, err = comp.Compute(ctx, emp, e2, []timesheet.Timesheet{e1}, time.UTC)
	require.NoError(t, err)

	assert.Equal(t, 60, e2.Duration)
	assert.Equal(t, 0, e2.MinutesExcess)
	assert.Equal(t, 0, e2.MinutesUndertime)
}
