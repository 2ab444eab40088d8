package shift

import "time"

const minutesPerDay = 24 * 60

// Window is a closed time interval.
type Window struct {
	Min time.Time
	Max time.Time
}

// Covers reports whether t falls inside the window, bounds included.
func (w Window) Covers(t time.Time) bool {
	return !t.Before(w.Min) && !t.After(w.Max)
}

// DateOf truncates t to midnight in its own location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// at places a minutes-past-midnight offset onto a concrete date. Offsets of
// 1440 or more roll onto the following calendar day.
func at(date time.Time, minutes int) time.Time {
	days, rem := minutes/minutesPerDay, minutes%minutesPerDay
	return time.Date(date.Year(), date.Month(), date.Day()+days, rem/60, rem%60, 0, 0, date.Location())
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// ValidClockIn returns the window in which a clock-in counts toward the
// shift on the given date.
func (d Detail) ValidClockIn(date time.Time) Window {
	return Window{Min: at(date, d.ClockInEarliest), Max: at(date, d.ClockInLatest)}
}

// ValidClockOut returns the window in which a clock-out is expected for the
// shift on the given date.
func (d Detail) ValidClockOut(date time.Time) Window {
	return Window{Min: at(date, d.ClockOutEarliest), Max: at(date, d.ClockOutLatest)}
}

// ShiftRange returns the shift's absolute time range for the given date as
// one contiguous interval. For overnight shifts the end falls on the
// following calendar day.
func (d Detail) ShiftRange(date time.Time) Window {
	return Window{Min: at(date, d.ClockInEarliest), Max: at(date, d.ClockOutLatest)}
}

// NominalMinutes is the shift's nominal working time.
func (d Detail) NominalMinutes() int {
	return d.ShiftTotalTime
}

// SpansMidnight reports whether the shift runs past midnight into the next
// calendar day.
func (d Detail) SpansMidnight() bool {
	return d.ClockOutLatest >= minutesPerDay
}

// ShiftDate returns the shift date a raw local timestamp logically belongs
// to. For an overnight shift, a punch in the early hours before the
// previous day's spillover has ended belongs to the previous shift date: on
// a 22:00-06:00 shift a 01:00 punch is part of yesterday's shift.
func (d Detail) ShiftDate(ts time.Time) time.Time {
	date := DateOf(ts)
	if !d.SpansMidnight() {
		return date
	}
	spillover := d.ClockOutLatest - minutesPerDay
	if minuteOfDay(ts) <= spillover {
		return date.AddDate(0, 0, -1)
	}
	return date
}
