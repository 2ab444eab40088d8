package shift

import "time"

// Schedule is a named weekly shift pattern: exactly one detail per day of
// week, Sunday-based (0-6).
type Schedule struct {
	ID        string
	CompanyID string
	Name      string
	Details   [7]Detail
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DetailFor returns the detail governing the given day of week.
func (s Schedule) DetailFor(day time.Weekday) Detail {
	return s.Details[int(day)]
}

// Detail describes one day of a schedule. Times are minutes past the shift
// date's midnight; values of 1440 or more land on the following calendar
// day, which is how overnight shifts are encoded.
type Detail struct {
	ID               string
	ScheduleID       string
	DayOfWeek        int
	ClockInEarliest  int
	ClockInLatest    int
	ClockOutEarliest int
	ClockOutLatest   int
	ShiftTotalTime   int
	IsDayOff         bool
}

// Assignment binds an employee to a schedule for an effective date range.
// A nil EndDate means open-ended.
type Assignment struct {
	ID         string
	EmployeeID string
	ScheduleID string
	StartDate  time.Time
	EndDate    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Covers reports whether the assignment is in effect on the given date.
func (a Assignment) Covers(date time.Time) bool {
	if date.Before(DateOf(a.StartDate)) {
		return false
	}
	if a.EndDate == nil {
		return true
	}
	return !date.After(DateOf(*a.EndDate))
}

// Malformed reports an end date earlier than the start date.
func (a Assignment) Malformed() bool {
	return a.EndDate != nil && a.EndDate.Before(a.StartDate)
}
