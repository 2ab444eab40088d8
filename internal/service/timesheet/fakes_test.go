package timesheet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/branch"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timesheet"
	"github.com/jonboulle/clockwork"
)

const (
	testEmployeeID = "employee-1"
	testBranchID   = "branch-1"
)

// dayDetail is a 09:00-17:00 shift: clock-in window 09:00-09:15, clock-out
// window 17:00-18:00, 480 nominal minutes.
func dayDetail(scheduleID string, day int) shift.Detail {
	return shift.Detail{
		ID:               fmt.Sprintf("%s-d%d", scheduleID, day),
		ScheduleID:       scheduleID,
		DayOfWeek:        day,
		ClockInEarliest:  9 * 60,
		ClockInLatest:    9*60 + 15,
		ClockOutEarliest: 17 * 60,
		ClockOutLatest:   18 * 60,
		ShiftTotalTime:   480,
	}
}

func daySchedule(id string) shift.Schedule {
	s := shift.Schedule{ID: id, CompanyID: "company-1", Name: "Day Shift"}
	for i := 0; i < 7; i++ {
		s.Details[i] = dayDetail(id, i)
	}
	return s
}

// nightDetail is a 22:00-06:00 graveyard shift: clock-in window 21:30-22:30,
// clock-out window 05:00-06:30 on the following day.
func nightDetail(scheduleID string, day int) shift.Detail {
	return shift.Detail{
		ID:               fmt.Sprintf("%s-d%d", scheduleID, day),
		ScheduleID:       scheduleID,
		DayOfWeek:        day,
		ClockInEarliest:  21*60 + 30,
		ClockInLatest:    22*60 + 30,
		ClockOutEarliest: 29 * 60,
		ClockOutLatest:   30*60 + 30,
		ShiftTotalTime:   480,
	}
}

func nightSchedule(id string) shift.Schedule {
	s := shift.Schedule{ID: id, CompanyID: "company-1", Name: "Night Shift"}
	for i := 0; i < 7; i++ {
		s.Details[i] = nightDetail(id, i)
	}
	return s
}

// testEntry builds an entry resolved against the given schedule, the way
// the clock-in path would have created it.
func testEntry(id string, sched shift.Schedule, shiftDate, in time.Time, out *time.Time) timesheet.Timesheet {
	det := sched.DetailFor(shiftDate.Weekday())
	next := sched.DetailFor(time.Weekday((det.DayOfWeek + 1) % 7))
	return timesheet.Timesheet{
		ID:              id,
		EmployeeID:      testEmployeeID,
		ShiftDate:       shiftDate,
		TimeIn:          in,
		TimeOut:         out,
		Schedule:        sched,
		Detail:          det,
		NextDaySchedule: sched,
		NextDayDetail:   next,
	}
}

func timePtr(t time.Time) *time.Time { return &t }

type fakeCalendar struct {
	byID        map[string]shift.Schedule
	assignments []shift.Assignment
	fallback    string
}

func (c *fakeCalendar) ScheduleFor(_ context.Context, employeeID string, at time.Time) (shift.Schedule, error) {
	date := shift.DateOf(at)
	for _, a := range c.assignments {
		if a.EmployeeID == employeeID && !a.Malformed() && a.Covers(date) {
			return c.byID[a.ScheduleID], nil
		}
	}
	if c.fallback != "" {
		return c.byID[c.fallback], nil
	}
	return shift.Schedule{}, shift.ErrNoScheduleFound
}

func (c *fakeCalendar) Assignments(_ context.Context, employeeID string) ([]shift.Assignment, error) {
	var out []shift.Assignment
	for _, a := range c.assignments {
		if a.EmployeeID == employeeID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeHolidays struct {
	days map[string]bool
}

func (h *fakeHolidays) IsHoliday(_ context.Context, _ string, date time.Time) (bool, error) {
	return h.days[date.Format("2006-01-02")], nil
}

// fakeStore is an in-memory TimesheetRepository that doubles as the
// TxRunner: InTx serializes, so concurrent lifecycle calls observe a
// consistent open/closed state just like the database transaction does.
type fakeStore struct {
	txMu    sync.Mutex
	mu      sync.Mutex
	entries map[string]timesheet.Timesheet
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]timesheet.Timesheet)}
}

func (s *fakeStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(ctx)
}

func (s *fakeStore) LockEmployee(context.Context, string) error { return nil }

func (s *fakeStore) Create(_ context.Context, entry timesheet.Timesheet) (timesheet.Timesheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	s.entries[entry.ID] = entry
	return entry, nil
}

func (s *fakeStore) Update(_ context.Context, entry timesheet.Timesheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.ID]; !ok {
		return timesheet.ErrTimesheetNotFound
	}
	entry.UpdatedAt = time.Now()
	s.entries[entry.ID] = entry
	return nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (timesheet.Timesheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
	}
	return entry, nil
}

func (s *fakeStore) GetOpenEntry(_ context.Context, employeeID string) (*timesheet.Timesheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var open *timesheet.Timesheet
	for _, e := range s.entries {
		if e.EmployeeID != employeeID || !e.Open() {
			continue
		}
		e := e
		if open == nil || e.TimeIn.Before(open.TimeIn) {
			open = &e
		}
	}
	return open, nil
}

func (s *fakeStore) SameShiftDay(_ context.Context, employeeID string, shiftDate time.Time) ([]timesheet.Timesheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []timesheet.Timesheet
	for _, e := range s.entries {
		if e.EmployeeID == employeeID && sameDate(e.ShiftDate, shiftDate) {
			out = append(out, e)
		}
	}
	sortByTimeIn(out)
	return out, nil
}

func (s *fakeStore) ZeroTotals(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		e, ok := s.entries[id]
		if !ok {
			return timesheet.ErrTimesheetNotFound
		}
		e.Duration = 0
		e.MinutesUndertime = 0
		e.MinutesExcess = 0
		s.entries[id] = e
	}
	return nil
}

func (s *fakeStore) Within(_ context.Context, employeeID string, from, to time.Time) ([]timesheet.Timesheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []timesheet.Timesheet
	for _, e := range s.entries {
		if e.EmployeeID != employeeID {
			continue
		}
		day := e.ShiftDate.Format("2006-01-02")
		if day >= from.Format("2006-01-02") && day <= to.Format("2006-01-02") {
			out = append(out, e)
		}
	}
	sortByTimeIn(out)
	return out, nil
}

func (s *fakeStore) LastClosed(_ context.Context, employeeID string) (*timesheet.Timesheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var last *timesheet.Timesheet
	for _, e := range s.entries {
		if e.EmployeeID != employeeID || e.Open() {
			continue
		}
		e := e
		if last == nil || e.TimeOut.After(*last.TimeOut) {
			last = &e
		}
	}
	return last, nil
}

func (s *fakeStore) StaleOpenEntries(_ context.Context, before time.Time) ([]timesheet.Timesheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []timesheet.Timesheet
	for _, e := range s.entries {
		if e.Open() && e.ShiftDate.Before(before) {
			out = append(out, e)
		}
	}
	sortByTimeIn(out)
	return out, nil
}

func sameDate(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

func sortByTimeIn(entries []timesheet.Timesheet) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].TimeIn.Before(entries[j].TimeIn)
	})
}

type fakeEmployees struct {
	byID map[string]employee.Employee
}

func (f *fakeEmployees) GetByID(_ context.Context, id string) (employee.Employee, error) {
	emp, ok := f.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

type fakeBranches struct {
	timezone string
}

func (f *fakeBranches) GetByID(context.Context, string) (branch.Branch, error) {
	return branch.Branch{ID: testBranchID, Timezone: f.timezone}, nil
}

func (f *fakeBranches) GetTimezoneByEmployeeID(context.Context, string) (string, error) {
	return f.timezone, nil
}

type fakeEmail struct {
	mu          sync.Mutex
	fail        bool
	corrections []string
	reminders   []string
}

func (f *fakeEmail) SendCorrectionNotice(to, _, _, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp unavailable")
	}
	f.corrections = append(f.corrections, to)
	return nil
}

func (f *fakeEmail) SendOpenEntryReminder(to, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("smtp unavailable")
	}
	f.reminders = append(f.reminders, to)
	return nil
}

// engineFixture wires the lifecycle service against in-memory fakes and a
// controllable clock.
type engineFixture struct {
	store    *fakeStore
	calendar *fakeCalendar
	holidays *fakeHolidays
	mail     *fakeEmail
	clock    *clockwork.FakeClock
	emp      employee.Employee
	svc      timesheet.TimesheetService
}

func newEngineFixture(start time.Time) *engineFixture {
	supervisor := "supervisor@example.com"
	emp := employee.Employee{
		ID:              testEmployeeID,
		CompanyID:       "company-1",
		BranchID:        testBranchID,
		FullName:        "Dina Putri",
		Email:           "dina@example.com",
		SupervisorEmail: &supervisor,
	}

	f := &engineFixture{
		store: newFakeStore(),
		calendar: &fakeCalendar{
			byID:     map[string]shift.Schedule{"day": daySchedule("day")},
			fallback: "day",
		},
		holidays: &fakeHolidays{days: map[string]bool{}},
		mail:     &fakeEmail{},
		clock:    clockwork.NewFakeClockAt(start),
		emp:      emp,
	}

	f.svc = NewTimesheetService(
		f.store,
		f.store,
		&fakeEmployees{byID: map[string]employee.Employee{emp.ID: emp}},
		&fakeBranches{timezone: "UTC"},
		NewResolver(f.calendar, f.holidays),
		NewComputer(f.holidays),
		f.clock,
		f.mail,
	)
	return f
}
