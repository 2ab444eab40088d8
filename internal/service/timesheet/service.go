package timesheet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/branch"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type timesheetServiceImpl struct {
	tx            timesheet.TxRunner
	timesheetRepo timesheet.TimesheetRepository
	employeeRepo  employee.EmployeeRepository
	branchRepo    branch.BranchRepository
	resolver      *Resolver
	computer      *Computer
	clock         clockwork.Clock
	emailService  email.EmailService
}

// NewTimesheetService creates the attendance entry lifecycle service.
func NewTimesheetService(
	tx timesheet.TxRunner,
	timesheetRepo timesheet.TimesheetRepository,
	employeeRepo employee.EmployeeRepository,
	branchRepo branch.BranchRepository,
	resolver *Resolver,
	computer *Computer,
	clock clockwork.Clock,
	emailService email.EmailService,
) timesheet.TimesheetService {
	return &timesheetServiceImpl{
		tx:            tx,
		timesheetRepo: timesheetRepo,
		employeeRepo:  employeeRepo,
		branchRepo:    branchRepo,
		resolver:      resolver,
		computer:      computer,
		clock:         clock,
		emailService:  emailService,
	}
}

// ClockIn opens a new entry for the employee at the current time. The
// open-entry check and the create run in one transaction so two concurrent
// clock-ins cannot both succeed.
func (s *timesheetServiceImpl) ClockIn(ctx context.Context, req timesheet.ClockInRequest) (timesheet.ClockResult, error) {
	emp, loc, err := s.employeeContext(ctx, req.EmployeeID)
	if err != nil {
		return timesheet.ClockResult{}, err
	}

	now := s.clock.Now().In(loc)

	var created timesheet.Timesheet
	var warnings []string
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.timesheetRepo.LockEmployee(ctx, emp.ID); err != nil {
			return err
		}

		open, err := s.timesheetRepo.GetOpenEntry(ctx, emp.ID)
		if err != nil {
			return fmt.Errorf("failed to get open entry: %w", err)
		}
		if open != nil {
			// Force only bypasses an entry carried over from a previous
			// period; an open entry from today or yesterday must be closed
			// first.
			carriedOver := open.ShiftDate.Before(shift.DateOf(now).AddDate(0, 0, -1))
			if !carriedOver || !req.Force {
				return timesheet.ErrAlreadyClockedIn
			}
			warnings = append(warnings, fmt.Sprintf(
				"open entry for %s was left open and needs a manual correction",
				open.ShiftDate.Format("2006-01-02")))
		}

		res, err := s.resolver.ResolveClockIn(ctx, emp, now)
		if err != nil {
			return err
		}

		entry := timesheet.Timesheet{
			ID:              uuid.NewString(),
			EmployeeID:      emp.ID,
			ShiftDate:       res.ShiftDate,
			TimeIn:          now,
			Schedule:        res.Schedule,
			Detail:          res.Detail,
			NextDaySchedule: res.NextDaySchedule,
			NextDayDetail:   res.NextDayDetail,
		}

		siblings, err := s.timesheetRepo.SameShiftDay(ctx, emp.ID, entry.ShiftDate)
		if err != nil {
			return fmt.Errorf("failed to get same-day entries: %w", err)
		}
		entry.MinutesLate, err = s.computer.MinutesLate(ctx, emp, entry, localizeEntries(siblings, loc), loc)
		if err != nil {
			return err
		}

		created, err = s.timesheetRepo.Create(ctx, entry)
		if err != nil {
			return fmt.Errorf("failed to create timesheet entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return timesheet.ClockResult{}, err
	}

	slog.Info("Employee clocked in",
		"employee_id", emp.ID,
		"timesheet_id", created.ID,
		"shift_date", created.ShiftDate.Format("2006-01-02"))

	return timesheet.ClockResult{
		Timesheet: timesheet.MapTimesheetToResponse(created, loc),
		Warnings:  warnings,
	}, nil
}

// ClockOut closes the employee's open entry at the current time:
// re-resolution, duration computation and sibling zeroing commit as one
// transaction, or not at all.
func (s *timesheetServiceImpl) ClockOut(ctx context.Context, req timesheet.ClockOutRequest) (timesheet.ClockResult, error) {
	emp, loc, err := s.employeeContext(ctx, req.EmployeeID)
	if err != nil {
		return timesheet.ClockResult{}, err
	}

	now := s.clock.Now().In(loc)

	var closed timesheet.Timesheet
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.timesheetRepo.LockEmployee(ctx, emp.ID); err != nil {
			return err
		}

		open, err := s.timesheetRepo.GetOpenEntry(ctx, emp.ID)
		if err != nil {
			return fmt.Errorf("failed to get open entry: %w", err)
		}
		if open == nil {
			return timesheet.ErrNoOpenEntry
		}

		entry := localizeEntry(*open, loc)
		timeOut := now
		entry.TimeOut = &timeOut

		closed, err = s.closeEntry(ctx, emp, entry, now, loc)
		return err
	})
	if err != nil {
		return timesheet.ClockResult{}, err
	}

	slog.Info("Employee clocked out",
		"employee_id", emp.ID,
		"timesheet_id", closed.ID,
		"duration", closed.Duration)

	return timesheet.ClockResult{
		Timesheet: timesheet.MapTimesheetToResponse(closed, loc),
	}, nil
}

// ManualCorrect amends one punch time of an entry and re-runs the full
// resolution and computation pipeline. The correction notice email is best
// effort and never rolls the write back.
func (s *timesheetServiceImpl) ManualCorrect(ctx context.Context, req timesheet.ManualCorrectRequest) (timesheet.ClockResult, error) {
	if err := req.Validate(); err != nil {
		return timesheet.ClockResult{}, err
	}
	newTime, _ := validator.IsValidDateTime(req.NewTime)

	existing, err := s.timesheetRepo.GetByID(ctx, req.ID)
	if err != nil {
		return timesheet.ClockResult{}, err
	}

	emp, loc, err := s.employeeContext(ctx, existing.EmployeeID)
	if err != nil {
		return timesheet.ClockResult{}, err
	}

	now := s.clock.Now().In(loc)
	newTime = newTime.In(loc)

	var corrected timesheet.Timesheet
	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.timesheetRepo.LockEmployee(ctx, emp.ID); err != nil {
			return err
		}

		entry, err := s.timesheetRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}
		entry = localizeEntry(entry, loc)

		switch req.Field {
		case timesheet.FieldTimeIn:
			entry.TimeIn = newTime
		case timesheet.FieldTimeOut:
			t := newTime
			entry.TimeOut = &t
		}

		if entry.Open() {
			// Still open: only the clock-in resolution and lateness apply,
			// but the corrected punch must stay after the last closed entry.
			last, err := s.timesheetRepo.LastClosed(ctx, emp.ID)
			if err != nil {
				return fmt.Errorf("failed to get last closed entry: %w", err)
			}
			if last != nil && last.TimeOut != nil && entry.TimeIn.Before(*last.TimeOut) {
				return validator.ValidationErrors{{
					Field:   "time_in",
					Message: "time_in must be later than the previous entry's time_out",
				}}
			}

			res, err := s.resolver.ResolveClockIn(ctx, emp, entry.TimeIn.In(loc))
			if err != nil {
				return err
			}
			entry.ShiftDate = res.ShiftDate
			entry.Schedule = res.Schedule
			entry.Detail = res.Detail
			entry.NextDaySchedule = res.NextDaySchedule
			entry.NextDayDetail = res.NextDayDetail

			siblings, err := s.timesheetRepo.SameShiftDay(ctx, emp.ID, entry.ShiftDate)
			if err != nil {
				return fmt.Errorf("failed to get same-day entries: %w", err)
			}
			entry.MinutesLate, err = s.computer.MinutesLate(ctx, emp, entry, localizeEntries(siblings, loc), loc)
			if err != nil {
				return err
			}

			if err := s.timesheetRepo.Update(ctx, entry); err != nil {
				return fmt.Errorf("failed to update timesheet entry: %w", err)
			}
			corrected = entry
			return nil
		}

		corrected, err = s.closeEntry(ctx, emp, entry, now, loc)
		return err
	})
	if err != nil {
		return timesheet.ClockResult{}, err
	}

	slog.Info("Timesheet entry corrected",
		"timesheet_id", corrected.ID,
		"employee_id", emp.ID,
		"field", req.Field)

	result := timesheet.ClockResult{
		Timesheet: timesheet.MapTimesheetToResponse(corrected, loc),
	}
	result.Warnings = s.sendCorrectionNotices(emp, corrected, req.Field, newTime, loc)
	return result, nil
}

// EntriesWithin lists the employee's entries in a shift-date range.
func (s *timesheetServiceImpl) EntriesWithin(ctx context.Context, filter timesheet.ListFilter) ([]timesheet.TimesheetResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	_, loc, err := s.employeeContext(ctx, filter.EmployeeID)
	if err != nil {
		return nil, err
	}

	from, _ := validator.IsValidDate(filter.StartDate)
	to, _ := validator.IsValidDate(filter.EndDate)

	entries, err := s.timesheetRepo.Within(ctx, filter.EmployeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheet entries: %w", err)
	}

	responses := make([]timesheet.TimesheetResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, timesheet.MapTimesheetToResponse(entry, loc))
	}
	return responses, nil
}

// closeEntry runs the shared close pipeline on an entry whose time_out is
// set: validation, re-resolution, computation, persistence and sibling
// zeroing. Must run inside a transaction.
func (s *timesheetServiceImpl) closeEntry(ctx context.Context, emp employee.Employee, entry timesheet.Timesheet, now time.Time, loc *time.Location) (timesheet.Timesheet, error) {
	if err := s.validateClose(ctx, entry, now); err != nil {
		return timesheet.Timesheet{}, err
	}

	entry, err := s.resolver.ResolveClockOut(ctx, emp, entry, loc)
	if err != nil {
		return timesheet.Timesheet{}, err
	}

	siblings, err := s.timesheetRepo.SameShiftDay(ctx, emp.ID, entry.ShiftDate)
	if err != nil {
		return timesheet.Timesheet{}, fmt.Errorf("failed to get same-day entries: %w", err)
	}

	entry, zeroIDs, err := s.computer.Compute(ctx, emp, entry, localizeEntries(siblings, loc), loc)
	if err != nil {
		return timesheet.Timesheet{}, err
	}

	if err := s.timesheetRepo.Update(ctx, entry); err != nil {
		return timesheet.Timesheet{}, fmt.Errorf("failed to update timesheet entry: %w", err)
	}
	if len(zeroIDs) > 0 {
		if err := s.timesheetRepo.ZeroTotals(ctx, zeroIDs); err != nil {
			return timesheet.Timesheet{}, fmt.Errorf("failed to zero superseded entries: %w", err)
		}
	}
	return entry, nil
}

// validateClose rejects a closing write wholesale when the punch pair is
// inconsistent: time_in after time_out, time_out in the future, or time_in
// before the employee's last closed entry.
func (s *timesheetServiceImpl) validateClose(ctx context.Context, entry timesheet.Timesheet, now time.Time) error {
	var errs validator.ValidationErrors

	if entry.TimeIn.After(*entry.TimeOut) {
		errs = append(errs, validator.ValidationError{
			Field:   "time_in",
			Message: "time_in must not be later than time_out",
		})
	}
	if entry.TimeOut.After(now) {
		errs = append(errs, validator.ValidationError{
			Field:   "time_out",
			Message: "time_out must not be in the future",
		})
	}

	last, err := s.timesheetRepo.LastClosed(ctx, entry.EmployeeID)
	if err != nil {
		return fmt.Errorf("failed to get last closed entry: %w", err)
	}
	if last != nil && last.ID != entry.ID && last.TimeOut != nil && entry.TimeIn.Before(*last.TimeOut) {
		errs = append(errs, validator.ValidationError{
			Field:   "time_in",
			Message: "time_in must be later than the previous entry's time_out",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// sendCorrectionNotices emails the employee, and the supervisor when one is
// on file, about a manual correction. Failures come back as warnings.
func (s *timesheetServiceImpl) sendCorrectionNotices(emp employee.Employee, entry timesheet.Timesheet, field string, newTime time.Time, loc *time.Location) []string {
	entryDate := entry.ShiftDate.Format("2006-01-02")
	newTimeLabel := newTime.In(loc).Format(time.RFC3339)

	recipients := []string{emp.Email}
	if emp.SupervisorEmail != nil && *emp.SupervisorEmail != emp.Email {
		recipients = append(recipients, *emp.SupervisorEmail)
	}

	var warnings []string
	for _, to := range recipients {
		if err := s.emailService.SendCorrectionNotice(to, emp.FullName, field, entryDate, newTimeLabel); err != nil {
			slog.Error("Failed to send correction notice",
				"timesheet_id", entry.ID,
				"to", to,
				"error", err)
			warnings = append(warnings, fmt.Sprintf(
				"entry was updated but the notification to %s failed", to))
		}
	}
	return warnings
}

// employeeContext loads the employee and the timezone of their branch.
func (s *timesheetServiceImpl) employeeContext(ctx context.Context, employeeID string) (employee.Employee, *time.Location, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, nil, err
	}

	tz, err := s.branchRepo.GetTimezoneByEmployeeID(ctx, employeeID)
	if err != nil {
		return employee.Employee{}, nil, fmt.Errorf("failed to get branch timezone: %w", err)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return employee.Employee{}, nil, fmt.Errorf("invalid branch timezone %q: %w", tz, err)
	}
	return emp, loc, nil
}

// localizeEntry rebinds a loaded entry's times to the branch timezone. The
// shift date comes out of the database as a bare date; window math needs it
// anchored to local midnight.
func localizeEntry(e timesheet.Timesheet, loc *time.Location) timesheet.Timesheet {
	e.ShiftDate = time.Date(e.ShiftDate.Year(), e.ShiftDate.Month(), e.ShiftDate.Day(), 0, 0, 0, 0, loc)
	e.TimeIn = e.TimeIn.In(loc)
	if e.TimeOut != nil {
		out := e.TimeOut.In(loc)
		e.TimeOut = &out
	}
	return e
}

func localizeEntries(entries []timesheet.Timesheet, loc *time.Location) []timesheet.Timesheet {
	localized := make([]timesheet.Timesheet, 0, len(entries))
	for _, e := range entries {
		localized = append(localized, localizeEntry(e, loc))
	}
	return localized
}
