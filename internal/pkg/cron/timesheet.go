package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/email"
	"github.com/jonboulle/clockwork"
)

type TimesheetJobs struct {
	timesheetRepo timesheet.TimesheetRepository
	employeeRepo  employee.EmployeeRepository
	emailService  email.EmailService
	clock         clockwork.Clock
}

func NewTimesheetJobs(
	timesheetRepo timesheet.TimesheetRepository,
	employeeRepo employee.EmployeeRepository,
	emailService email.EmailService,
	clock clockwork.Clock,
) *TimesheetJobs {
	return &TimesheetJobs{
		timesheetRepo: timesheetRepo,
		employeeRepo:  employeeRepo,
		emailService:  emailService,
		clock:         clock,
	}
}

func (j *TimesheetJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("open_entry_reminders", 1*time.Hour, j.OpenEntryReminders)
}

// OpenEntryReminders emails employees whose entries are still open past the
// previous period. Observability only; the entries are left untouched so a
// forced clock-in or manual correction can still resolve them.
func (j *TimesheetJobs) OpenEntryReminders(ctx context.Context) error {
	// Only run at midnight (00:00-00:59 UTC)
	if j.clock.Now().UTC().Hour() != 0 {
		return nil
	}

	slog.Info("Cron: Starting open entry reminders job")

	cutoff := j.clock.Now().UTC().AddDate(0, 0, -1)
	stale, err := j.timesheetRepo.StaleOpenEntries(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to get stale open entries: %w", err)
	}

	if len(stale) == 0 {
		slog.Info("Cron: No stale open entries found")
		return nil
	}

	reminded := 0
	for _, entry := range stale {
		emp, err := j.employeeRepo.GetByID(ctx, entry.EmployeeID)
		if err != nil {
			slog.Error("Cron: Failed to load employee for reminder",
				"timesheet_id", entry.ID,
				"employee_id", entry.EmployeeID,
				"error", err)
			continue
		}

		shiftDate := entry.ShiftDate.Format("2006-01-02")
		if err := j.emailService.SendOpenEntryReminder(emp.Email, emp.FullName, shiftDate); err != nil {
			slog.Error("Cron: Failed to send open entry reminder",
				"timesheet_id", entry.ID,
				"employee_id", entry.EmployeeID,
				"error", err)
			continue
		}

		reminded++
	}

	slog.Info("Cron: Sent open entry reminders", "count", reminded)
	return nil
}
