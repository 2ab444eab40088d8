package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type timesheetRepository struct {
	db *database.DB
}

func NewTimesheetRepository(db *database.DB) timesheet.TimesheetRepository {
	return &timesheetRepository{db: db}
}

// timesheetColumns joins each entry to its resolved schedule and detail
// rows (current and next-day), so loaded entries carry everything the
// window math needs without extra round trips.
const timesheetColumns = `
	t.id, t.employee_id, t.shift_date, t.time_in, t.time_out,
	t.duration, t.minutes_late, t.minutes_undertime, t.minutes_excess,
	t.created_at, t.updated_at,
	s.id, s.company_id, s.name,
	d.id, d.shift_schedule_id, d.day_of_week,
	d.clock_in_earliest, d.clock_in_latest, d.clock_out_earliest, d.clock_out_latest,
	d.shift_total_time, d.is_day_off,
	ns.id, ns.company_id, ns.name,
	nd.id, nd.shift_schedule_id, nd.day_of_week,
	nd.clock_in_earliest, nd.clock_in_latest, nd.clock_out_earliest, nd.clock_out_latest,
	nd.shift_total_time, nd.is_day_off
`

const timesheetJoins = `
	FROM employee_timesheets t
	JOIN shift_schedules s ON s.id = t.shift_schedule_id
	JOIN shift_schedule_details d ON d.id = t.shift_schedule_detail_id
	JOIN shift_schedules ns ON ns.id = t.next_day_shift_schedule_id
	JOIN shift_schedule_details nd ON nd.id = t.next_day_shift_schedule_detail_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTimesheet(row rowScanner) (timesheet.Timesheet, error) {
	var t timesheet.Timesheet
	err := row.Scan(
		&t.ID, &t.EmployeeID, &t.ShiftDate, &t.TimeIn, &t.TimeOut,
		&t.Duration, &t.MinutesLate, &t.MinutesUndertime, &t.MinutesExcess,
		&t.CreatedAt, &t.UpdatedAt,
		&t.Schedule.ID, &t.Schedule.CompanyID, &t.Schedule.Name,
		&t.Detail.ID, &t.Detail.ScheduleID, &t.Detail.DayOfWeek,
		&t.Detail.ClockInEarliest, &t.Detail.ClockInLatest, &t.Detail.ClockOutEarliest, &t.Detail.ClockOutLatest,
		&t.Detail.ShiftTotalTime, &t.Detail.IsDayOff,
		&t.NextDaySchedule.ID, &t.NextDaySchedule.CompanyID, &t.NextDaySchedule.Name,
		&t.NextDayDetail.ID, &t.NextDayDetail.ScheduleID, &t.NextDayDetail.DayOfWeek,
		&t.NextDayDetail.ClockInEarliest, &t.NextDayDetail.ClockInLatest, &t.NextDayDetail.ClockOutEarliest, &t.NextDayDetail.ClockOutLatest,
		&t.NextDayDetail.ShiftTotalTime, &t.NextDayDetail.IsDayOff,
	)
	return t, err
}

func (r *timesheetRepository) queryTimesheets(ctx context.Context, where string, args ...any) ([]timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, "SELECT"+timesheetColumns+timesheetJoins+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []timesheet.Timesheet
	for rows.Next() {
		t, err := scanTimesheet(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, t)
	}
	return entries, rows.Err()
}

// LockEmployee implements timesheet.TimesheetRepository.
func (r *timesheetRepository) LockEmployee(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, r.db)

	// Advisory lock scoped to the surrounding transaction; released at
	// commit or rollback.
	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, employeeID); err != nil {
		return fmt.Errorf("failed to lock employee: %w", err)
	}
	return nil
}

// Create implements timesheet.TimesheetRepository.
func (r *timesheetRepository) Create(ctx context.Context, entry timesheet.Timesheet) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO employee_timesheets (
			id, employee_id, shift_date, time_in, time_out,
			shift_schedule_id, shift_schedule_detail_id,
			next_day_shift_schedule_id, next_day_shift_schedule_detail_id,
			duration, minutes_late, minutes_undertime, minutes_excess
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		entry.ID,
		entry.EmployeeID,
		entry.ShiftDate,
		entry.TimeIn,
		entry.TimeOut,
		entry.Schedule.ID,
		entry.Detail.ID,
		entry.NextDaySchedule.ID,
		entry.NextDayDetail.ID,
		entry.Duration,
		entry.MinutesLate,
		entry.MinutesUndertime,
		entry.MinutesExcess,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)

	if err != nil {
		return timesheet.Timesheet{}, fmt.Errorf("failed to create timesheet entry: %w", err)
	}

	return entry, nil
}

// Update implements timesheet.TimesheetRepository.
func (r *timesheetRepository) Update(ctx context.Context, entry timesheet.Timesheet) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee_timesheets
		SET shift_date = $2,
			time_in = $3,
			time_out = $4,
			shift_schedule_id = $5,
			shift_schedule_detail_id = $6,
			next_day_shift_schedule_id = $7,
			next_day_shift_schedule_detail_id = $8,
			duration = $9,
			minutes_late = $10,
			minutes_undertime = $11,
			minutes_excess = $12,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		entry.ID,
		entry.ShiftDate,
		entry.TimeIn,
		entry.TimeOut,
		entry.Schedule.ID,
		entry.Detail.ID,
		entry.NextDaySchedule.ID,
		entry.NextDayDetail.ID,
		entry.Duration,
		entry.MinutesLate,
		entry.MinutesUndertime,
		entry.MinutesExcess,
	)
	if err != nil {
		return fmt.Errorf("failed to update timesheet entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return timesheet.ErrTimesheetNotFound
	}
	return nil
}

// GetByID implements timesheet.TimesheetRepository.
func (r *timesheetRepository) GetByID(ctx context.Context, id string) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	row := q.QueryRow(ctx, "SELECT"+timesheetColumns+timesheetJoins+"WHERE t.id = $1", id)
	t, err := scanTimesheet(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
		}
		return timesheet.Timesheet{}, fmt.Errorf("failed to get timesheet entry: %w", err)
	}
	return t, nil
}

// GetOpenEntry implements timesheet.TimesheetRepository.
func (r *timesheetRepository) GetOpenEntry(ctx context.Context, employeeID string) (*timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT" + timesheetColumns + timesheetJoins + `
		WHERE t.employee_id = $1
		  AND t.time_out IS NULL
		ORDER BY t.time_in ASC
		LIMIT 1
	`

	t, err := scanTimesheet(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get open entry: %w", err)
	}
	return &t, nil
}

// SameShiftDay implements timesheet.TimesheetRepository.
func (r *timesheetRepository) SameShiftDay(ctx context.Context, employeeID string, shiftDate time.Time) ([]timesheet.Timesheet, error) {
	entries, err := r.queryTimesheets(ctx, `
		WHERE t.employee_id = $1
		  AND t.shift_date = $2
		ORDER BY t.time_in ASC
	`, employeeID, shiftDate)
	if err != nil {
		return nil, fmt.Errorf("failed to get same-day entries: %w", err)
	}
	return entries, nil
}

// ZeroTotals implements timesheet.TimesheetRepository.
func (r *timesheetRepository) ZeroTotals(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE employee_timesheets
		SET duration = 0,
			minutes_undertime = 0,
			minutes_excess = 0,
			updated_at = NOW()
		WHERE id = ANY($1)
	`

	if _, err := q.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("failed to zero timesheet totals: %w", err)
	}
	return nil
}

// Within implements timesheet.TimesheetRepository.
func (r *timesheetRepository) Within(ctx context.Context, employeeID string, from, to time.Time) ([]timesheet.Timesheet, error) {
	entries, err := r.queryTimesheets(ctx, `
		WHERE t.employee_id = $1
		  AND t.shift_date BETWEEN $2 AND $3
		ORDER BY t.time_in ASC
	`, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheet entries: %w", err)
	}
	return entries, nil
}

// LastClosed implements timesheet.TimesheetRepository.
func (r *timesheetRepository) LastClosed(ctx context.Context, employeeID string) (*timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := "SELECT" + timesheetColumns + timesheetJoins + `
		WHERE t.employee_id = $1
		  AND t.time_out IS NOT NULL
		ORDER BY t.time_out DESC
		LIMIT 1
	`

	t, err := scanTimesheet(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get last closed entry: %w", err)
	}
	return &t, nil
}

// StaleOpenEntries implements timesheet.TimesheetRepository.
func (r *timesheetRepository) StaleOpenEntries(ctx context.Context, before time.Time) ([]timesheet.Timesheet, error) {
	entries, err := r.queryTimesheets(ctx, `
		WHERE t.time_out IS NULL
		  AND t.shift_date < $1
		ORDER BY t.shift_date ASC
	`, before)
	if err != nil {
		return nil, fmt.Errorf("failed to get stale open entries: %w", err)
	}
	return entries, nil
}
