package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type shiftScheduleRepository struct {
	db *database.DB
}

// NewShiftCalendar returns the schedule resolution collaborator backed by
// the assignment and schedule tables.
func NewShiftCalendar(db *database.DB) shift.Calendar {
	return &shiftScheduleRepository{db: db}
}

func NewScheduleRepository(db *database.DB) shift.ScheduleRepository {
	return &shiftScheduleRepository{db: db}
}

// ScheduleFor implements shift.Calendar. The assignment in effect at the
// date wins; the employee's default schedule is the fallback.
func (r *shiftScheduleRepository) ScheduleFor(ctx context.Context, employeeID string, at time.Time) (shift.Schedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT shift_schedule_id
		FROM employee_schedule_assignments
		WHERE employee_id = $1
		  AND start_date <= $2::date
		  AND (end_date IS NULL OR end_date >= $2::date)
		ORDER BY start_date DESC
		LIMIT 1
	`

	var scheduleID string
	err := q.QueryRow(ctx, query, employeeID, at).Scan(&scheduleID)
	if err == pgx.ErrNoRows {
		err = q.QueryRow(ctx,
			`SELECT shift_schedule_id FROM employees WHERE id = $1 AND shift_schedule_id IS NOT NULL`,
			employeeID,
		).Scan(&scheduleID)
		if err == pgx.ErrNoRows {
			return shift.Schedule{}, shift.ErrNoScheduleFound
		}
	}
	if err != nil {
		return shift.Schedule{}, fmt.Errorf("failed to resolve schedule: %w", err)
	}

	schedule, err := r.loadSchedule(ctx, scheduleID)
	if err != nil {
		return shift.Schedule{}, err
	}
	return schedule, nil
}

// Assignments implements shift.Calendar.
func (r *shiftScheduleRepository) Assignments(ctx context.Context, employeeID string) ([]shift.Assignment, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, shift_schedule_id, start_date, end_date, created_at, updated_at
		FROM employee_schedule_assignments
		WHERE employee_id = $1
		ORDER BY start_date DESC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule assignments: %w", err)
	}
	defer rows.Close()

	var assignments []shift.Assignment
	for rows.Next() {
		var a shift.Assignment
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.ScheduleID, &a.StartDate, &a.EndDate, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan schedule assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// GetByID implements shift.ScheduleRepository.
func (r *shiftScheduleRepository) GetByID(ctx context.Context, id string, companyID string) (shift.Schedule, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM shift_schedules WHERE id = $1 AND company_id = $2)`,
		id, companyID,
	).Scan(&exists)
	if err != nil {
		return shift.Schedule{}, fmt.Errorf("failed to get schedule: %w", err)
	}
	if !exists {
		return shift.Schedule{}, shift.ErrScheduleNotFound
	}

	return r.loadSchedule(ctx, id)
}

// loadSchedule fetches a schedule row plus its seven day-of-week details.
func (r *shiftScheduleRepository) loadSchedule(ctx context.Context, scheduleID string) (shift.Schedule, error) {
	q := GetQuerier(ctx, r.db)

	var schedule shift.Schedule
	err := q.QueryRow(ctx,
		`SELECT id, company_id, name, created_at, updated_at FROM shift_schedules WHERE id = $1`,
		scheduleID,
	).Scan(&schedule.ID, &schedule.CompanyID, &schedule.Name, &schedule.CreatedAt, &schedule.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return shift.Schedule{}, shift.ErrScheduleNotFound
		}
		return shift.Schedule{}, fmt.Errorf("failed to get schedule: %w", err)
	}

	query := `
		SELECT id, shift_schedule_id, day_of_week,
			   clock_in_earliest, clock_in_latest, clock_out_earliest, clock_out_latest,
			   shift_total_time, is_day_off
		FROM shift_schedule_details
		WHERE shift_schedule_id = $1
		ORDER BY day_of_week ASC
	`

	rows, err := q.Query(ctx, query, scheduleID)
	if err != nil {
		return shift.Schedule{}, fmt.Errorf("failed to get schedule details: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d shift.Detail
		if err := rows.Scan(&d.ID, &d.ScheduleID, &d.DayOfWeek,
			&d.ClockInEarliest, &d.ClockInLatest, &d.ClockOutEarliest, &d.ClockOutLatest,
			&d.ShiftTotalTime, &d.IsDayOff); err != nil {
			return shift.Schedule{}, fmt.Errorf("failed to scan schedule detail: %w", err)
		}
		if d.DayOfWeek >= 0 && d.DayOfWeek < 7 {
			schedule.Details[d.DayOfWeek] = d
		}
	}
	return schedule, rows.Err()
}
