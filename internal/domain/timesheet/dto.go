package timesheet

import (
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
)

// ========================================
// TIMESHEET DTOs
// ========================================

type ClockInRequest struct {
	EmployeeID string `json:"-"`
	Force      bool   `json:"force"`
}

type ClockOutRequest struct {
	EmployeeID string `json:"-"`
}

const (
	FieldTimeIn  = "time_in"
	FieldTimeOut = "time_out"
)

type ManualCorrectRequest struct {
	ID      string `json:"-"`
	Field   string `json:"field"`
	NewTime string `json:"new_time"`
}

func (r *ManualCorrectRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "timesheet id is required",
		})
	}

	if r.Field != FieldTimeIn && r.Field != FieldTimeOut {
		errs = append(errs, validator.ValidationError{
			Field:   "field",
			Message: "field must be time_in or time_out",
		})
	}

	if _, ok := validator.IsValidDateTime(r.NewTime); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "new_time",
			Message: "new_time must be an ISO8601 timestamp",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListFilter struct {
	EmployeeID string `json:"-"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

func (f *ListFilter) Validate() error {
	var errs validator.ValidationErrors

	start, okStart := validator.IsValidDate(f.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{
			Field:   "start_date",
			Message: "start_date must be YYYY-MM-DD",
		})
	}

	end, okEnd := validator.IsValidDate(f.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must be YYYY-MM-DD",
		})
	}

	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{
			Field:   "end_date",
			Message: "end_date must not be before start_date",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type TimesheetResponse struct {
	ID               string  `json:"id"`
	EmployeeID       string  `json:"employee_id"`
	ShiftDate        string  `json:"shift_date"`
	TimeIn           string  `json:"time_in"`
	TimeOut          *string `json:"time_out,omitempty"`
	ScheduleID       string  `json:"schedule_id"`
	ScheduleName     string  `json:"schedule_name"`
	Duration         int     `json:"duration"`
	MinutesLate      int     `json:"minutes_late"`
	MinutesUndertime int     `json:"minutes_undertime"`
	MinutesExcess    int     `json:"minutes_excess"`
	Open             bool    `json:"open"`
}

// ClockResult carries the affected entry plus non-fatal warnings (failed
// best-effort notifications).
type ClockResult struct {
	Timesheet TimesheetResponse `json:"timesheet"`
	Warnings  []string          `json:"warnings,omitempty"`
}

// MapTimesheetToResponse converts a Timesheet entity to its API shape,
// rendering timestamps in the given location.
func MapTimesheetToResponse(t Timesheet, loc *time.Location) TimesheetResponse {
	resp := TimesheetResponse{
		ID:               t.ID,
		EmployeeID:       t.EmployeeID,
		ShiftDate:        t.ShiftDate.Format("2006-01-02"),
		TimeIn:           t.TimeIn.In(loc).Format(time.RFC3339),
		ScheduleID:       t.Schedule.ID,
		ScheduleName:     t.Schedule.Name,
		Duration:         t.Duration,
		MinutesLate:      t.MinutesLate,
		MinutesUndertime: t.MinutesUndertime,
		MinutesExcess:    t.MinutesExcess,
		Open:             t.Open(),
	}
	if t.TimeOut != nil {
		out := t.TimeOut.In(loc).Format(time.RFC3339)
		resp.TimeOut = &out
	}
	return resp
}
