package shift

import "fmt"

// ========================================
// SCHEDULE DTOs
// ========================================

type ScheduleResponse struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Details []DetailResponse `json:"details"`
}

type DetailResponse struct {
	DayOfWeek      int    `json:"day_of_week"`
	ClockInFrom    string `json:"clock_in_from"`
	ClockInUntil   string `json:"clock_in_until"`
	ClockOutFrom   string `json:"clock_out_from"`
	ClockOutUntil  string `json:"clock_out_until"`
	ShiftTotalTime int    `json:"shift_total_time"`
	IsDayOff       bool   `json:"is_day_off"`
}

type AssignmentResponse struct {
	ID         string  `json:"id"`
	ScheduleID string  `json:"schedule_id"`
	StartDate  string  `json:"start_date"`
	EndDate    *string `json:"end_date,omitempty"`
}

// clockLabel renders a minutes-past-midnight offset as HH:MM, with a +1d
// suffix when it lands on the following day.
func clockLabel(minutes int) string {
	suffix := ""
	if minutes >= minutesPerDay {
		minutes -= minutesPerDay
		suffix = " +1d"
	}
	return fmt.Sprintf("%02d:%02d%s", minutes/60, minutes%60, suffix)
}

// MapScheduleToResponse converts a Schedule entity to its API shape.
func MapScheduleToResponse(s Schedule) ScheduleResponse {
	resp := ScheduleResponse{ID: s.ID, Name: s.Name}
	for _, d := range s.Details {
		resp.Details = append(resp.Details, DetailResponse{
			DayOfWeek:      d.DayOfWeek,
			ClockInFrom:    clockLabel(d.ClockInEarliest),
			ClockInUntil:   clockLabel(d.ClockInLatest),
			ClockOutFrom:   clockLabel(d.ClockOutEarliest),
			ClockOutUntil:  clockLabel(d.ClockOutLatest),
			ShiftTotalTime: d.ShiftTotalTime,
			IsDayOff:       d.IsDayOff,
		})
	}
	return resp
}

// MapAssignmentToResponse converts an Assignment entity to its API shape.
func MapAssignmentToResponse(a Assignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:         a.ID,
		ScheduleID: a.ScheduleID,
		StartDate:  a.StartDate.Format("2006-01-02"),
	}
	if a.EndDate != nil {
		end := a.EndDate.Format("2006-01-02")
		resp.EndDate = &end
	}
	return resp
}
