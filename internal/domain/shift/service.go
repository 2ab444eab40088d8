package shift

import "context"

// ScheduleService exposes the read-only schedule API.
type ScheduleService interface {
	// GetMySchedule returns the schedule active for the employee today.
	GetMySchedule(ctx context.Context, employeeID string) (ScheduleResponse, error)

	// ListAssignments returns the employee's schedule assignments.
	ListAssignments(ctx context.Context, employeeID string) ([]AssignmentResponse, error)
}
