package shift

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/jonboulle/clockwork"
)

type scheduleServiceImpl struct {
	calendar shift.Calendar
	clock    clockwork.Clock
}

// NewScheduleService creates the read-only schedule service.
func NewScheduleService(calendar shift.Calendar, clock clockwork.Clock) shift.ScheduleService {
	return &scheduleServiceImpl{calendar: calendar, clock: clock}
}

// GetMySchedule returns the schedule active for the employee right now.
func (s *scheduleServiceImpl) GetMySchedule(ctx context.Context, employeeID string) (shift.ScheduleResponse, error) {
	schedule, err := s.calendar.ScheduleFor(ctx, employeeID, s.clock.Now())
	if err != nil {
		return shift.ScheduleResponse{}, err
	}
	return shift.MapScheduleToResponse(schedule), nil
}

// ListAssignments returns the employee's schedule assignments, most recent
// first.
func (s *scheduleServiceImpl) ListAssignments(ctx context.Context, employeeID string) ([]shift.AssignmentResponse, error) {
	assignments, err := s.calendar.Assignments(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule assignments: %w", err)
	}

	responses := make([]shift.AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		responses = append(responses, shift.MapAssignmentToResponse(a))
	}
	return responses, nil
}
