package shift

import (
	"context"
	"time"
)

// Calendar resolves the schedule in effect for an employee at a moment,
// plus the employee's effective-dated assignment overrides. It is the
// read-only collaborator the attendance engine works against.
type Calendar interface {
	// ScheduleFor returns the schedule active for the employee at the given
	// moment: the assignment covering that date when one exists, the
	// employee's default schedule otherwise. ErrNoScheduleFound when neither
	// resolves.
	ScheduleFor(ctx context.Context, employeeID string, at time.Time) (Schedule, error)

	// Assignments returns the employee's schedule assignments ordered by
	// start date descending.
	Assignments(ctx context.Context, employeeID string) ([]Assignment, error)
}

// ScheduleRepository provides direct schedule lookups for the read API.
type ScheduleRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Schedule, error)
}
