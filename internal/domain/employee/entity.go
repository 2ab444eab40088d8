package employee

import "time"

type Employee struct {
	ID              string
	CompanyID       string
	BranchID        string
	ScheduleID      string
	FullName        string
	Email           string
	SupervisorEmail *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
