package holiday

import "time"

type Holiday struct {
	ID        string
	BranchID  string
	Name      string
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
