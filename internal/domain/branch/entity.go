package branch

import "time"

type Branch struct {
	ID        string
	CompanyID string
	Name      string
	Timezone  string
	CreatedAt time.Time
	UpdatedAt time.Time
}
