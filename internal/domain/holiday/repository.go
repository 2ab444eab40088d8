package holiday

import (
	"context"
	"time"
)

// Calendar answers whether a date is a holiday for a branch. Read-only
// collaborator of the attendance engine.
type Calendar interface {
	IsHoliday(ctx context.Context, branchID string, date time.Time) (bool, error)
}
