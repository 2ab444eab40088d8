package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
)

type holidayRepository struct {
	db *database.DB
}

func NewHolidayCalendar(db *database.DB) holiday.Calendar {
	return &holidayRepository{db: db}
}

// IsHoliday implements holiday.Calendar.
func (r *holidayRepository) IsHoliday(ctx context.Context, branchID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM holidays WHERE branch_id = $1 AND date = $2::date)`,
		branchID, date,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check holiday: %w", err)
	}
	return exists, nil
}
