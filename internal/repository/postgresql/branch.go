package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/branch"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type branchRepository struct {
	db *database.DB
}

func NewBranchRepository(db *database.DB) branch.BranchRepository {
	return &branchRepository{db: db}
}

// GetByID implements branch.BranchRepository.
func (r *branchRepository) GetByID(ctx context.Context, id string) (branch.Branch, error) {
	q := GetQuerier(ctx, r.db)

	var b branch.Branch
	err := q.QueryRow(ctx,
		`SELECT id, company_id, name, timezone, created_at, updated_at FROM branches WHERE id = $1`,
		id,
	).Scan(&b.ID, &b.CompanyID, &b.Name, &b.Timezone, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return branch.Branch{}, branch.ErrBranchNotFound
		}
		return branch.Branch{}, fmt.Errorf("failed to get branch: %w", err)
	}
	return b, nil
}

// GetTimezoneByEmployeeID implements branch.BranchRepository.
func (r *branchRepository) GetTimezoneByEmployeeID(ctx context.Context, employeeID string) (string, error) {
	q := GetQuerier(ctx, r.db)

	var tz string
	err := q.QueryRow(ctx, `
		SELECT b.timezone
		FROM branches b
		JOIN employees e ON e.branch_id = b.id
		WHERE e.id = $1
	`, employeeID).Scan(&tz)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", branch.ErrBranchNotFound
		}
		return "", fmt.Errorf("failed to get branch timezone: %w", err)
	}
	return tz, nil
}
