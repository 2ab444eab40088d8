package branch

import "context"

type BranchRepository interface {
	GetByID(ctx context.Context, id string) (Branch, error)

	// GetTimezoneByEmployeeID resolves the IANA timezone of the branch the
	// employee belongs to.
	GetTimezoneByEmployeeID(ctx context.Context, employeeID string) (string, error)
}
