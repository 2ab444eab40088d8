package timesheet

import (
	"context"
	"time"
)

// TimesheetRepository defines data access for timesheet entries.
type TimesheetRepository interface {
	// LockEmployee takes a transaction-scoped per-employee lock, released
	// at commit or rollback. The no-open-entry check-and-create and the
	// sibling zeroing of the merge policy run under it, so concurrent
	// punches for one employee serialize instead of racing.
	LockEmployee(ctx context.Context, employeeID string) error

	Create(ctx context.Context, entry Timesheet) (Timesheet, error)

	// Update persists the entry's time_out, resolved shift references and
	// computed totals.
	Update(ctx context.Context, entry Timesheet) error

	GetByID(ctx context.Context, id string) (Timesheet, error)

	// GetOpenEntry returns the employee's open entry (oldest first when the
	// data is inconsistent), or nil when none exists.
	GetOpenEntry(ctx context.Context, employeeID string) (*Timesheet, error)

	// SameShiftDay returns all entries sharing the shift date, ascending by
	// time_in.
	SameShiftDay(ctx context.Context, employeeID string, shiftDate time.Time) ([]Timesheet, error)

	// ZeroTotals clears duration, minutes_undertime and minutes_excess on
	// the given entries in one batch.
	ZeroTotals(ctx context.Context, ids []string) error

	// Within returns the employee's entries with shift date in [from, to],
	// ascending by time_in.
	Within(ctx context.Context, employeeID string, from, to time.Time) ([]Timesheet, error)

	// LastClosed returns the employee's most recently closed entry, or nil.
	LastClosed(ctx context.Context, employeeID string) (*Timesheet, error)

	// StaleOpenEntries returns open entries whose shift date is before the
	// cutoff, across all employees.
	StaleOpenEntries(ctx context.Context, before time.Time) ([]Timesheet, error)
}

// TxRunner executes fn inside a database transaction. The engine requires
// the open-entry check, entry write and sibling zeroing to commit or fail
// as one unit.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
