package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/branch"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Lifecycle invariant violations
	case errors.Is(err, timesheet.ErrAlreadyClockedIn):
		Conflict(w, "An open timesheet entry already exists")
	case errors.Is(err, timesheet.ErrNoOpenEntry):
		Conflict(w, "No open timesheet entry to clock out")

	// Schedule configuration errors
	case errors.Is(err, shift.ErrNoScheduleFound):
		ConfigurationError(w, "No shift schedule is set up for this employee")
	case errors.Is(err, shift.ErrMalformedAssignment):
		ConfigurationError(w, "A schedule assignment has an invalid date range")

	// Lookups
	case errors.Is(err, timesheet.ErrTimesheetNotFound):
		NotFound(w, "Timesheet entry not found")
	case errors.Is(err, shift.ErrScheduleNotFound):
		NotFound(w, "Shift schedule not found")
	case errors.Is(err, shift.ErrAssignmentNotFound):
		NotFound(w, "Schedule assignment not found")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, branch.ErrBranchNotFound):
		NotFound(w, "Branch not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
