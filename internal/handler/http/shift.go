package http

import (
	"net/http"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
)

type ScheduleHandler interface {
	GetMySchedule(w http.ResponseWriter, r *http.Request)
	ListAssignments(w http.ResponseWriter, r *http.Request)
}

type scheduleHandlerImpl struct {
	scheduleService shift.ScheduleService
}

func NewScheduleHandler(scheduleService shift.ScheduleService) ScheduleHandler {
	return &scheduleHandlerImpl{
		scheduleService: scheduleService,
	}
}

// GetMySchedule implements ScheduleHandler.
func (h *scheduleHandlerImpl) GetMySchedule(w http.ResponseWriter, r *http.Request) {
	employeeID := getEmployeeIDFromContext(r)
	if employeeID == "" {
		response.Unauthorized(w, "Invalid token")
		return
	}

	schedule, err := h.scheduleService.GetMySchedule(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, schedule)
}

// ListAssignments implements ScheduleHandler.
func (h *scheduleHandlerImpl) ListAssignments(w http.ResponseWriter, r *http.Request) {
	employeeID := getEmployeeIDFromContext(r)
	if employeeID == "" {
		response.Unauthorized(w, "Invalid token")
		return
	}

	assignments, err := h.scheduleService.ListAssignments(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, assignments)
}
