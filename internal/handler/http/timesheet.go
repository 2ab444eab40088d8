package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type TimesheetHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	Correct(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type timesheetHandlerImpl struct {
	timesheetService timesheet.TimesheetService
}

func NewTimesheetHandler(timesheetService timesheet.TimesheetService) TimesheetHandler {
	return &timesheetHandlerImpl{
		timesheetService: timesheetService,
	}
}

// getEmployeeIDFromContext extracts employee_id from JWT context
func getEmployeeIDFromContext(r *http.Request) string {
	_, claims, _ := jwtauth.FromContext(r.Context())
	if employeeID, ok := claims["employee_id"].(string); ok {
		return employeeID
	}
	return ""
}

// ClockIn implements TimesheetHandler.
func (h *timesheetHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	req := timesheet.ClockInRequest{
		EmployeeID: getEmployeeIDFromContext(r),
	}
	if req.EmployeeID == "" {
		response.Unauthorized(w, "Invalid token")
		return
	}

	// Body is optional; only the force flag lives in it.
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	result, err := h.timesheetService.ClockIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Clock in successful", result)
}

// ClockOut implements TimesheetHandler.
func (h *timesheetHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	req := timesheet.ClockOutRequest{
		EmployeeID: getEmployeeIDFromContext(r),
	}
	if req.EmployeeID == "" {
		response.Unauthorized(w, "Invalid token")
		return
	}

	result, err := h.timesheetService.ClockOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Clock out successful", result)
}

// Correct implements TimesheetHandler.
func (h *timesheetHandlerImpl) Correct(w http.ResponseWriter, r *http.Request) {
	var req timesheet.ManualCorrectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timesheetService.ManualCorrect(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet entry corrected", result)
}

// List implements TimesheetHandler.
func (h *timesheetHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := timesheet.ListFilter{
		EmployeeID: getEmployeeIDFromContext(r),
		StartDate:  r.URL.Query().Get("start_date"),
		EndDate:    r.URL.Query().Get("end_date"),
	}
	if filter.EmployeeID == "" {
		response.Unauthorized(w, "Invalid token")
		return
	}

	if err := filter.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	entries, err := h.timesheetService.EntriesWithin(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, entries)
}
