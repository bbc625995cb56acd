package attendance

import (
	"github.com/skulk0156/emsbackend/internal/pkg/clock"
	"github.com/skulk0156/emsbackend/internal/pkg/validator"
)

// ============= Request DTOs =============

type PunchInRequest struct {
	EmployeeID  string
	DisplayName string
}

func (r PunchInRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee id is required"})
	}
	if validator.IsEmpty(r.DisplayName) {
		errs = append(errs, validator.ValidationError{Field: "display_name", Message: "display name is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MarkManualRequest struct {
	EmployeeID  string `json:"employee_id"`
	DisplayName string `json:"display_name"`
	Date        string `json:"date"`
	Status      Status `json:"status"`
}

func (r MarkManualRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee id is required"})
	}
	if validator.IsEmpty(r.DisplayName) {
		errs = append(errs, validator.ValidationError{Field: "display_name", Message: "display name is required"})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
	}
	manual := false
	for _, s := range ManualStatuses {
		if r.Status == s {
			manual = true
			break
		}
	}
	if !manual {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be absent or leave"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListFilter struct {
	Page  int
	Limit int
}

func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

// ============= Response DTOs =============

type AttendanceResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	DisplayName     string  `json:"display_name"`
	Date            string  `json:"date"`
	PunchIn         *string `json:"punch_in"`
	PunchOut        *string `json:"punch_out"`
	Status          Status  `json:"status"`
	WorkingDuration *string `json:"working_duration"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}

// ToResponse converts an Attendance entity to its API shape.
func ToResponse(att Attendance) AttendanceResponse {
	return AttendanceResponse{
		ID:              att.ID,
		EmployeeID:      att.EmployeeID,
		DisplayName:     att.DisplayName,
		Date:            att.Date,
		PunchIn:         att.PunchIn,
		PunchOut:        att.PunchOut,
		Status:          att.Status,
		WorkingDuration: att.WorkingDuration,
		CreatedAt:       att.CreatedAt.Format(clock.DateLayout + " 15:04:05"),
		UpdatedAt:       att.UpdatedAt.Format(clock.DateLayout + " 15:04:05"),
	}
}
