package attendance

import (
	"time"
)

// Status is the attendance grade for one employee on one civil day.
type Status string

const (
	StatusPresent      Status = "present"
	StatusLate         Status = "late"
	StatusHalfDay      Status = "half_day"
	StatusAbsent       Status = "absent"
	StatusLeave        Status = "leave"
	StatusAutoPunchOut Status = "auto_punch_out"
)

// ManualStatuses are the statuses a supervisor may set directly. Manual
// marks bypass the punch rule tables and carry no punch times.
var ManualStatuses = []Status{StatusAbsent, StatusLeave}

// Attendance is one record per (employee, civil date).
type Attendance struct {
	ID              string
	EmployeeID      string
	DisplayName     string
	Date            string // civil date, YYYY-MM-DD
	PunchIn         *string
	PunchOut        *string
	Status          Status
	WorkingDuration *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
