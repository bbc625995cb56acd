package attendance

import "errors"

// Attendance domain errors
var (
	ErrAlreadyPunchedIn  = errors.New("you have already punched in today")
	ErrNotPunchedIn      = errors.New("you have not punched in today")
	ErrAlreadyPunchedOut = errors.New("you have already punched out today")

	ErrAttendanceNotFound = errors.New("attendance record not found")
)
