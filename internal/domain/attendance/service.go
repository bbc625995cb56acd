package attendance

import (
	"context"
)

// Service defines business logic for attendance operations.
type Service interface {
	// PunchIn opens today's record for the employee and grades arrival.
	PunchIn(ctx context.Context, req PunchInRequest) (AttendanceResponse, error)

	// PunchOut closes today's open record and applies the late-departure
	// override.
	PunchOut(ctx context.Context, employeeID string) (AttendanceResponse, error)

	// MarkManual upserts an administrative absent/leave record, discarding
	// any measured punches for that day.
	MarkManual(ctx context.Context, req MarkManualRequest) (AttendanceResponse, error)

	// ReconcileDay closes every still-open session on the date at the fixed
	// cutoff. Idempotent; returns the number of sessions closed.
	ReconcileDay(ctx context.Context, date string) (int, error)

	// GetToday returns the caller's record for the current civil day.
	GetToday(ctx context.Context, employeeID string) (AttendanceResponse, error)

	ListByEmployee(ctx context.Context, employeeID string, filter ListFilter) (ListAttendanceResponse, error)
	ListByDate(ctx context.Context, date string, filter ListFilter) (ListAttendanceResponse, error)
}
