package attendance

import (
	"context"
)

// Repository defines data access for attendance records. The store enforces
// the one-record-per-(employee, date) invariant with a unique constraint;
// Create surfaces a violation as ErrAlreadyPunchedIn so concurrent punch-ins
// are serialized at the database, not in application code.
type Repository interface {
	// Create inserts a new record for the employee's civil day.
	Create(ctx context.Context, att Attendance) (Attendance, error)

	// GetByEmployeeAndDate returns nil when no record exists.
	GetByEmployeeAndDate(ctx context.Context, employeeID, date string) (*Attendance, error)

	// ClosePunchOut sets punch-out fields only if the record is still open.
	// Returns false when another writer closed the session first.
	ClosePunchOut(ctx context.Context, id string, punchOut string, status Status, workingDuration string) (bool, error)

	// Upsert creates or replaces the record for (employee, date). Used by
	// manual marks, which overwrite any measured punches.
	Upsert(ctx context.Context, att Attendance) (Attendance, error)

	// ListOpenSessions returns records on the date with a punch-in but no
	// punch-out.
	ListOpenSessions(ctx context.Context, date string) ([]Attendance, error)

	ListByEmployee(ctx context.Context, employeeID string, limit, offset int) ([]Attendance, int64, error)
	ListByDate(ctx context.Context, date string, limit, offset int) ([]Attendance, int64, error)
}
