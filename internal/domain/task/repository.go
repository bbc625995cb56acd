package task

import (
	"context"
)

// Repository defines data access for tasks. task_id carries a unique
// constraint; Create surfaces a collision as ErrTaskIDTaken so the service
// can retry generation. Status changes go through UpdateStatus, a
// compare-and-set that serializes concurrent transitions at the store.
type Repository interface {
	Create(ctx context.Context, t Task) (Task, error)
	GetByTaskID(ctx context.Context, taskID int64) (*Task, error)

	// UpdateStatus moves the task to the target status only if its current
	// status is one of from. Returns false when the guard did not match.
	UpdateStatus(ctx context.Context, taskID int64, from []Status, to Status) (bool, error)

	// Update rewrites the editable non-status fields.
	Update(ctx context.Context, t Task) error

	// ResolveReview moves an in-review task to its resolution status with
	// the same compare-and-set guard as UpdateStatus. When a revert carries
	// a note, the status change and the note land in one transaction so a
	// crash between them cannot lose the comment.
	ResolveReview(ctx context.Context, taskID int64, to Status, note *ReviewNote) (bool, error)

	Delete(ctx context.Context, taskID int64) error
	List(ctx context.Context, filter Filter) ([]Task, int64, error)
}
