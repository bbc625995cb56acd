package task

import (
	"context"
)

// Service governs the task workflow. Every operation takes the acting
// principal explicitly; callers resolve identity before invoking.
type Service interface {
	Create(ctx context.Context, actor Actor, req CreateTaskRequest) (TaskResponse, error)

	// Accept moves NotStarted or Reverted to InProgress. Assignees only.
	Accept(ctx context.Context, actor Actor, taskID int64) (TaskResponse, error)

	// SubmitForReview moves InProgress to InReview. Assignees only.
	SubmitForReview(ctx context.Context, actor Actor, taskID int64) (TaskResponse, error)

	// Review resolves an InReview task: approve completes it, revert loops
	// it back with a structured comment. Creator or reviewers only.
	Review(ctx context.Context, actor Actor, taskID int64, req ReviewRequest) (TaskResponse, error)

	// Update mutates editable non-status fields. Creator only.
	Update(ctx context.Context, actor Actor, taskID int64, req UpdateTaskRequest) (TaskResponse, error)

	// Delete removes the task. Creator only.
	Delete(ctx context.Context, actor Actor, taskID int64) error

	Get(ctx context.Context, taskID int64) (TaskResponse, error)
	List(ctx context.Context, filter Filter) (ListTaskResponse, error)
}
