package task

import "errors"

// Task domain errors. Authorization failures are distinct from state-guard
// failures so callers can discriminate "not allowed" from "not ready".
var (
	ErrTaskNotFound = errors.New("task not found")

	ErrCreatorRoleRequired = errors.New("only admins and managers can create tasks")
	ErrNotAssignee         = errors.New("only an assignee can perform this action")
	ErrNotReviewer         = errors.New("only the creator or a reviewer can resolve a review")
	ErrNotCreator          = errors.New("only the task creator can perform this action")

	ErrInvalidTransition = errors.New("invalid task transition")
	ErrTaskIDExhausted   = errors.New("could not allocate a unique task id")

	// ErrTaskIDTaken is returned by the repository on a task_id collision
	// and consumed by the bounded generation retry loop.
	ErrTaskIDTaken = errors.New("task id already taken")
)
