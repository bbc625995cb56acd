package response

import (
	"errors"
	"net/http"

	"github.com/skulk0156/emsbackend/internal/domain/attendance"
	"github.com/skulk0156/emsbackend/internal/domain/auth"
	"github.com/skulk0156/emsbackend/internal/domain/notification"
	"github.com/skulk0156/emsbackend/internal/domain/task"
	"github.com/skulk0156/emsbackend/internal/domain/user"
	"github.com/skulk0156/emsbackend/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, "Invalid email or password")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrSupervisorRoleRequired):
		Forbidden(w, "Supervisor role required")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyPunchedIn):
		Conflict(w, "Already punched in today")
	case errors.Is(err, attendance.ErrNotPunchedIn):
		NotFound(w, "No punch-in recorded today")
	case errors.Is(err, attendance.ErrAlreadyPunchedOut):
		Conflict(w, "Already punched out today")
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// Task domain errors
	case errors.Is(err, task.ErrTaskNotFound):
		NotFound(w, "Task not found")
	case errors.Is(err, task.ErrCreatorRoleRequired):
		Forbidden(w, "Only admins and managers can create tasks")
	case errors.Is(err, task.ErrNotAssignee):
		Forbidden(w, "Only an assignee can perform this action")
	case errors.Is(err, task.ErrNotReviewer):
		Forbidden(w, "Only a reviewer can resolve a review")
	case errors.Is(err, task.ErrNotCreator):
		Forbidden(w, "Only the task creator can perform this action")
	case errors.Is(err, task.ErrInvalidTransition):
		Conflict(w, err.Error())
	case errors.Is(err, task.ErrTaskIDExhausted):
		Conflict(w, "Could not allocate a task id, please retry")

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, notification.ErrInvalidReceiver):
		BadRequest(w, "Receiver does not exist", nil)
	case errors.Is(err, notification.ErrNoValidReceivers):
		BadRequest(w, "No valid receivers", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
