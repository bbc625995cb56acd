package task

import (
	"github.com/skulk0156/emsbackend/internal/domain/user"
	"github.com/skulk0156/emsbackend/internal/pkg/validator"
)

// Actor is the resolved principal driving a workflow operation.
type Actor struct {
	UserID string
	Name   string
	Role   user.Role
}

// ============= Request DTOs =============

type CreateTaskRequest struct {
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	AssigneeIDs     []string     `json:"assignee_ids"`
	TeamID          *string      `json:"team_id"`
	DueDate         string       `json:"due_date"`
	Priority        Priority     `json:"priority"`
	Category        Category     `json:"category"`
	Attachments     []Attachment `json:"attachments"`
	ReviewerIDs     []string     `json:"reviewer_ids"`
	NotifyAssignees bool         `json:"notify_assignees"`
}

func (r CreateTaskRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Title) {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "title is required"})
	}
	if len(r.AssigneeIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "assignee_ids", Message: "at least one assignee is required"})
	}
	if _, ok := validator.IsValidDate(r.DueDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "due_date", Message: "due date must be in YYYY-MM-DD format"})
	}
	if !validator.IsInSlice(string(r.Priority), []string{"low", "medium", "high", "critical"}) {
		errs = append(errs, validator.ValidationError{Field: "priority", Message: "priority must be low, medium, high or critical"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ReviewRequest struct {
	Approve bool   `json:"approve"`
	Comment string `json:"comment"`
}

// UpdateTaskRequest carries partial edits to non-status fields. Attachments
// replace the stored list when present, append when AppendAttachments is set.
type UpdateTaskRequest struct {
	Title             *string      `json:"title"`
	Description       *string      `json:"description"`
	AssigneeIDs       []string     `json:"assignee_ids"`
	TeamID            *string      `json:"team_id"`
	DueDate           *string      `json:"due_date"`
	Priority          *Priority    `json:"priority"`
	Category          *Category    `json:"category"`
	Attachments       []Attachment `json:"attachments"`
	AppendAttachments bool         `json:"append_attachments"`
	ReviewerIDs       []string     `json:"reviewer_ids"`
}

func (r UpdateTaskRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Title != nil && validator.IsEmpty(*r.Title) {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "title cannot be empty"})
	}
	if r.AssigneeIDs != nil && len(r.AssigneeIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "assignee_ids", Message: "at least one assignee is required"})
	}
	if r.DueDate != nil {
		if _, ok := validator.IsValidDate(*r.DueDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "due_date", Message: "due date must be in YYYY-MM-DD format"})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type Filter struct {
	Status     *Status
	AssigneeID *string
	CreatedBy  *string
	Page       int
	Limit      int
}

func (f *Filter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

// ============= Response DTOs =============

type TaskResponse struct {
	TaskID      int64        `json:"task_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	AssigneeIDs []string     `json:"assignee_ids"`
	TeamID      *string      `json:"team_id"`
	DueDate     string       `json:"due_date"`
	Priority    Priority     `json:"priority"`
	Category    Category     `json:"category"`
	Status      Status       `json:"status"`
	Progress    Status       `json:"progress"` // alias of status for legacy clients
	Attachments []Attachment `json:"attachments"`
	CreatedBy   string       `json:"created_by"`
	ReviewerIDs []string     `json:"reviewer_ids"`
	ReviewNotes []ReviewNote `json:"review_notes"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`
}

type ListTaskResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Tasks      []TaskResponse `json:"tasks"`
}

// ToResponse converts a Task entity to its API shape.
func ToResponse(t Task) TaskResponse {
	return TaskResponse{
		TaskID:      t.TaskID,
		Title:       t.Title,
		Description: t.Description,
		AssigneeIDs: t.AssigneeIDs,
		TeamID:      t.TeamID,
		DueDate:     t.DueDate,
		Priority:    t.Priority,
		Category:    t.Category,
		Status:      t.Status,
		Progress:    t.Status,
		Attachments: t.Attachments,
		CreatedBy:   t.CreatedBy,
		ReviewerIDs: t.ReviewerIDs,
		ReviewNotes: t.ReviewNotes,
		CreatedAt:   t.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   t.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}
