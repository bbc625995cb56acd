package task

import (
	"time"
)

// Status is the workflow state of a task. It is the single canonical state;
// the legacy progress mirror is exposed only as a response alias.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusInReview   Status = "in_review"
	StatusCompleted  Status = "completed"
	StatusReverted   Status = "reverted"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type Category string

const (
	CategoryDevelopment Category = "development"
	CategoryDesign      Category = "design"
	CategoryMarketing   Category = "marketing"
	CategoryOperations  Category = "operations"
	CategoryOther       Category = "other"
)

// acceptSources / submitSources / reviewSources are the legal source states
// for each workflow transition. Reverted loops back through accept, so the
// review cycle is re-enterable without bound.
var (
	AcceptSources = []Status{StatusNotStarted, StatusReverted}
	SubmitSources = []Status{StatusInProgress}
	ReviewSources = []Status{StatusInReview}
)

// Attachment is a stored file reference on a task.
type Attachment struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// ReviewNote is one revert comment. Notes are kept structured rather than
// concatenated into a free-text field.
type ReviewNote struct {
	Author    string    `json:"author"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// Task is a unit of assignable work moving through the review workflow.
type Task struct {
	ID          string // storage primary key
	TaskID      int64  // human-facing id, YYMMDD prefix + 5 random digits
	Title       string
	Description string
	AssigneeIDs []string
	TeamID      *string
	DueDate     string // civil date, YYYY-MM-DD
	Priority    Priority
	Category    Category
	Status      Status
	Attachments []Attachment
	CreatedBy   string
	ReviewerIDs []string // always includes CreatedBy
	ReviewNotes []ReviewNote
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsAssignee reports whether the user is assigned to the task.
func (t *Task) IsAssignee(userID string) bool {
	for _, id := range t.AssigneeIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsReviewer reports whether the user may resolve a review. The creator is
// always a reviewer.
func (t *Task) IsReviewer(userID string) bool {
	if userID == t.CreatedBy {
		return true
	}
	for _, id := range t.ReviewerIDs {
		if id == userID {
			return true
		}
	}
	return false
}
