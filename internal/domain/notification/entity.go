package notification

import (
	"time"
)

// Category groups notifications by the engine event that produced them.
type Category string

const (
	CategoryAttendance Category = "attendance"
	CategoryTask       Category = "task"
	CategorySystem     Category = "system"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Notification is one fact delivered to one receiver. Multi-receiver
// requests fan out into independent records; there is no shared record.
type Notification struct {
	ID         string
	ReceiverID string
	SenderID   *string // nil means system-generated
	Title      string
	Message    string
	Category   Category
	Priority   Priority
	Link       string
	Metadata   map[string]interface{}
	IsRead     bool
	ReadAt     *time.Time
	IsDeleted  bool
	CreatedAt  time.Time
}
