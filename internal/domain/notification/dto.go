package notification

import (
	"time"
)

// ============= Request DTOs =============

// CreateNotificationRequest carries one notification intent. For
// NotifyMany the ReceiverID field is ignored in favor of the receiver list.
type CreateNotificationRequest struct {
	ReceiverID string
	SenderID   *string
	Title      string
	Message    string
	Category   Category
	Priority   Priority
	Link       string
	Metadata   map[string]interface{}
}

type ListFilter struct {
	Category *Category
	IsRead   *bool
	Page     int
	PageSize int
}

func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > 100 {
		f.PageSize = 20
	}
}

// ============= Response DTOs =============

type NotificationResponse struct {
	ID        string                 `json:"id"`
	SenderID  *string                `json:"sender_id,omitempty"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Category  Category               `json:"category"`
	Priority  Priority               `json:"priority"`
	Link      string                 `json:"link,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	IsRead    bool                   `json:"is_read"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type ListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
	UnreadCount   int                    `json:"unread_count"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
}

// ToResponse converts a Notification entity to its API shape.
func ToResponse(n *Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		SenderID:  n.SenderID,
		Title:     n.Title,
		Message:   n.Message,
		Category:  n.Category,
		Priority:  n.Priority,
		Link:      n.Link,
		Metadata:  n.Metadata,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
