package notification

import (
	"context"
)

// Repository defines data access for notification records. Read-state and
// delete mutations are scoped to the owning receiver; records are only ever
// soft-deleted.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	CreateBatch(ctx context.Context, notifications []*Notification) error

	// ListForReceiver returns a page of non-deleted records, newest first,
	// plus the total matching count.
	ListForReceiver(ctx context.Context, receiverID string, filter ListFilter) ([]*Notification, int, error)

	UnreadCount(ctx context.Context, receiverID string) (int, error)

	// MarkRead returns false when no matching non-deleted record owned by
	// the receiver exists.
	MarkRead(ctx context.Context, id, receiverID string) (bool, error)
	MarkAllRead(ctx context.Context, receiverID string) error

	// SoftDelete returns false under the same ownership condition as
	// MarkRead.
	SoftDelete(ctx context.Context, id, receiverID string) (bool, error)
}
