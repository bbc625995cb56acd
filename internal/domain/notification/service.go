package notification

import (
	"context"
)

// Service is the notification fan-out engine. Persistence is the durability
// guarantee; live delivery over the hub is a best-effort latency
// optimization whose failures never reach callers.
type Service interface {
	// NotifyOne persists one record for a validated receiver.
	NotifyOne(ctx context.Context, req CreateNotificationRequest) error

	// NotifyMany fans one fact out to every valid receiver, silently
	// dropping invalid ids. Fails only when no receiver is valid.
	NotifyMany(ctx context.Context, receiverIDs []string, req CreateNotificationRequest) error

	List(ctx context.Context, receiverID string, filter ListFilter) (ListResponse, error)
	UnreadCount(ctx context.Context, receiverID string) (int, error)
	MarkRead(ctx context.Context, receiverID, notificationID string) error
	MarkAllRead(ctx context.Context, receiverID string) error
	Delete(ctx context.Context, receiverID, notificationID string) error

	// Subscribe attaches a live-delivery channel for the receiver.
	Subscribe(ctx context.Context, receiverID string) (<-chan NotificationResponse, func())

	// Stop drains the queue and stops the background workers.
	Stop()
}
