package notification

import "errors"

// Notification domain errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidReceiver      = errors.New("receiver is not a known user")
	ErrNoValidReceivers     = errors.New("no valid receivers")
)
