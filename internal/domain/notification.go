package domain

import "context"

// NotificationLevel represents the severity of a notification.
type NotificationLevel string

const (
	// NotificationLevelInfo is for completed operations and cancellations.
	NotificationLevelInfo NotificationLevel = "info"
	// NotificationLevelWarning is for degraded runs, such as a failed recovery snapshot.
	NotificationLevelWarning NotificationLevel = "warning"
	// NotificationLevelError is for failed operations.
	NotificationLevelError NotificationLevel = "error"
)

// Notification is a user-facing message, the equivalent of a message box.
type Notification struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Level NotificationLevel `json:"level"`
}

// NewNotification creates a new notification.
func NewNotification(title, body string, level NotificationLevel) *Notification {
	return &Notification{
		Title: title,
		Body:  body,
		Level: level,
	}
}

// InfoNotification creates an info-level notification.
func InfoNotification(title, body string) *Notification {
	return NewNotification(title, body, NotificationLevelInfo)
}

// WarningNotification creates a warning-level notification.
func WarningNotification(title, body string) *Notification {
	return NewNotification(title, body, NotificationLevelWarning)
}

// ErrorNotification creates an error-level notification.
func ErrorNotification(title, body string) *Notification {
	return NewNotification(title, body, NotificationLevelError)
}

// Notifier delivers notifications to the user.
type Notifier interface {
	// Notify sends a notification.
	Notify(ctx context.Context, notification *Notification) error

	// Validate checks if the notifier is properly configured.
	Validate(ctx context.Context) error
}

// NopNotifier discards every notification.
type NopNotifier struct{}

// Notify does nothing.
func (n *NopNotifier) Notify(_ context.Context, _ *Notification) error {
	return nil
}

// Validate always returns nil.
func (n *NopNotifier) Validate(_ context.Context) error {
	return nil
}
