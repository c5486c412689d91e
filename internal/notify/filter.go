package notify

import (
	"context"

	"github.com/kemukujara/lolbackup/internal/config"
	"github.com/kemukujara/lolbackup/internal/domain"
)

// FilteredNotifier forwards only the notifications a NotifyLevel asks for.
type FilteredNotifier struct {
	next  domain.Notifier
	level config.NotifyLevel
}

// NewFilteredNotifier wraps next so that it only receives notifications selected by level.
func NewFilteredNotifier(next domain.Notifier, level config.NotifyLevel) *FilteredNotifier {
	return &FilteredNotifier{next: next, level: level}
}

// Notify forwards the notification when the configured level selects it.
func (f *FilteredNotifier) Notify(ctx context.Context, notification *domain.Notification) error {
	if !Selects(f.level, notification.Level) {
		return nil
	}
	return f.next.Notify(ctx, notification)
}

// Validate validates the wrapped notifier.
func (f *FilteredNotifier) Validate(ctx context.Context) error {
	return f.next.Validate(ctx)
}

// Selects reports whether a notification of the given level passes the filter.
func Selects(filter config.NotifyLevel, level domain.NotificationLevel) bool {
	switch filter {
	case config.NotifyAlways:
		return true
	case config.NotifyWarning:
		return level == domain.NotificationLevelWarning || level == domain.NotificationLevelError
	case config.NotifyError:
		return level == domain.NotificationLevelError
	default:
		return false
	}
}

// Ensure FilteredNotifier implements domain.Notifier.
var _ domain.Notifier = (*FilteredNotifier)(nil)
