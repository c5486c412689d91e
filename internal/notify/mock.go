package notify

import (
	"context"

	"github.com/kemukujara/lolbackup/internal/domain"
)

// MockNotifier records notifications instead of sending them.
type MockNotifier struct {
	NotifyFunc   func(ctx context.Context, notification *domain.Notification) error
	ValidateFunc func(ctx context.Context) error

	Notifications []*domain.Notification
}

func (m *MockNotifier) Notify(ctx context.Context, notification *domain.Notification) error {
	m.Notifications = append(m.Notifications, notification)
	if m.NotifyFunc != nil {
		return m.NotifyFunc(ctx, notification)
	}
	return nil
}

func (m *MockNotifier) Validate(ctx context.Context) error {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx)
	}
	return nil
}

// Last returns the most recent notification, or nil if none was sent.
func (m *MockNotifier) Last() *domain.Notification {
	if len(m.Notifications) == 0 {
		return nil
	}
	return m.Notifications[len(m.Notifications)-1]
}

// Titles lists the titles of every recorded notification in send order.
func (m *MockNotifier) Titles() []string {
	titles := make([]string, 0, len(m.Notifications))
	for _, n := range m.Notifications {
		titles = append(titles, n.Title)
	}
	return titles
}

// Levels lists the level of every recorded notification in send order.
func (m *MockNotifier) Levels() []domain.NotificationLevel {
	levels := make([]domain.NotificationLevel, 0, len(m.Notifications))
	for _, n := range m.Notifications {
		levels = append(levels, n.Level)
	}
	return levels
}

var _ domain.Notifier = (*MockNotifier)(nil)
