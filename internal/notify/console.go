package notify

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kemukujara/lolbackup/internal/domain"
)

// ConsoleNotifier prints notifications for the user at the terminal.
// Info goes to out; warnings and errors go to errOut.
type ConsoleNotifier struct {
	out    io.Writer
	errOut io.Writer
}

// NewConsoleNotifier creates a ConsoleNotifier. Nil writers default to stdout and stderr.
func NewConsoleNotifier(out, errOut io.Writer) *ConsoleNotifier {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &ConsoleNotifier{out: out, errOut: errOut}
}

// Notify prints the notification body.
func (c *ConsoleNotifier) Notify(_ context.Context, notification *domain.Notification) error {
	w := c.out
	if notification.Level != domain.NotificationLevelInfo {
		w = c.errOut
	}
	_, err := fmt.Fprintln(w, notification.Body)
	return err
}

// Validate always returns nil.
func (c *ConsoleNotifier) Validate(_ context.Context) error {
	return nil
}

// Ensure ConsoleNotifier implements domain.Notifier.
var _ domain.Notifier = (*ConsoleNotifier)(nil)
