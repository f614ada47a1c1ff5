// Package notifications provides the outbound notification sink and
// the message templates used by the task and wish engines. Delivery is
// fire-and-forget: failures are logged and never abort the state
// change that triggered them.
package notifications

import (
	"context"
	"fmt"
	"log"
)

// Notifier delivers a message to a target topic. Delivery is
// at-least-once at best; callers must not rely on it.
type Notifier interface {
	Send(ctx context.Context, target, title, body string) error
}

// UserTopic returns the per-user notification topic.
func UserTopic(userID uint64) string {
	return fmt.Sprintf("user_%d", userID)
}

// LogNotifier writes notifications to the process log. It stands in
// for a push/email gateway in development and tests.
type LogNotifier struct{}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

// Send logs the notification.
func (n *LogNotifier) Send(_ context.Context, target, title, body string) error {
	log.Printf("notification to %s: %s / %s", target, title, body)
	return nil
}
