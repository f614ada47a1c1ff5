package notifications

import (
	"fmt"
	"time"

	"github.com/lvtodo/lvtodo-api/internal/models"
)

// Message is a rendered subject/body pair.
type Message struct {
	Title string
	Body  string
}

// NewTaskMessage announces a freshly assigned task to the assignee.
func NewTaskMessage(task *models.Task, assignerName string) Message {
	return Message{
		Title: "New task",
		Body:  fmt.Sprintf("%s assigned you: %s", assignerName, task.Title),
	}
}

// TaskCompletedMessage tells the assigner the task awaits confirmation.
func TaskCompletedMessage(task *models.Task, assigneeName string) Message {
	return Message{
		Title: "Task completed",
		Body:  fmt.Sprintf("%s completed the task: %s", assigneeName, task.Title),
	}
}

// TaskConfirmedMessage tells the assignee the reward landed.
func TaskConfirmedMessage(task *models.Task, points, xp int) Message {
	return Message{
		Title: "Task confirmed",
		Body:  fmt.Sprintf("%s confirmed: you earned %d points and %d XP", task.Title, points, xp),
	}
}

// TaskDisputedMessage tells the assignee the task was sent back.
func TaskDisputedMessage(task *models.Task) Message {
	return Message{
		Title: "Task disputed",
		Body:  fmt.Sprintf("The task was sent back for rework: %s", task.Title),
	}
}

// ReminderMessage warns the assignee about an approaching deadline.
func ReminderMessage(task *models.Task, now time.Time) Message {
	return Message{
		Title: "Task reminder",
		Body:  fmt.Sprintf("%s left: %s", FormatTimeRemaining(task.Deadline, now), task.Title),
	}
}

// OverdueMessage tells the assignee the deadline has passed.
func OverdueMessage(task *models.Task) Message {
	return Message{
		Title: "Task overdue",
		Body:  fmt.Sprintf("Deadline passed: %s", task.Title),
	}
}

// WishActivatedMessage tells the wish creator the group settled on a
// cost.
func WishActivatedMessage(wish *models.Wish) Message {
	return Message{
		Title: "Wish approved",
		Body:  fmt.Sprintf("Your wish %q is active for %d points", wish.Title, wish.Cost),
	}
}

// WishCompletedMessage confirms the redemption to the creator.
func WishCompletedMessage(wish *models.Wish) Message {
	return Message{
		Title: "Wish completed",
		Body:  fmt.Sprintf("You redeemed %q for %d points", wish.Title, wish.Cost),
	}
}

// FormatTimeRemaining renders the time until the deadline as a short
// human-readable string. Past deadlines render as "overdue".
func FormatTimeRemaining(deadline, now time.Time) string {
	diff := deadline.Sub(now)
	if diff <= 0 {
		return "overdue"
	}

	days := int(diff.Hours()) / 24
	hours := int(diff.Hours()) % 24
	minutes := int(diff.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
