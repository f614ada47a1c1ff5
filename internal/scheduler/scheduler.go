// Package scheduler runs the background deadline sweeps: reminder
// notifications as the remaining time crosses fixed thresholds, and
// overdue marking once the deadline has passed. Sweeps are idempotent;
// restarting the process never re-sends a reminder thanks to the
// persisted per-threshold flags.
package scheduler

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/lvtodo/lvtodo-api/internal/models"
	"github.com/lvtodo/lvtodo-api/internal/notifications"
	"github.com/lvtodo/lvtodo-api/internal/repository"
)

// threshold pairs a percentage of remaining time with its persisted
// flag column and field accessor.
type threshold struct {
	percent float64
	column  string
	flagged func(*models.Task) bool
}

// thresholds in descending order: a task far past several thresholds
// gets each unsent flag flipped, but only the most urgent reminder is
// actually delivered.
var thresholds = []threshold{
	{80, repository.ColumnNotified80, func(t *models.Task) bool { return t.Notified80 }},
	{50, repository.ColumnNotified50, func(t *models.Task) bool { return t.Notified50 }},
	{30, repository.ColumnNotified30, func(t *models.Task) bool { return t.Notified30 }},
	{5, repository.ColumnNotified5, func(t *models.Task) bool { return t.Notified5 }},
}

// Scheduler owns the periodic deadline sweeps.
type Scheduler struct {
	taskRepo repository.TaskRepository
	notifier notifications.Notifier

	reminderInterval time.Duration
	overdueInterval  time.Duration

	reminderRunning atomic.Bool
	overdueRunning  atomic.Bool

	now func() time.Time
}

// New creates a Scheduler.
func New(taskRepo repository.TaskRepository, notifier notifications.Notifier, reminderInterval, overdueInterval time.Duration) *Scheduler {
	return &Scheduler{
		taskRepo:         taskRepo,
		notifier:         notifier,
		reminderInterval: reminderInterval,
		overdueInterval:  overdueInterval,
		now:              time.Now,
	}
}

// Start launches both sweep loops. They stop when the context is
// cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.loop(ctx, s.reminderInterval, s.RunReminderSweep)
	go s.loop(ctx, s.overdueInterval, s.RunOverdueSweep)
}

func (s *Scheduler) loop(ctx context.Context, interval time.Duration, sweep func(context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sweep(ctx); err != nil {
				log.Printf("scheduler sweep failed: %v", err)
			}
		}
	}
}

// RunReminderSweep scans active tasks and sends deadline reminders for
// every threshold the remaining time has crossed since the last sweep.
// A slow sweep skips instead of overlapping with itself.
func (s *Scheduler) RunReminderSweep(ctx context.Context) error {
	if !s.reminderRunning.CompareAndSwap(false, true) {
		return nil
	}
	defer s.reminderRunning.Store(false)

	tasks, err := s.taskRepo.ListActive()
	if err != nil {
		return err
	}

	now := s.now()
	for i := range tasks {
		task := &tasks[i]
		if !now.Before(task.Deadline) {
			// The overdue sweep owns this task now.
			continue
		}

		if err := s.remind(ctx, task, now); err != nil {
			log.Printf("reminder for task %d failed: %v", task.ID, err)
		}
	}

	return nil
}

// remind flips every crossed-but-unsent threshold flag and delivers a
// single reminder for the most urgent one this sweep flipped. The flag
// is persisted before the send, so a delivery failure drops the
// reminder rather than duplicating it later.
func (s *Scheduler) remind(ctx context.Context, task *models.Task, now time.Time) error {
	remaining := remainingPercent(task, now)

	send := false
	for _, th := range thresholds {
		if remaining > th.percent || th.flagged(task) {
			continue
		}

		flipped, err := s.taskRepo.MarkNotified(task.ID, th.column)
		if err != nil {
			return err
		}
		if flipped {
			send = true
		}
	}

	if !send || s.notifier == nil {
		return nil
	}

	msg := notifications.ReminderMessage(task, now)
	return s.notifier.Send(ctx, notifications.UserTopic(task.AssignedTo), msg.Title, msg.Body)
}

// RunOverdueSweep moves active tasks whose deadline has passed into
// late and notifies the assignee. Per-task failures are logged and do
// not abort the sweep.
func (s *Scheduler) RunOverdueSweep(ctx context.Context) error {
	if !s.overdueRunning.CompareAndSwap(false, true) {
		return nil
	}
	defer s.overdueRunning.Store(false)

	tasks, err := s.taskRepo.ListActive()
	if err != nil {
		return err
	}

	now := s.now()
	for i := range tasks {
		task := &tasks[i]
		if now.Before(task.Deadline) {
			continue
		}

		history := &models.TaskHistory{
			TaskID:  task.ID,
			UserID:  task.AssignedTo,
			GroupID: task.GroupID,
			Action:  models.HistoryActionLate,
		}

		marked, err := s.taskRepo.MarkOverdue(task.ID, history)
		if err != nil {
			log.Printf("overdue marking for task %d failed: %v", task.ID, err)
			continue
		}
		if !marked || s.notifier == nil {
			continue
		}

		msg := notifications.OverdueMessage(task)
		if err := s.notifier.Send(ctx, notifications.UserTopic(task.AssignedTo), msg.Title, msg.Body); err != nil {
			log.Printf("overdue notification for task %d failed: %v", task.ID, err)
		}
	}

	return nil
}

// remainingPercent returns how much of the task's total time window is
// still left, in [0,100].
func remainingPercent(task *models.Task, now time.Time) float64 {
	total := task.Deadline.Sub(task.CreatedAt)
	if total <= 0 {
		return 0
	}

	remaining := task.Deadline.Sub(now)
	if remaining <= 0 {
		return 0
	}

	return float64(remaining) / float64(total) * 100
}
