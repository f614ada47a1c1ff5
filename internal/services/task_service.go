package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lvtodo/lvtodo-api/internal/game"
	"github.com/lvtodo/lvtodo-api/internal/models"
	"github.com/lvtodo/lvtodo-api/internal/notifications"
	"github.com/lvtodo/lvtodo-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrNotTaskAssignee   = errors.New("only the assignee can perform this action")
	ErrNotTaskAssigner   = errors.New("only the assigner can perform this action")
	ErrInvalidTransition = errors.New("task is not in a status that allows this operation")
	ErrTitleRequired     = errors.New("title is required")
	ErrInvalidDifficulty = errors.New("difficulty must be easy or hard")
	ErrDeadlineNotFuture = errors.New("deadline must be in the future")
	ErrNotGroupMember    = errors.New("user is not a member of the group")
)

// TaskService drives the task lifecycle state machine:
// pending -> in_progress -> completed|late -> confirmed, with dispute
// reopening the task. Reward settlement happens exactly once, on
// confirmation.
type TaskService struct {
	taskRepo     repository.TaskRepository
	groupRepo    repository.GroupRepository
	userRepo     repository.UserRepository
	notifier     notifications.Notifier
	achievements *AchievementService

	now func() time.Time
}

// NewTaskService creates a new TaskService. The achievement service is
// optional.
func NewTaskService(
	taskRepo repository.TaskRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	notifier notifications.Notifier,
	achievements *AchievementService,
) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		groupRepo:    groupRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		achievements: achievements,
		now:          time.Now,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Difficulty  models.TaskDifficulty
	AssignedTo  uint64
	AssignedBy  uint64
	GroupID     uint64
	Deadline    time.Time
}

// TaskReward is the settled outcome of a confirmation.
type TaskReward struct {
	Points int `json:"points"`
	XP     int `json:"xp"`
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID       uint64
	GroupID      *uint64
	AssignedToMe bool
	AssignedByMe bool
	Status       *models.TaskStatus
	Page         int
	PageSize     int
}

// ListTasks returns tasks accessible to a user based on the provided filters
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	groupIDs, err := s.resolveAccessibleGroupIDs(input.UserID, input.GroupID)
	if err != nil {
		return nil, 0, err
	}

	if len(groupIDs) == 0 {
		return []models.Task{}, 0, nil
	}

	filter := repository.TaskFilter{
		GroupIDs: groupIDs,
		Status:   input.Status,
		Page:     input.Page,
		PageSize: input.PageSize,
	}
	if input.AssignedToMe {
		filter.AssignedTo = &input.UserID
	}
	if input.AssignedByMe {
		filter.AssignedBy = &input.UserID
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task with related data
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Assignee", "Assigner", "Group")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask creates a task with a reward snapshot fixed from the
// difficulty at creation time.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if !input.Difficulty.Valid() {
		return nil, ErrInvalidDifficulty
	}

	now := s.now()
	if !input.Deadline.After(now) {
		return nil, ErrDeadlineNotFuture
	}

	if err := s.ensureGroupMember(input.GroupID, input.AssignedBy); err != nil {
		return nil, err
	}
	if err := s.ensureGroupMember(input.GroupID, input.AssignedTo); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Difficulty:  input.Difficulty,
		Points:      game.TaskPoints(input.Difficulty, false),
		XP:          game.TaskXP(input.Difficulty),
		AssignedTo:  input.AssignedTo,
		AssignedBy:  input.AssignedBy,
		GroupID:     input.GroupID,
		Status:      models.TaskStatusPending,
		Deadline:    input.Deadline,
	}

	history := &models.TaskHistory{
		UserID:  input.AssignedTo,
		GroupID: input.GroupID,
		Action:  models.HistoryActionCreated,
	}

	if err := s.taskRepo.Create(task, history); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	assigner, err := s.userRepo.FindByID(input.AssignedBy)
	if err == nil {
		s.notify(task.AssignedTo, notifications.NewTaskMessage(task, displayName(assigner)))
	}

	return s.taskRepo.FindByID(task.ID, "Assignee", "Assigner", "Group")
}

// StartTask moves a pending task to in_progress. Only the assignee may
// start it.
func (s *TaskService) StartTask(taskID, actorID uint64) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if task.AssignedTo != actorID {
		return nil, ErrNotTaskAssignee
	}
	if task.Status != models.TaskStatusPending {
		return nil, ErrInvalidTransition
	}

	history := &models.TaskHistory{
		TaskID:  task.ID,
		UserID:  task.AssignedTo,
		GroupID: task.GroupID,
		Action:  models.HistoryActionStarted,
	}

	err = s.taskRepo.Transition(taskID,
		[]models.TaskStatus{models.TaskStatusPending},
		map[string]interface{}{"status": models.TaskStatusInProgress},
		history,
	)
	if err != nil {
		return nil, s.mapTransitionErr(err)
	}

	return s.taskRepo.FindByID(taskID)
}

// CompleteTask marks an in_progress task done. The engine clock decides
// whether it lands in completed or late; no reward is granted yet.
func (s *TaskService) CompleteTask(taskID, actorID uint64) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if task.AssignedTo != actorID {
		return nil, ErrNotTaskAssignee
	}
	if task.Status != models.TaskStatusInProgress {
		return nil, ErrInvalidTransition
	}

	now := s.now()
	newStatus := models.TaskStatusCompleted
	action := models.HistoryActionCompleted
	if now.After(task.Deadline) {
		newStatus = models.TaskStatusLate
		action = models.HistoryActionLate
	}

	history := &models.TaskHistory{
		TaskID:  task.ID,
		UserID:  task.AssignedTo,
		GroupID: task.GroupID,
		Action:  action,
	}

	err = s.taskRepo.Transition(taskID,
		[]models.TaskStatus{models.TaskStatusInProgress},
		map[string]interface{}{"status": newStatus, "completed_at": now},
		history,
	)
	if err != nil {
		return nil, s.mapTransitionErr(err)
	}

	updated, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	assignee, err := s.userRepo.FindByID(task.AssignedTo)
	if err == nil {
		s.notify(task.AssignedBy, notifications.TaskCompletedMessage(updated, displayName(assignee)))
	}

	// Groups can opt out of the confirmation step; the reward then
	// settles immediately on completion, attributed to the assigner.
	group, err := s.groupRepo.FindByID(task.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to find group: %w", err)
	}
	if !group.RequireTaskConfirmation {
		settled, _, err := s.settle(updated, task.AssignedBy)
		if err != nil {
			return nil, err
		}
		return settled, nil
	}

	return updated, nil
}

// ConfirmTask settles the reward. Only the assigner may confirm, only
// from completed or late, and the settlement applies exactly once: the
// status update inside the transaction is keyed on the observed prior
// status, so a concurrent or repeated confirm fails instead of paying
// twice.
func (s *TaskService) ConfirmTask(taskID, actorID uint64) (*models.Task, *TaskReward, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, nil, err
	}

	if task.AssignedBy != actorID {
		return nil, nil, ErrNotTaskAssigner
	}
	if task.Status != models.TaskStatusCompleted && task.Status != models.TaskStatusLate {
		return nil, nil, ErrInvalidTransition
	}

	return s.settle(task, actorID)
}

// settle applies the reward for a completed or late task: status to
// confirmed, assignee credited, history appended, achievements
// re-evaluated.
func (s *TaskService) settle(task *models.Task, confirmedBy uint64) (*models.Task, *TaskReward, error) {
	wasLate := task.Status == models.TaskStatusLate
	points := game.PenalizedPoints(task.Points, wasLate)
	xp := task.XP

	history := &models.TaskHistory{
		TaskID:  task.ID,
		UserID:  task.AssignedTo,
		GroupID: task.GroupID,
		Action:  models.HistoryActionConfirmed,
		Points:  points,
		XP:      xp,
	}

	err := s.taskRepo.SettleConfirmation(repository.ConfirmationInput{
		TaskID:      task.ID,
		PriorStatus: task.Status,
		ConfirmedBy: confirmedBy,
		ConfirmedAt: s.now(),
		AssigneeID:  task.AssignedTo,
		Points:      points,
		XP:          xp,
		History:     history,
	})
	if err != nil {
		return nil, nil, s.mapTransitionErr(err)
	}

	if s.achievements != nil {
		if _, err := s.achievements.Evaluate(task.AssignedTo); err != nil {
			log.Printf("achievement evaluation failed for user %d: %v", task.AssignedTo, err)
		}
	}

	updated, err := s.taskRepo.FindByID(task.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.notify(task.AssignedTo, notifications.TaskConfirmedMessage(updated, points, xp))

	return updated, &TaskReward{Points: points, XP: xp}, nil
}

// DisputeTask sends a completed or late task back to pending. No
// reward was granted, so nothing is reverted; the assignee must redo
// the task.
func (s *TaskService) DisputeTask(taskID, actorID uint64) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if task.AssignedBy != actorID {
		return nil, ErrNotTaskAssigner
	}
	if task.Status != models.TaskStatusCompleted && task.Status != models.TaskStatusLate {
		return nil, ErrInvalidTransition
	}

	history := &models.TaskHistory{
		TaskID:  task.ID,
		UserID:  task.AssignedTo,
		GroupID: task.GroupID,
		Action:  models.HistoryActionDisputed,
	}

	err = s.taskRepo.Transition(taskID,
		[]models.TaskStatus{models.TaskStatusCompleted, models.TaskStatusLate},
		map[string]interface{}{"status": models.TaskStatusPending, "completed_at": nil},
		history,
	)
	if err != nil {
		return nil, s.mapTransitionErr(err)
	}

	updated, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload task: %w", err)
	}

	s.notify(task.AssignedTo, notifications.TaskDisputedMessage(updated))

	return updated, nil
}

func (s *TaskService) findTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (s *TaskService) mapTransitionErr(err error) error {
	if errors.Is(err, repository.ErrStatusConflict) {
		return ErrInvalidTransition
	}
	return fmt.Errorf("failed to update task: %w", err)
}

// resolveAccessibleGroupIDs returns the group IDs the user can access
func (s *TaskService) resolveAccessibleGroupIDs(userID uint64, groupID *uint64) ([]uint64, error) {
	if groupID != nil {
		if err := s.ensureGroupMember(*groupID, userID); err != nil {
			return nil, err
		}
		return []uint64{*groupID}, nil
	}

	memberships, err := s.groupRepo.ListMembersByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group memberships: %w", err)
	}

	groupIDs := make([]uint64, 0, len(memberships))
	for _, m := range memberships {
		groupIDs = append(groupIDs, m.GroupID)
	}

	return groupIDs, nil
}

// ensureGroupMember verifies that a user belongs to a group
func (s *TaskService) ensureGroupMember(groupID, userID uint64) error {
	_, err := s.groupRepo.FindMember(groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotGroupMember
		}
		return fmt.Errorf("failed to verify group membership: %w", err)
	}
	return nil
}

// notify sends a fire-and-forget notification. Failures are logged and
// never abort the triggering operation.
func (s *TaskService) notify(userID uint64, msg notifications.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(context.Background(), notifications.UserTopic(userID), msg.Title, msg.Body); err != nil {
		log.Printf("failed to send notification to user %d: %v", userID, err)
	}
}

func displayName(user *models.User) string {
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return user.Username
}
