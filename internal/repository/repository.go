package repository

import (
	"errors"
	"time"

	"github.com/lvtodo/lvtodo-api/internal/models"
)

var (
	// ErrStatusConflict is returned when a conditional status update
	// finds the entity in a different status than expected.
	ErrStatusConflict = errors.New("repository: entity not in expected status")
	// ErrInsufficientPoints is returned when a point debit would take
	// a balance below zero.
	ErrInsufficientPoints = errors.New("repository: insufficient points")
	// ErrDuplicateApproval is returned when a user has already voted
	// on a wish.
	ErrDuplicateApproval = errors.New("repository: approval already recorded")
)

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	GroupIDs   []uint64
	Status     *models.TaskStatus
	AssignedTo *uint64
	AssignedBy *uint64
	Page       int
	PageSize   int
}

// ConfirmationInput carries everything the reward settlement needs to
// apply atomically.
type ConfirmationInput struct {
	TaskID      uint64
	PriorStatus models.TaskStatus
	ConfirmedBy uint64
	ConfirmedAt time.Time
	AssigneeID  uint64
	Points      int
	XP          int
	History     *models.TaskHistory
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a task together with its initial history record
	Create(task *models.Task, history *models.TaskHistory) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// ListActive returns all tasks still subject to deadline sweeps
	// (status pending or in_progress)
	ListActive() ([]models.Task, error)

	// Transition performs a conditional status update guarded on the
	// task's current status, plus an optional history append, in one
	// transaction. Returns ErrStatusConflict when the task is not in
	// any of the expected prior statuses.
	Transition(taskID uint64, from []models.TaskStatus, updates map[string]interface{}, history *models.TaskHistory) error

	// SettleConfirmation confirms a task and credits the assignee's
	// points/XP in a single transaction. The status update is keyed on
	// the exact prior status so the reward applies at most once.
	SettleConfirmation(input ConfirmationInput) error

	// MarkNotified sets a reminder flag if it is still unset. Reports
	// whether this call flipped the flag.
	MarkNotified(taskID uint64, column string) (bool, error)

	// MarkOverdue transitions a still-active task to late, appending a
	// history record. Reports whether the transition happened.
	MarkOverdue(taskID uint64, history *models.TaskHistory) (bool, error)
}

// WishRepository defines the interface for wish data access
type WishRepository interface {
	// Create creates a new wish
	Create(wish *models.Wish) error

	// FindByID finds a wish by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Wish, error)

	// ListByGroup lists a group's wishes, newest first
	ListByGroup(groupID uint64) ([]models.Wish, error)

	// ListPendingByGroup lists a group's wishes awaiting approval
	ListPendingByGroup(groupID uint64) ([]models.Wish, error)

	// FindApproval finds a specific approval vote
	FindApproval(wishID, userID uint64) (*models.WishApproval, error)

	// ListApprovals lists a wish's approval votes in voting order
	ListApprovals(wishID uint64) ([]models.WishApproval, error)

	// Approve records an approval vote and, once the quorum is
	// reached, activates the wish with the rounded mean of the
	// suggested costs, all in one transaction. Reports whether this
	// vote activated the wish.
	Approve(wishID, userID uint64, suggestedCost, quorum int, approvedAt time.Time) (bool, error)

	// Complete debits the creator's points and marks the wish
	// completed in a single transaction. The debit is conditional on
	// the balance covering the cost; no partial debit is possible.
	Complete(wishID, creatorID uint64, cost int, completedAt time.Time) error

	// UpdateStatus performs a conditional status update. Returns
	// ErrStatusConflict when the wish is not in the expected status.
	UpdateStatus(wishID uint64, from, to models.WishStatus) error

	// CountCompletedByCreator counts the wishes a user has redeemed
	CountCompletedByCreator(userID uint64) (int64, error)
}

// GroupRepository defines the interface for group data access
type GroupRepository interface {
	// Create creates a new group
	Create(group *models.Group) error

	// FindByID finds a group by ID
	FindByID(id uint64) (*models.Group, error)

	// FindByInviteCode finds a group by invite code
	FindByInviteCode(code string) (*models.Group, error)

	// Update updates a group
	Update(group *models.Group) error

	// Delete deletes a group and its tasks, wishes, approval votes and
	// memberships in a transaction. Task history and member balances
	// are left untouched.
	Delete(id uint64) error

	// AddMember adds a member to a group
	AddMember(member *models.GroupMember) error

	// RemoveMember removes a member from a group
	RemoveMember(groupID, userID uint64) error

	// FindMember finds a specific group member
	FindMember(groupID, userID uint64) (*models.GroupMember, error)

	// ListMembersByUserID lists all groups a user is a member of
	ListMembersByUserID(userID uint64) ([]models.GroupMember, error)

	// ListMembers lists all members of a group
	ListMembers(groupID uint64) ([]models.GroupMember, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// Update updates a user's profile fields
	Update(user *models.User) error

	// ListAchievements lists the achievements a user has earned
	ListAchievements(userID uint64) ([]models.UserAchievement, error)

	// AwardAchievement records an achievement and credits its reward
	// in one transaction. Reports false without error when the user
	// already holds the achievement.
	AwardAchievement(userID uint64, achievementID string, points, xp int, earnedAt time.Time) (bool, error)
}

// HistoryRepository defines the interface for the append-only task
// history log
type HistoryRepository interface {
	// Create appends a history record
	Create(record *models.TaskHistory) error

	// ListByUser lists a user's history records, oldest first
	ListByUser(userID uint64) ([]models.TaskHistory, error)

	// ListByTask lists a task's history records, oldest first
	ListByTask(taskID uint64) ([]models.TaskHistory, error)
}
