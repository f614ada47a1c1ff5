package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskDifficulty string

const (
	DifficultyEasy TaskDifficulty = "easy"
	DifficultyHard TaskDifficulty = "hard"
)

// Valid reports whether d is a known difficulty.
func (d TaskDifficulty) Valid() bool {
	return d == DifficultyEasy || d == DifficultyHard
}

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusLate       TaskStatus = "late"
	TaskStatusConfirmed  TaskStatus = "confirmed"
)

// ActiveTaskStatuses are the statuses scanned by the deadline sweeps.
var ActiveTaskStatuses = []TaskStatus{TaskStatusPending, TaskStatusInProgress}

type Task struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Difficulty  TaskDifficulty `gorm:"type:varchar(10);not null" json:"difficulty"`

	// Reward snapshot, fixed at creation time.
	Points int `gorm:"not null" json:"points"`
	XP     int `gorm:"column:xp;not null" json:"xp"`

	AssignedTo uint64     `gorm:"not null" json:"assigned_to"`
	AssignedBy uint64     `gorm:"not null" json:"assigned_by"`
	GroupID    uint64     `gorm:"not null" json:"group_id"`
	Status     TaskStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Deadline   time.Time  `gorm:"not null" json:"deadline"`

	// Reminder flags, one per notification threshold. Each fires at
	// most once per task.
	Notified80 bool `gorm:"column:notified_80;not null;default:false" json:"-"`
	Notified50 bool `gorm:"column:notified_50;not null;default:false" json:"-"`
	Notified30 bool `gorm:"column:notified_30;not null;default:false" json:"-"`
	Notified5  bool `gorm:"column:notified_5;not null;default:false" json:"-"`

	CompletedAt *time.Time `json:"completed_at"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
	ConfirmedBy *uint64    `json:"confirmed_by"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Assignee User  `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	Assigner User  `gorm:"foreignKey:AssignedBy" json:"assigner,omitempty"`
	Group    Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}

// IsActive reports whether the task still counts toward deadline sweeps.
func (t *Task) IsActive() bool {
	return t.Status == TaskStatusPending || t.Status == TaskStatusInProgress
}
