package models

import "time"

type HistoryAction string

const (
	HistoryActionCreated   HistoryAction = "created"
	HistoryActionStarted   HistoryAction = "started"
	HistoryActionCompleted HistoryAction = "completed"
	HistoryActionLate      HistoryAction = "late"
	HistoryActionConfirmed HistoryAction = "confirmed"
	HistoryActionDisputed  HistoryAction = "disputed"
)

// TaskHistory is an append-only audit record. Rows are never updated
// or deleted, and they survive group deletion.
type TaskHistory struct {
	ID      uint64        `gorm:"primarykey" json:"id"`
	TaskID  uint64        `gorm:"not null;index" json:"task_id"`
	UserID  uint64        `gorm:"not null;index" json:"user_id"`
	GroupID uint64        `gorm:"not null;index" json:"group_id"`
	Action  HistoryAction `gorm:"type:varchar(20);not null" json:"action"`

	// Reward metadata, populated on confirmation.
	Points int `gorm:"not null;default:0" json:"points"`
	XP     int `gorm:"column:xp;not null;default:0" json:"xp"`

	CreatedAt time.Time `json:"created_at"`
}
