package models

import (
	"time"

	"gorm.io/gorm"
)

type Group struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	InviteCode  string         `gorm:"type:varchar(6);uniqueIndex;not null" json:"invite_code"`
	CreatedBy   uint64         `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Settings
	AllowWishes             bool `gorm:"not null;default:true" json:"allow_wishes"`
	RequireTaskConfirmation bool `gorm:"not null;default:true" json:"require_task_confirmation"`

	// Relations
	Creator User          `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Members []GroupMember `gorm:"foreignKey:GroupID" json:"members,omitempty"`
	Tasks   []Task        `gorm:"foreignKey:GroupID" json:"tasks,omitempty"`
	Wishes  []Wish        `gorm:"foreignKey:GroupID" json:"wishes,omitempty"`
}
