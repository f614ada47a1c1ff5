package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	DisplayName  string         `gorm:"type:varchar(100)" json:"display_name"`
	Points       int            `gorm:"not null;default:0" json:"points"`
	XP           int            `gorm:"column:xp;not null;default:0" json:"xp"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Memberships   []GroupMember     `gorm:"foreignKey:UserID" json:"-"`
	AssignedTasks []Task            `gorm:"foreignKey:AssignedTo" json:"-"`
	CreatedTasks  []Task            `gorm:"foreignKey:AssignedBy" json:"-"`
	Achievements  []UserAchievement `gorm:"foreignKey:UserID" json:"-"`
}
