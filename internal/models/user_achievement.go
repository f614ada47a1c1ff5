package models

import "time"

// UserAchievement records that a user earned an achievement. The
// composite primary key makes the reward credit one-time.
type UserAchievement struct {
	UserID        uint64    `gorm:"primarykey" json:"user_id"`
	AchievementID string    `gorm:"primarykey;type:varchar(50)" json:"achievement_id"`
	EarnedAt      time.Time `json:"earned_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
