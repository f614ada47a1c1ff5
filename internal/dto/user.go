package dto

import (
	"github.com/lvtodo/lvtodo-api/internal/game"
	"github.com/lvtodo/lvtodo-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64 `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// ProfileDTO is the full view of the current user, with the derived
// level fields.
type ProfileDTO struct {
	UserDTO
	Points         int     `json:"points"`
	XP             int     `json:"xp"`
	Level          int     `json:"level"`
	LevelProgress  float64 `json:"level_progress"`
	XPForNextLevel int     `json:"xp_for_next_level"`
}

// ToUserDTO converts a user to DTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:          user.ID,
		Username:    user.Username,
		DisplayName: user.DisplayName,
	}
}

// ToProfileDTO converts a user to the full profile DTO
func ToProfileDTO(user models.User) ProfileDTO {
	return ProfileDTO{
		UserDTO:        ToUserDTO(user),
		Points:         user.Points,
		XP:             user.XP,
		Level:          game.Level(user.XP),
		LevelProgress:  game.LevelProgress(user.XP),
		XPForNextLevel: game.XPForNextLevel(user.XP),
	}
}
