package models

import "time"

// WishApproval is one member's approval vote with a cost suggestion.
// The composite primary key guarantees a user votes at most once per
// wish.
type WishApproval struct {
	WishID        uint64    `gorm:"primarykey" json:"wish_id"`
	UserID        uint64    `gorm:"primarykey" json:"user_id"`
	SuggestedCost int       `gorm:"not null" json:"suggested_cost"`
	CreatedAt     time.Time `json:"created_at"`

	// Relations
	Wish Wish `gorm:"foreignKey:WishID" json:"wish,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
