package models

import (
	"time"

	"gorm.io/gorm"
)

type WishStatus string

const (
	WishStatusPendingApproval WishStatus = "pending_approval"
	WishStatusActive          WishStatus = "active"
	WishStatusCompleted       WishStatus = "completed"
	WishStatusCancelled       WishStatus = "cancelled"
)

type Wish struct {
	ID          uint64 `gorm:"primarykey" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	// Cost stays 0 while pending approval; set from the mean of the
	// suggested costs when the wish activates.
	Cost int `gorm:"not null;default:0" json:"cost"`

	CreatedBy uint64     `gorm:"not null" json:"created_by"`
	GroupID   uint64     `gorm:"not null" json:"group_id"`
	Status    WishStatus `gorm:"type:varchar(20);not null;default:'pending_approval'" json:"status"`

	ApprovedAt  *time.Time `json:"approved_at"`
	CompletedAt *time.Time `json:"completed_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Creator   User           `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Group     Group          `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Approvals []WishApproval `gorm:"foreignKey:WishID" json:"approvals,omitempty"`
}
