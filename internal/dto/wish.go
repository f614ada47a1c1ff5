package dto

import (
	"time"

	"github.com/lvtodo/lvtodo-api/internal/models"
)

// WishApprovalDTO represents an approval vote in API responses
type WishApprovalDTO struct {
	UserID        uint64    `json:"user_id"`
	SuggestedCost int       `json:"suggested_cost"`
	CreatedAt     time.Time `json:"created_at"`
}

// WishDTO represents a wish in API responses
type WishDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Cost        int               `json:"cost"`
	Status      models.WishStatus `json:"status"`
	CreatedBy   uint64            `json:"created_by"`
	GroupID     uint64            `json:"group_id"`
	ApprovedAt  *time.Time        `json:"approved_at"`
	CompletedAt *time.Time        `json:"completed_at"`
	CreatedAt   time.Time         `json:"created_at"`
	Approvals   []WishApprovalDTO `json:"approvals"`
}

// ToWishDTO converts a wish to DTO
func ToWishDTO(wish models.Wish) WishDTO {
	approvals := make([]WishApprovalDTO, len(wish.Approvals))
	for i, a := range wish.Approvals {
		approvals[i] = WishApprovalDTO{
			UserID:        a.UserID,
			SuggestedCost: a.SuggestedCost,
			CreatedAt:     a.CreatedAt,
		}
	}

	return WishDTO{
		ID:          wish.ID,
		Title:       wish.Title,
		Description: wish.Description,
		Cost:        wish.Cost,
		Status:      wish.Status,
		CreatedBy:   wish.CreatedBy,
		GroupID:     wish.GroupID,
		ApprovedAt:  wish.ApprovedAt,
		CompletedAt: wish.CompletedAt,
		CreatedAt:   wish.CreatedAt,
		Approvals:   approvals,
	}
}

// ToWishDTOs converts a slice of wishes to DTOs
func ToWishDTOs(wishes []models.Wish) []WishDTO {
	out := make([]WishDTO, len(wishes))
	for i, wish := range wishes {
		out[i] = ToWishDTO(wish)
	}
	return out
}
