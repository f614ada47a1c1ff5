package repository

import (
	"errors"
	"math"
	"time"

	"github.com/lvtodo/lvtodo-api/internal/models"
	"gorm.io/gorm"
)

// GormWishRepository is a GORM implementation of WishRepository
type GormWishRepository struct {
	db *gorm.DB
}

// NewWishRepository creates a new WishRepository
func NewWishRepository(db *gorm.DB) WishRepository {
	return &GormWishRepository{db: db}
}

// Create creates a new wish
func (r *GormWishRepository) Create(wish *models.Wish) error {
	return r.db.Create(wish).Error
}

// FindByID finds a wish by ID with optional preloading
func (r *GormWishRepository) FindByID(id uint64, preload ...string) (*models.Wish, error) {
	var wish models.Wish
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&wish, id).Error; err != nil {
		return nil, err
	}

	return &wish, nil
}

// ListByGroup lists a group's wishes, newest first
func (r *GormWishRepository) ListByGroup(groupID uint64) ([]models.Wish, error) {
	var wishes []models.Wish
	if err := r.db.Preload("Approvals").
		Where("group_id = ?", groupID).
		Order("created_at DESC").
		Find(&wishes).Error; err != nil {
		return nil, err
	}
	return wishes, nil
}

// ListPendingByGroup lists a group's wishes awaiting approval
func (r *GormWishRepository) ListPendingByGroup(groupID uint64) ([]models.Wish, error) {
	var wishes []models.Wish
	if err := r.db.Preload("Approvals").
		Where("group_id = ? AND status = ?", groupID, models.WishStatusPendingApproval).
		Order("created_at DESC").
		Find(&wishes).Error; err != nil {
		return nil, err
	}
	return wishes, nil
}

// FindApproval finds a specific approval vote
func (r *GormWishRepository) FindApproval(wishID, userID uint64) (*models.WishApproval, error) {
	var approval models.WishApproval
	if err := r.db.Where("wish_id = ? AND user_id = ?", wishID, userID).
		First(&approval).Error; err != nil {
		return nil, err
	}
	return &approval, nil
}

// ListApprovals lists a wish's approval votes in voting order
func (r *GormWishRepository) ListApprovals(wishID uint64) ([]models.WishApproval, error) {
	var approvals []models.WishApproval
	if err := r.db.Where("wish_id = ?", wishID).
		Order("created_at ASC").
		Find(&approvals).Error; err != nil {
		return nil, err
	}
	return approvals, nil
}

// Approve records an approval vote and activates the wish once the
// quorum is reached, all in one transaction. A failed activation rolls
// the vote back as well.
func (r *GormWishRepository) Approve(wishID, userID uint64, suggestedCost, quorum int, approvedAt time.Time) (bool, error) {
	var activated bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.WishApproval
		err := tx.Where("wish_id = ? AND user_id = ?", wishID, userID).First(&existing).Error
		if err == nil {
			return ErrDuplicateApproval
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		approval := &models.WishApproval{
			WishID:        wishID,
			UserID:        userID,
			SuggestedCost: suggestedCost,
		}
		if err := tx.Create(approval).Error; err != nil {
			// A racing vote by the same user can slip past the
			// existence check; the composite primary key catches it.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateApproval
			}
			return err
		}

		var approvals []models.WishApproval
		if err := tx.Where("wish_id = ?", wishID).Find(&approvals).Error; err != nil {
			return err
		}

		if len(approvals) < quorum {
			return nil
		}

		total := 0
		for _, a := range approvals {
			total += a.SuggestedCost
		}
		cost := int(math.Round(float64(total) / float64(len(approvals))))

		res := tx.Model(&models.Wish{}).
			Where("id = ? AND status = ?", wishID, models.WishStatusPendingApproval).
			Updates(map[string]interface{}{
				"status":      models.WishStatusActive,
				"cost":        cost,
				"approved_at": approvedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}

		activated = true
		return nil
	})

	return activated, err
}

// Complete debits the creator's points and marks the wish completed in
// a single transaction. The debit is conditional on the balance
// covering the cost.
func (r *GormWishRepository) Complete(wishID, creatorID uint64, cost int, completedAt time.Time) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).
			Where("id = ? AND points >= ?", creatorID, cost).
			Update("points", gorm.Expr("points - ?", cost))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientPoints
		}

		res = tx.Model(&models.Wish{}).
			Where("id = ? AND status = ?", wishID, models.WishStatusActive).
			Updates(map[string]interface{}{
				"status":       models.WishStatusCompleted,
				"completed_at": completedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}

		return nil
	})
}

// CountCompletedByCreator counts the wishes a user has redeemed
func (r *GormWishRepository) CountCompletedByCreator(userID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Wish{}).
		Where("created_by = ? AND status = ?", userID, models.WishStatusCompleted).
		Count(&count).Error
	return count, err
}

// UpdateStatus performs a conditional status update
func (r *GormWishRepository) UpdateStatus(wishID uint64, from, to models.WishStatus) error {
	res := r.db.Model(&models.Wish{}).
		Where("id = ? AND status = ?", wishID, from).
		Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStatusConflict
	}
	return nil
}
