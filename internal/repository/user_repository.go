package repository

import (
	"errors"
	"time"

	"github.com/lvtodo/lvtodo-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Update updates a user's profile fields
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// ListAchievements lists the achievements a user has earned
func (r *GormUserRepository) ListAchievements(userID uint64) ([]models.UserAchievement, error) {
	var achievements []models.UserAchievement
	if err := r.db.Where("user_id = ?", userID).
		Order("earned_at ASC").
		Find(&achievements).Error; err != nil {
		return nil, err
	}
	return achievements, nil
}

// AwardAchievement records an achievement and credits its reward in
// one transaction. The composite primary key keeps the credit one-time.
func (r *GormUserRepository) AwardAchievement(userID uint64, achievementID string, points, xp int, earnedAt time.Time) (bool, error) {
	var awarded bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.UserAchievement
		err := tx.Where("user_id = ? AND achievement_id = ?", userID, achievementID).
			First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		record := &models.UserAchievement{
			UserID:        userID,
			AchievementID: achievementID,
			EarnedAt:      earnedAt,
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		if points != 0 || xp != 0 {
			res := tx.Model(&models.User{}).
				Where("id = ?", userID).
				Updates(map[string]interface{}{
					"points": gorm.Expr("points + ?", points),
					"xp":     gorm.Expr("xp + ?", xp),
				})
			if res.Error != nil {
				return res.Error
			}
		}

		awarded = true
		return nil
	})

	return awarded, err
}
