package repository

import (
	"github.com/lvtodo/lvtodo-api/internal/models"
	"gorm.io/gorm"
)

// GormHistoryRepository is a GORM implementation of HistoryRepository
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository creates a new HistoryRepository
func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Create appends a history record
func (r *GormHistoryRepository) Create(record *models.TaskHistory) error {
	return r.db.Create(record).Error
}

// ListByUser lists a user's history records, oldest first
func (r *GormHistoryRepository) ListByUser(userID uint64) ([]models.TaskHistory, error) {
	var records []models.TaskHistory
	if err := r.db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListByTask lists a task's history records, oldest first
func (r *GormHistoryRepository) ListByTask(taskID uint64) ([]models.TaskHistory, error) {
	var records []models.TaskHistory
	if err := r.db.Where("task_id = ?", taskID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
