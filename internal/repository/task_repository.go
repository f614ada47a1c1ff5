package repository

import (
	"fmt"

	"github.com/lvtodo/lvtodo-api/internal/database"
	"github.com/lvtodo/lvtodo-api/internal/models"
	"github.com/lvtodo/lvtodo-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Reminder flag columns; MarkNotified only accepts these.
const (
	ColumnNotified80 = "notified_80"
	ColumnNotified50 = "notified_50"
	ColumnNotified30 = "notified_30"
	ColumnNotified5  = "notified_5"
)

var reminderColumns = map[string]bool{
	ColumnNotified80: true,
	ColumnNotified50: true,
	ColumnNotified30: true,
	ColumnNotified5:  true,
}

// Create creates a task together with its initial history record
func (r *GormTaskRepository) Create(task *models.Task, history *models.TaskHistory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(task).Error; err != nil {
			return err
		}

		if history != nil {
			history.TaskID = task.ID
			if err := tx.Create(history).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	if len(filter.GroupIDs) == 0 {
		return []models.Task{}, 0, nil
	}

	query := r.db.Model(&models.Task{}).Where("group_id IN ?", filter.GroupIDs)

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.AssignedTo != nil {
		query = query.Where("assigned_to = ?", *filter.AssignedTo)
	}
	if filter.AssignedBy != nil {
		query = query.Where("assigned_by = ?", *filter.AssignedBy)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("deadline ASC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Preload("Assignee").Preload("Assigner").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ListActive returns all tasks with status pending or in_progress
func (r *GormTaskRepository) ListActive() ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("status IN ?", models.ActiveTaskStatuses).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// Transition performs a conditional status update plus an optional
// history append in one transaction
func (r *GormTaskRepository) Transition(taskID uint64, from []models.TaskStatus, updates map[string]interface{}, history *models.TaskHistory) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Task{}).
			Where("id = ? AND status IN ?", taskID, from).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}

		if history != nil {
			if err := tx.Create(history).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// SettleConfirmation confirms a task and credits the assignee in a
// single transaction. The status update is keyed on the exact prior
// status, so retries and concurrent confirms settle at most once.
func (r *GormTaskRepository) SettleConfirmation(input ConfirmationInput) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Task{}).
			Where("id = ? AND status = ?", input.TaskID, input.PriorStatus).
			Updates(map[string]interface{}{
				"status":       models.TaskStatusConfirmed,
				"confirmed_at": input.ConfirmedAt,
				"confirmed_by": input.ConfirmedBy,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}

		// Relative increments, never read-modify-write.
		res = tx.Model(&models.User{}).
			Where("id = ?", input.AssigneeID).
			Updates(map[string]interface{}{
				"points": gorm.Expr("points + ?", input.Points),
				"xp":     gorm.Expr("xp + ?", input.XP),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if input.History != nil {
			if err := tx.Create(input.History).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// MarkNotified sets a reminder flag if it is still unset
func (r *GormTaskRepository) MarkNotified(taskID uint64, column string) (bool, error) {
	if !reminderColumns[column] {
		return false, fmt.Errorf("unknown reminder column %q", column)
	}

	res := r.db.Model(&models.Task{}).
		Where("id = ? AND "+column+" = ?", taskID, false).
		Update(column, true)
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

// MarkOverdue transitions a still-active task to late
func (r *GormTaskRepository) MarkOverdue(taskID uint64, history *models.TaskHistory) (bool, error) {
	var marked bool

	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Task{}).
			Where("id = ? AND status IN ?", taskID, models.ActiveTaskStatuses).
			Update("status", models.TaskStatusLate)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already moved on; nothing to do.
			return nil
		}

		marked = true
		if history != nil {
			if err := tx.Create(history).Error; err != nil {
				return err
			}
		}

		return nil
	})

	return marked, err
}
