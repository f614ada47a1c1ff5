package dto

import (
	"time"

	"github.com/lvtodo/lvtodo-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Difficulty  models.TaskDifficulty `json:"difficulty"`
	Points      int                   `json:"points"`
	XP          int                   `json:"xp"`
	Status      models.TaskStatus     `json:"status"`
	Deadline    time.Time             `json:"deadline"`
	GroupID     uint64                `json:"group_id"`
	AssignedTo  uint64                `json:"assigned_to"`
	AssignedBy  uint64                `json:"assigned_by"`
	CompletedAt *time.Time            `json:"completed_at"`
	ConfirmedAt *time.Time            `json:"confirmed_at"`
	CreatedAt   time.Time             `json:"created_at"`
	Assignee    *UserDTO              `json:"assignee,omitempty"`
	Assigner    *UserDTO              `json:"assigner,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
}

// HistoryDTO represents a task history record in API responses
type HistoryDTO struct {
	ID        uint64               `json:"id"`
	TaskID    uint64               `json:"task_id"`
	UserID    uint64               `json:"user_id"`
	Action    models.HistoryAction `json:"action"`
	Points    int                  `json:"points"`
	XP        int                  `json:"xp"`
	CreatedAt time.Time            `json:"created_at"`
}

// ToTaskDTO converts a task to DTO
func ToTaskDTO(task models.Task) TaskDTO {
	out := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Difficulty:  task.Difficulty,
		Points:      task.Points,
		XP:          task.XP,
		Status:      task.Status,
		Deadline:    task.Deadline,
		GroupID:     task.GroupID,
		AssignedTo:  task.AssignedTo,
		AssignedBy:  task.AssignedBy,
		CompletedAt: task.CompletedAt,
		ConfirmedAt: task.ConfirmedAt,
		CreatedAt:   task.CreatedAt,
	}

	if task.Assignee.ID != 0 {
		assignee := ToUserDTO(task.Assignee)
		out.Assignee = &assignee
	}
	if task.Assigner.ID != 0 {
		assigner := ToUserDTO(task.Assigner)
		out.Assigner = &assigner
	}

	return out
}

// ToTaskDTOs converts a slice of tasks to DTOs
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	out := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		out[i] = ToTaskDTO(task)
	}
	return out
}

// ToHistoryDTO converts a history record to DTO
func ToHistoryDTO(record models.TaskHistory) HistoryDTO {
	return HistoryDTO{
		ID:        record.ID,
		TaskID:    record.TaskID,
		UserID:    record.UserID,
		Action:    record.Action,
		Points:    record.Points,
		XP:        record.XP,
		CreatedAt: record.CreatedAt,
	}
}

// ToHistoryDTOs converts a slice of history records to DTOs
func ToHistoryDTOs(records []models.TaskHistory) []HistoryDTO {
	out := make([]HistoryDTO, len(records))
	for i, record := range records {
		out[i] = ToHistoryDTO(record)
	}
	return out
}
