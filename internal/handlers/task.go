package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lvtodo/lvtodo-api/internal/dto"
	apierrors "github.com/lvtodo/lvtodo-api/internal/errors"
	"github.com/lvtodo/lvtodo-api/internal/middleware"
	"github.com/lvtodo/lvtodo-api/internal/models"
	"github.com/lvtodo/lvtodo-api/internal/services"
	"github.com/lvtodo/lvtodo-api/internal/utils"
)

type TaskHandler struct {
	taskService    *services.TaskService
	historyService *services.HistoryService
}

func NewTaskHandler(taskService *services.TaskService, historyService *services.HistoryService) *TaskHandler {
	return &TaskHandler{
		taskService:    taskService,
		historyService: historyService,
	}
}

// ListTasks returns all tasks accessible by the current user.
// Can filter by group_id, status, assigned_to_me, assigned_by_me.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	input := services.ListTasksInput{
		UserID:       userID,
		AssignedToMe: c.Query("assigned_to_me") == "true",
		AssignedByMe: c.Query("assigned_by_me") == "true",
	}

	if groupIDStr := c.Query("group_id"); groupIDStr != "" {
		groupID, err := strconv.ParseUint(groupIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid group_id")
			return
		}
		input.GroupID = &groupID
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.TaskStatus(statusStr)
		input.Status = &status
	}

	params := utils.GetPaginationParams(c)
	input.Page = params.Page
	input.PageSize = params.Limit

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		if errors.Is(err, services.ErrNotGroupMember) {
			apierrors.Forbidden(c, "You are not a member of this group")
			return
		}
		apierrors.InternalError(c, "Failed to fetch tasks")
		return
	}

	c.JSON(http.StatusOK, dto.TaskListResponse{
		Tasks:      dto.ToTaskDTOs(tasks),
		Page:       params.Page,
		PageSize:   params.Limit,
		TotalCount: total,
	})
}

// GetTask returns a specific task by ID.
// Task is already loaded with relations by RequireTaskAccess middleware.
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// CreateTask creates a new task assigned to a group member
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title       string    `json:"title" binding:"required"`
		Description string    `json:"description"`
		Difficulty  string    `json:"difficulty" binding:"required"`
		AssignedTo  uint64    `json:"assigned_to" binding:"required"`
		GroupID     uint64    `json:"group_id" binding:"required"`
		Deadline    time.Time `json:"deadline" binding:"required"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  models.TaskDifficulty(req.Difficulty),
		AssignedTo:  req.AssignedTo,
		AssignedBy:  userID,
		GroupID:     req.GroupID,
		Deadline:    req.Deadline,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTitleRequired),
			errors.Is(err, services.ErrInvalidDifficulty),
			errors.Is(err, services.ErrDeadlineNotFuture):
			apierrors.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrNotGroupMember):
			apierrors.Forbidden(c, "Both users must be members of the group")
		default:
			apierrors.InternalError(c, "Failed to create task")
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// StartTask moves a pending task to in_progress
func (h *TaskHandler) StartTask(c *gin.Context) {
	h.transition(c, h.taskService.StartTask)
}

// CompleteTask marks an in_progress task as done
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	h.transition(c, h.taskService.CompleteTask)
}

// DisputeTask sends a completed task back to pending
func (h *TaskHandler) DisputeTask(c *gin.Context) {
	h.transition(c, h.taskService.DisputeTask)
}

// ConfirmTask confirms a completed task and settles the reward
func (h *TaskHandler) ConfirmTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	updated, reward, err := h.taskService.ConfirmTask(task.ID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"task":   dto.ToTaskDTO(*updated),
		"reward": reward,
	})
}

// GetTaskHistory returns the audit trail of a task
func (h *TaskHandler) GetTaskHistory(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	records, err := h.historyService.ListByTask(task.ID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch task history")
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": dto.ToHistoryDTOs(records)})
}

// transition runs a single-actor lifecycle operation loaded through
// RequireTaskAccess.
func (h *TaskHandler) transition(c *gin.Context, op func(taskID, actorID uint64) (*models.Task, error)) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	updated, err := op(task.ID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrNotTaskAssignee),
		errors.Is(err, services.ErrNotTaskAssigner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		apierrors.InvalidTransition(c, "")
	default:
		apierrors.InternalError(c, "Failed to update task")
	}
}
