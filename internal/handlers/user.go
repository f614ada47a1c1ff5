package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lvtodo/lvtodo-api/internal/dto"
	apierrors "github.com/lvtodo/lvtodo-api/internal/errors"
	"github.com/lvtodo/lvtodo-api/internal/middleware"
	"github.com/lvtodo/lvtodo-api/internal/services"
)

type UserHandler struct {
	statsService       *services.StatsService
	achievementService *services.AchievementService
	historyService     *services.HistoryService
}

func NewUserHandler(
	statsService *services.StatsService,
	achievementService *services.AchievementService,
	historyService *services.HistoryService,
) *UserHandler {
	return &UserHandler{
		statsService:       statsService,
		achievementService: achievementService,
		historyService:     historyService,
	}
}

// GetStats returns the current user's aggregated statistics
func (h *UserHandler) GetStats(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	stats, err := h.statsService.GetUserStats(userID)
	if err != nil {
		if errors.Is(err, services.ErrStatsUserNotFound) {
			apierrors.NotFound(c, "User not found")
			return
		}
		apierrors.InternalError(c, "Failed to compute statistics")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ListAchievements returns the current user's earned achievements
func (h *UserHandler) ListAchievements(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	earned, err := h.achievementService.ListEarned(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch achievements")
		return
	}

	type achievementResponse struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		EarnedAt    string `json:"earned_at"`
	}

	out := make([]achievementResponse, len(earned))
	for i, a := range earned {
		out[i] = achievementResponse{
			ID:          a.ID,
			Title:       a.Title,
			Description: a.Description,
			EarnedAt:    a.EarnedAt.UTC().Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, gin.H{"achievements": out})
}

// GetHistory returns the current user's task history
func (h *UserHandler) GetHistory(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	records, err := h.historyService.ListByUser(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch history")
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": dto.ToHistoryDTOs(records)})
}
