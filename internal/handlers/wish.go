package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lvtodo/lvtodo-api/internal/dto"
	apierrors "github.com/lvtodo/lvtodo-api/internal/errors"
	"github.com/lvtodo/lvtodo-api/internal/middleware"
	"github.com/lvtodo/lvtodo-api/internal/models"
	"github.com/lvtodo/lvtodo-api/internal/services"
)

type WishHandler struct {
	wishService *services.WishService
}

func NewWishHandler(wishService *services.WishService) *WishHandler {
	return &WishHandler{wishService: wishService}
}

// ListWishes returns a group's wishes, newest first. With
// ?awaiting_my_vote=true only pending wishes the caller can still vote
// on are returned.
func (h *WishHandler) ListWishes(c *gin.Context) {
	group, ok := middleware.GetGroup(c)
	if !ok {
		apierrors.InternalError(c, "Group not found in context")
		return
	}

	userID, _ := middleware.GetUserID(c)

	var (
		wishes []models.Wish
		err    error
	)
	if c.Query("awaiting_my_vote") == "true" {
		wishes, err = h.wishService.ListWishesAwaitingVote(group.ID, userID)
	} else {
		wishes, err = h.wishService.ListWishes(group.ID, userID)
	}
	if err != nil {
		respondWishError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"wishes": dto.ToWishDTOs(wishes)})
}

// GetWish returns a wish with its approval votes
func (h *WishHandler) GetWish(c *gin.Context) {
	wishID, userID, ok := wishParams(c)
	if !ok {
		return
	}

	wish, err := h.wishService.GetWish(wishID, userID)
	if err != nil {
		respondWishError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWishDTO(*wish))
}

// ProposeWish creates a wish awaiting group approval
func (h *WishHandler) ProposeWish(c *gin.Context) {
	group, ok := middleware.GetGroup(c)
	if !ok {
		apierrors.InternalError(c, "Group not found in context")
		return
	}

	userID, _ := middleware.GetUserID(c)

	type ProposeWishRequest struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
	}

	var req ProposeWishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	wish, err := h.wishService.ProposeWish(services.ProposeWishInput{
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   userID,
		GroupID:     group.ID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTitleRequired):
			apierrors.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrWishesDisabled):
			apierrors.Forbidden(c, err.Error())
		default:
			respondWishError(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToWishDTO(*wish))
}

// ApproveWish records an approval vote with a suggested cost
func (h *WishHandler) ApproveWish(c *gin.Context) {
	wishID, userID, ok := wishParams(c)
	if !ok {
		return
	}

	type ApproveWishRequest struct {
		SuggestedCost int `json:"suggested_cost" binding:"required"`
	}

	var req ApproveWishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	wish, activated, err := h.wishService.ApproveWish(wishID, userID, req.SuggestedCost)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCost):
			apierrors.BadRequest(c, err.Error())
		case errors.Is(err, services.ErrSelfApproval):
			apierrors.Forbidden(c, err.Error())
		case errors.Is(err, services.ErrDuplicateVote):
			apierrors.DuplicateVote(c, "")
		case errors.Is(err, services.ErrWishNotPending):
			apierrors.InvalidTransition(c, "Wish is not awaiting approval")
		default:
			respondWishError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"wish":      dto.ToWishDTO(*wish),
		"activated": activated,
	})
}

// CompleteWish redeems an active wish against the creator's points
func (h *WishHandler) CompleteWish(c *gin.Context) {
	wishID, userID, ok := wishParams(c)
	if !ok {
		return
	}

	wish, err := h.wishService.CompleteWish(wishID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInsufficientPoints):
			apierrors.InsufficientFunds(c, "")
		case errors.Is(err, services.ErrWishNotActive):
			apierrors.InvalidTransition(c, "Wish is not active")
		default:
			respondWishError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToWishDTO(*wish))
}

// CancelWish cancels a pending or active wish
func (h *WishHandler) CancelWish(c *gin.Context) {
	wishID, userID, ok := wishParams(c)
	if !ok {
		return
	}

	wish, err := h.wishService.CancelWish(wishID, userID)
	if err != nil {
		if errors.Is(err, services.ErrWishNotCancellable) {
			apierrors.InvalidTransition(c, err.Error())
			return
		}
		respondWishError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWishDTO(*wish))
}

// wishParams extracts the wish ID from the URL and the user ID from
// the session.
func wishParams(c *gin.Context) (wishID, userID uint64, ok bool) {
	wishID, err := strconv.ParseUint(c.Param("wish_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid wish ID")
		return 0, 0, false
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return 0, 0, false
	}

	return wishID, userID, true
}

func respondWishError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrWishNotFound):
		apierrors.NotFound(c, "Wish not found")
	case errors.Is(err, services.ErrNotGroupMember):
		apierrors.Forbidden(c, "You are not a member of this group")
	case errors.Is(err, services.ErrNotWishCreator):
		apierrors.Forbidden(c, "Only the wish creator can perform this action")
	default:
		apierrors.InternalError(c, "Failed to process wish operation")
	}
}
