package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lvtodo/lvtodo-api/internal/dto"
	apierrors "github.com/lvtodo/lvtodo-api/internal/errors"
	"github.com/lvtodo/lvtodo-api/internal/middleware"
	"github.com/lvtodo/lvtodo-api/internal/services"
)

type GroupHandler struct {
	groupService *services.GroupService
}

func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// ListGroups returns the groups the current user belongs to
func (h *GroupHandler) ListGroups(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	groups, err := h.groupService.ListGroups(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch groups")
		return
	}

	out := make([]dto.GroupDTO, len(groups))
	for i, group := range groups {
		out[i] = dto.ToGroupDTO(group, true)
	}

	c.JSON(http.StatusOK, gin.H{"groups": out})
}

// CreateGroup creates a new group owned by the current user
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateGroupRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
	}

	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	group, err := h.groupService.CreateGroup(services.CreateGroupInput{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   userID,
	})
	if err != nil {
		if errors.Is(err, services.ErrGroupNameRequired) {
			apierrors.BadRequest(c, err.Error())
			return
		}
		apierrors.InternalError(c, "Failed to create group")
		return
	}

	c.JSON(http.StatusCreated, dto.ToGroupDTO(*group, true))
}

// GetGroup returns detailed group information including members
func (h *GroupHandler) GetGroup(c *gin.Context) {
	group, ok := middleware.GetGroup(c)
	if !ok {
		apierrors.InternalError(c, "Group not found in context")
		return
	}

	userID, _ := middleware.GetUserID(c)

	detail, members, err := h.groupService.GetGroup(group.ID, userID)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	membership, _ := middleware.GetMembership(c)

	c.JSON(http.StatusOK, dto.ToGroupDetailDTO(*detail, members, membership.Role))
}

// JoinGroup adds the current user to a group by invite code
func (h *GroupHandler) JoinGroup(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type JoinGroupRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	var req JoinGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	group, err := h.groupService.JoinGroup(req.InviteCode, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInviteCode):
			apierrors.NotFound(c, "Invalid invite code")
		case errors.Is(err, services.ErrAlreadyMember):
			apierrors.AlreadyMember(c, "")
		default:
			apierrors.InternalError(c, "Failed to join group")
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupDTO(*group, false))
}

// LeaveGroup removes the current user from the group
func (h *GroupHandler) LeaveGroup(c *gin.Context) {
	group, ok := middleware.GetGroup(c)
	if !ok {
		apierrors.InternalError(c, "Group not found in context")
		return
	}

	userID, _ := middleware.GetUserID(c)

	if err := h.groupService.LeaveGroup(group.ID, userID); err != nil {
		if errors.Is(err, services.ErrOwnerCannotLeave) {
			apierrors.Forbidden(c, err.Error())
			return
		}
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left the group"})
}

// DeleteGroup deletes the group with its tasks and wishes. Earned
// points and history survive.
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	group, ok := middleware.GetGroup(c)
	if !ok {
		apierrors.InternalError(c, "Group not found in context")
		return
	}

	userID, _ := middleware.GetUserID(c)

	if err := h.groupService.DeleteGroup(group.ID, userID); err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted successfully"})
}

// UpdateGroup updates the group's name, description and settings
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	group, ok := middleware.GetGroup(c)
	if !ok {
		apierrors.InternalError(c, "Group not found in context")
		return
	}

	userID, _ := middleware.GetUserID(c)

	type UpdateGroupRequest struct {
		Name                    *string `json:"name"`
		Description             *string `json:"description"`
		AllowWishes             *bool   `json:"allow_wishes"`
		RequireTaskConfirmation *bool   `json:"require_task_confirmation"`
	}

	var req UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.groupService.UpdateGroupSettings(group.ID, userID, services.UpdateGroupSettingsInput{
		Name:                    req.Name,
		Description:             req.Description,
		AllowWishes:             req.AllowWishes,
		RequireTaskConfirmation: req.RequireTaskConfirmation,
	})
	if err != nil {
		if errors.Is(err, services.ErrGroupNameRequired) {
			apierrors.BadRequest(c, err.Error())
			return
		}
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToGroupDTO(*updated, true))
}

// RegenerateInviteCode replaces the group's invite code
func (h *GroupHandler) RegenerateInviteCode(c *gin.Context) {
	group, ok := middleware.GetGroup(c)
	if !ok {
		apierrors.InternalError(c, "Group not found in context")
		return
	}

	userID, _ := middleware.GetUserID(c)

	updated, err := h.groupService.RegenerateInviteCode(group.ID, userID)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invite_code": updated.InviteCode})
}

// ListGroupMembers returns a group's member list
func (h *GroupHandler) ListGroupMembers(c *gin.Context) {
	group, ok := middleware.GetGroup(c)
	if !ok {
		apierrors.InternalError(c, "Group not found in context")
		return
	}

	userID, _ := middleware.GetUserID(c)

	_, members, err := h.groupService.GetGroup(group.ID, userID)
	if err != nil {
		respondGroupError(c, err)
		return
	}

	out := make([]dto.GroupMemberDTO, len(members))
	for i, member := range members {
		out[i] = dto.ToGroupMemberDTO(member)
	}

	c.JSON(http.StatusOK, gin.H{"members": out})
}

func respondGroupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrGroupNotFound):
		apierrors.NotFound(c, "Group not found")
	case errors.Is(err, services.ErrNotGroupMember):
		apierrors.Forbidden(c, "You are not a member of this group")
	case errors.Is(err, services.ErrNotGroupOwner):
		apierrors.Forbidden(c, "Only the group owner can perform this action")
	default:
		apierrors.InternalError(c, "Failed to process group operation")
	}
}
