package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/lvtodo/lvtodo-api/internal/database"
	apierrors "github.com/lvtodo/lvtodo-api/internal/errors"
	"github.com/lvtodo/lvtodo-api/internal/models"
)

// RequireGroupMember checks that the current user belongs to the group
// in the URL. The group and the caller's membership are stored in the
// context for handlers.
func RequireGroupMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		groupID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid group ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var group models.Group
		if err := database.GetDB().First(&group, groupID).Error; err != nil {
			apierrors.NotFound(c, "Group not found")
			c.Abort()
			return
		}

		var member models.GroupMember
		err = database.GetDB().
			Where("group_id = ? AND user_id = ?", groupID, userID).
			First(&member).Error
		if err != nil {
			// 404 instead of 403 to avoid leaking group existence
			apierrors.NotFound(c, "Group not found")
			c.Abort()
			return
		}

		c.Set("group", group)
		c.Set("membership", member)
		c.Next()
	}
}

// RequireGroupOwner checks that the current user owns the group. Must
// run after RequireGroupMember.
func RequireGroupOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		membership, exists := GetMembership(c)
		if !exists {
			apierrors.InternalError(c, "Membership not found in context")
			c.Abort()
			return
		}

		if membership.Role != models.RoleOwner {
			apierrors.Forbidden(c, "Only the group owner can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetGroup retrieves the group loaded by RequireGroupMember
func GetGroup(c *gin.Context) (models.Group, bool) {
	value, exists := c.Get("group")
	if !exists {
		return models.Group{}, false
	}
	group, ok := value.(models.Group)
	return group, ok
}

// GetMembership retrieves the membership loaded by RequireGroupMember
func GetMembership(c *gin.Context) (models.GroupMember, bool) {
	value, exists := c.Get("membership")
	if !exists {
		return models.GroupMember{}, false
	}
	member, ok := value.(models.GroupMember)
	return member, ok
}
