package dto

import (
	"time"

	"github.com/lvtodo/lvtodo-api/internal/models"
)

// GroupDTO represents a group in API responses. The invite code is
// only included where the caller is allowed to see it.
type GroupDTO struct {
	ID                      uint64 `json:"id"`
	Name                    string `json:"name"`
	Description             string `json:"description"`
	InviteCode              string `json:"invite_code,omitempty"`
	CreatedBy               uint64 `json:"created_by"`
	AllowWishes             bool   `json:"allow_wishes"`
	RequireTaskConfirmation bool   `json:"require_task_confirmation"`
}

// GroupMemberDTO represents a member in a group
type GroupMemberDTO struct {
	User     UserDTO          `json:"user"`
	Role     models.GroupRole `json:"role"`
	JoinedAt time.Time        `json:"joined_at"`
}

// GroupDetailDTO represents detailed group information
type GroupDetailDTO struct {
	GroupDTO
	Members  []GroupMemberDTO `json:"members"`
	YourRole models.GroupRole `json:"your_role"`
}

// ToGroupDTO converts a group to DTO
func ToGroupDTO(group models.Group, includeInviteCode bool) GroupDTO {
	out := GroupDTO{
		ID:                      group.ID,
		Name:                    group.Name,
		Description:             group.Description,
		CreatedBy:               group.CreatedBy,
		AllowWishes:             group.AllowWishes,
		RequireTaskConfirmation: group.RequireTaskConfirmation,
	}
	if includeInviteCode {
		out.InviteCode = group.InviteCode
	}
	return out
}

// ToGroupMemberDTO converts a member to DTO
func ToGroupMemberDTO(member models.GroupMember) GroupMemberDTO {
	return GroupMemberDTO{
		User:     ToUserDTO(member.User),
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}

// ToGroupDetailDTO converts a group with its members to a detailed DTO
func ToGroupDetailDTO(group models.Group, members []models.GroupMember, yourRole models.GroupRole) GroupDetailDTO {
	memberDTOs := make([]GroupMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToGroupMemberDTO(member)
	}

	return GroupDetailDTO{
		GroupDTO: ToGroupDTO(group, true),
		Members:  memberDTOs,
		YourRole: yourRole,
	}
}
