package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lvtodo/lvtodo-api/internal/constants"
	"github.com/lvtodo/lvtodo-api/internal/models"
	"github.com/lvtodo/lvtodo-api/internal/repository"
	"github.com/lvtodo/lvtodo-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrGroupNameRequired  = errors.New("group name is required")
	ErrInvalidInviteCode  = errors.New("invalid invite code")
	ErrAlreadyMember      = errors.New("user is already a member of the group")
	ErrNotGroupOwner      = errors.New("only the group owner can perform this action")
	ErrOwnerCannotLeave   = errors.New("the group owner cannot leave; delete the group instead")
	ErrInviteCodeConflict = errors.New("could not generate a unique invite code")
)

// GroupService manages groups and membership. Joining happens through
// short invite codes rather than explicit invitations.
type GroupService struct {
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository

	now func() time.Time
}

// NewGroupService creates a new GroupService
func NewGroupService(groupRepo repository.GroupRepository, userRepo repository.UserRepository) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
		now:       time.Now,
	}
}

// CreateGroupInput represents input for creating a group
type CreateGroupInput struct {
	Name        string
	Description string
	CreatedBy   uint64
}

// UpdateGroupSettingsInput carries the settings an owner may change.
// Nil fields are left untouched.
type UpdateGroupSettingsInput struct {
	Name                    *string
	Description             *string
	AllowWishes             *bool
	RequireTaskConfirmation *bool
}

// CreateGroup creates a group with a fresh invite code and registers
// the creator as its owner.
func (s *GroupService) CreateGroup(input CreateGroupInput) (*models.Group, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrGroupNameRequired
	}

	group := &models.Group{
		Name:                    input.Name,
		Description:             input.Description,
		CreatedBy:               input.CreatedBy,
		AllowWishes:             true,
		RequireTaskConfirmation: true,
	}

	// The invite code carries a unique index; on a collision we retry
	// with a fresh code a bounded number of times.
	var err error
	for attempt := 0; attempt < constants.InviteCodeMaxAttempts; attempt++ {
		group.InviteCode, err = utils.GenerateInviteCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate invite code: %w", err)
		}

		err = s.groupRepo.Create(group)
		if err == nil {
			break
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to create group: %w", err)
		}
	}
	if err != nil {
		return nil, ErrInviteCodeConflict
	}

	member := &models.GroupMember{
		GroupID:  group.ID,
		UserID:   input.CreatedBy,
		Role:     models.RoleOwner,
		JoinedAt: s.now(),
	}
	if err := s.groupRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add owner membership: %w", err)
	}

	return group, nil
}

// JoinGroup adds the user to the group identified by the invite code.
// Codes are matched case-insensitively.
func (s *GroupService) JoinGroup(inviteCode string, userID uint64) (*models.Group, error) {
	code := strings.ToUpper(strings.TrimSpace(inviteCode))
	if len(code) != constants.InviteCodeLength {
		return nil, ErrInvalidInviteCode
	}

	group, err := s.groupRepo.FindByInviteCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidInviteCode
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}

	_, err = s.groupRepo.FindMember(group.ID, userID)
	if err == nil {
		return nil, ErrAlreadyMember
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	member := &models.GroupMember{
		GroupID:  group.ID,
		UserID:   userID,
		Role:     models.RoleMember,
		JoinedAt: s.now(),
	}
	if err := s.groupRepo.AddMember(member); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyMember
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return group, nil
}

// LeaveGroup removes the user's membership. The owner cannot leave.
func (s *GroupService) LeaveGroup(groupID, userID uint64) error {
	member, err := s.findMember(groupID, userID)
	if err != nil {
		return err
	}

	if member.Role == models.RoleOwner {
		return ErrOwnerCannotLeave
	}

	if err := s.groupRepo.RemoveMember(groupID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// DeleteGroup deletes a group with its tasks, wishes and memberships.
// Task history and the points already earned by members are kept.
func (s *GroupService) DeleteGroup(groupID, actorID uint64) error {
	group, err := s.findGroup(groupID)
	if err != nil {
		return err
	}

	if group.CreatedBy != actorID {
		return ErrNotGroupOwner
	}

	if err := s.groupRepo.Delete(groupID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	return nil
}

// UpdateGroupSettings updates a group's name, description and feature
// toggles. Owner only.
func (s *GroupService) UpdateGroupSettings(groupID, actorID uint64, input UpdateGroupSettingsInput) (*models.Group, error) {
	group, err := s.findGroup(groupID)
	if err != nil {
		return nil, err
	}

	if group.CreatedBy != actorID {
		return nil, ErrNotGroupOwner
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrGroupNameRequired
		}
		group.Name = *input.Name
	}
	if input.Description != nil {
		group.Description = *input.Description
	}
	if input.AllowWishes != nil {
		group.AllowWishes = *input.AllowWishes
	}
	if input.RequireTaskConfirmation != nil {
		group.RequireTaskConfirmation = *input.RequireTaskConfirmation
	}

	if err := s.groupRepo.Update(group); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	return group, nil
}

// RegenerateInviteCode replaces the group's invite code, invalidating
// the old one. Owner only.
func (s *GroupService) RegenerateInviteCode(groupID, actorID uint64) (*models.Group, error) {
	group, err := s.findGroup(groupID)
	if err != nil {
		return nil, err
	}

	if group.CreatedBy != actorID {
		return nil, ErrNotGroupOwner
	}

	for attempt := 0; attempt < constants.InviteCodeMaxAttempts; attempt++ {
		group.InviteCode, err = utils.GenerateInviteCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate invite code: %w", err)
		}

		err = s.groupRepo.Update(group)
		if err == nil {
			return group, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("failed to update group: %w", err)
		}
	}

	return nil, ErrInviteCodeConflict
}

// ListGroups returns the groups the user belongs to
func (s *GroupService) ListGroups(userID uint64) ([]models.Group, error) {
	memberships, err := s.groupRepo.ListMembersByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	groups := make([]models.Group, 0, len(memberships))
	for _, m := range memberships {
		group, err := s.groupRepo.FindByID(m.GroupID)
		if err != nil {
			return nil, fmt.Errorf("failed to load group %d: %w", m.GroupID, err)
		}
		groups = append(groups, *group)
	}

	return groups, nil
}

// GetGroup returns a group with its member list. Members only.
func (s *GroupService) GetGroup(groupID, userID uint64) (*models.Group, []models.GroupMember, error) {
	group, err := s.findGroup(groupID)
	if err != nil {
		return nil, nil, err
	}

	if _, err := s.findMember(groupID, userID); err != nil {
		return nil, nil, err
	}

	members, err := s.groupRepo.ListMembers(groupID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list members: %w", err)
	}

	return group, members, nil
}

func (s *GroupService) findGroup(groupID uint64) (*models.Group, error) {
	group, err := s.groupRepo.FindByID(groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}
	return group, nil
}

func (s *GroupService) findMember(groupID, userID uint64) (*models.GroupMember, error) {
	member, err := s.groupRepo.FindMember(groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotGroupMember
		}
		return nil, fmt.Errorf("failed to verify group membership: %w", err)
	}
	return member, nil
}
