package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/lvtodo/lvtodo-api/internal/constants"
	"github.com/lvtodo/lvtodo-api/internal/models"
	"github.com/lvtodo/lvtodo-api/internal/notifications"
	"github.com/lvtodo/lvtodo-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrWishNotFound       = errors.New("wish not found")
	ErrWishesDisabled     = errors.New("the group does not allow wishes")
	ErrNotWishCreator     = errors.New("only the wish creator can perform this action")
	ErrSelfApproval       = errors.New("the wish creator cannot vote on their own wish")
	ErrDuplicateVote      = errors.New("user has already voted on this wish")
	ErrWishNotPending     = errors.New("wish is not awaiting approval")
	ErrWishNotActive      = errors.New("wish is not active")
	ErrWishNotCancellable = errors.New("wish can no longer be cancelled")
	ErrInvalidCost        = errors.New("suggested cost must be positive")
	ErrInsufficientPoints = errors.New("not enough points to redeem the wish")
)

// WishService drives the wish lifecycle: proposed wishes collect
// approval votes with suggested costs, activate at the quorum with the
// rounded mean cost, and are redeemed by their creator against the
// creator's point balance.
type WishService struct {
	wishRepo  repository.WishRepository
	groupRepo repository.GroupRepository
	userRepo  repository.UserRepository
	notifier  notifications.Notifier

	achievements *AchievementService

	now func() time.Time
}

// NewWishService creates a new WishService. The achievement service is
// optional.
func NewWishService(
	wishRepo repository.WishRepository,
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	notifier notifications.Notifier,
	achievements *AchievementService,
) *WishService {
	return &WishService{
		wishRepo:     wishRepo,
		groupRepo:    groupRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		achievements: achievements,
		now:          time.Now,
	}
}

// ProposeWishInput represents input for proposing a wish
type ProposeWishInput struct {
	Title       string
	Description string
	CreatedBy   uint64
	GroupID     uint64
}

// ListWishes returns a group's wishes, newest first
func (s *WishService) ListWishes(groupID, userID uint64) ([]models.Wish, error) {
	if err := s.ensureMember(groupID, userID); err != nil {
		return nil, err
	}

	wishes, err := s.wishRepo.ListByGroup(groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishes: %w", err)
	}

	return wishes, nil
}

// ListWishesAwaitingVote returns the group's pending wishes the user
// can still vote on: not their own, and not already voted on.
func (s *WishService) ListWishesAwaitingVote(groupID, userID uint64) ([]models.Wish, error) {
	if err := s.ensureMember(groupID, userID); err != nil {
		return nil, err
	}

	pending, err := s.wishRepo.ListPendingByGroup(groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending wishes: %w", err)
	}

	votable := make([]models.Wish, 0, len(pending))
	for _, wish := range pending {
		if wish.CreatedBy == userID {
			continue
		}
		voted := false
		for _, approval := range wish.Approvals {
			if approval.UserID == userID {
				voted = true
				break
			}
		}
		if !voted {
			votable = append(votable, wish)
		}
	}

	return votable, nil
}

// GetWish returns a wish with its approval votes
func (s *WishService) GetWish(wishID, userID uint64) (*models.Wish, error) {
	wish, err := s.findWish(wishID, "Creator", "Approvals")
	if err != nil {
		return nil, err
	}

	if err := s.ensureMember(wish.GroupID, userID); err != nil {
		return nil, err
	}

	return wish, nil
}

// ProposeWish creates a wish in pending_approval with no cost yet.
// The cost is negotiated through the approval votes.
func (s *WishService) ProposeWish(input ProposeWishInput) (*models.Wish, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	if err := s.ensureMember(input.GroupID, input.CreatedBy); err != nil {
		return nil, err
	}

	group, err := s.groupRepo.FindByID(input.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to find group: %w", err)
	}
	if !group.AllowWishes {
		return nil, ErrWishesDisabled
	}

	wish := &models.Wish{
		Title:       input.Title,
		Description: input.Description,
		CreatedBy:   input.CreatedBy,
		GroupID:     input.GroupID,
		Status:      models.WishStatusPendingApproval,
	}

	if err := s.wishRepo.Create(wish); err != nil {
		return nil, fmt.Errorf("failed to create wish: %w", err)
	}

	return wish, nil
}

// ApproveWish records an approval vote with a suggested cost. Once the
// quorum is reached the wish activates with the rounded mean of all
// suggested costs. Reports whether this vote activated the wish.
func (s *WishService) ApproveWish(wishID, actorID uint64, suggestedCost int) (*models.Wish, bool, error) {
	if suggestedCost <= 0 {
		return nil, false, ErrInvalidCost
	}

	wish, err := s.findWish(wishID)
	if err != nil {
		return nil, false, err
	}

	if err := s.ensureMember(wish.GroupID, actorID); err != nil {
		return nil, false, err
	}
	if wish.CreatedBy == actorID {
		return nil, false, ErrSelfApproval
	}
	if wish.Status != models.WishStatusPendingApproval {
		return nil, false, ErrWishNotPending
	}

	activated, err := s.wishRepo.Approve(wishID, actorID, suggestedCost,
		constants.WishApprovalQuorum, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateApproval):
			return nil, false, ErrDuplicateVote
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, false, ErrWishNotPending
		default:
			return nil, false, fmt.Errorf("failed to record approval: %w", err)
		}
	}

	updated, err := s.findWish(wishID, "Approvals")
	if err != nil {
		return nil, false, err
	}

	if activated {
		s.notify(updated.CreatedBy, notifications.WishActivatedMessage(updated))
	}

	return updated, activated, nil
}

// CompleteWish redeems an active wish, debiting its cost from the
// creator's balance. The debit and the status change happen in one
// transaction, and the balance can never go negative.
func (s *WishService) CompleteWish(wishID, actorID uint64) (*models.Wish, error) {
	wish, err := s.findWish(wishID)
	if err != nil {
		return nil, err
	}

	if wish.CreatedBy != actorID {
		return nil, ErrNotWishCreator
	}
	if wish.Status != models.WishStatusActive {
		return nil, ErrWishNotActive
	}

	err = s.wishRepo.Complete(wishID, wish.CreatedBy, wish.Cost, s.now())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientPoints):
			return nil, ErrInsufficientPoints
		case errors.Is(err, repository.ErrStatusConflict):
			return nil, ErrWishNotActive
		default:
			return nil, fmt.Errorf("failed to complete wish: %w", err)
		}
	}

	if s.achievements != nil {
		if _, err := s.achievements.Evaluate(wish.CreatedBy); err != nil {
			log.Printf("achievement evaluation failed for user %d: %v", wish.CreatedBy, err)
		}
	}

	updated, err := s.findWish(wishID)
	if err != nil {
		return nil, err
	}

	s.notify(updated.CreatedBy, notifications.WishCompletedMessage(updated))

	return updated, nil
}

// CancelWish cancels a pending or active wish. Only the creator may
// cancel; votes already cast are kept for the audit trail but have no
// further effect.
func (s *WishService) CancelWish(wishID, actorID uint64) (*models.Wish, error) {
	wish, err := s.findWish(wishID)
	if err != nil {
		return nil, err
	}

	if wish.CreatedBy != actorID {
		return nil, ErrNotWishCreator
	}
	if wish.Status != models.WishStatusPendingApproval && wish.Status != models.WishStatusActive {
		return nil, ErrWishNotCancellable
	}

	err = s.wishRepo.UpdateStatus(wishID, wish.Status, models.WishStatusCancelled)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrWishNotCancellable
		}
		return nil, fmt.Errorf("failed to cancel wish: %w", err)
	}

	return s.findWish(wishID)
}

func (s *WishService) findWish(wishID uint64, preload ...string) (*models.Wish, error) {
	wish, err := s.wishRepo.FindByID(wishID, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWishNotFound
		}
		return nil, fmt.Errorf("failed to find wish: %w", err)
	}
	return wish, nil
}

func (s *WishService) ensureMember(groupID, userID uint64) error {
	_, err := s.groupRepo.FindMember(groupID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotGroupMember
		}
		return fmt.Errorf("failed to verify group membership: %w", err)
	}
	return nil
}

func (s *WishService) notify(userID uint64, msg notifications.Message) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(context.Background(), notifications.UserTopic(userID), msg.Title, msg.Body); err != nil {
		log.Printf("failed to send notification to user %d: %v", userID, err)
	}
}
