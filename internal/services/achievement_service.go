package services

import (
	"fmt"
	"time"

	"github.com/lvtodo/lvtodo-api/internal/game"
	"github.com/lvtodo/lvtodo-api/internal/repository"
)

// AchievementService evaluates achievement conditions against a user's
// statistics and awards whatever newly applies. Evaluation is
// best-effort: callers treat a failure as non-fatal.
type AchievementService struct {
	userRepo repository.UserRepository
	stats    *StatsService

	now func() time.Time
}

// NewAchievementService creates a new AchievementService
func NewAchievementService(userRepo repository.UserRepository, stats *StatsService) *AchievementService {
	return &AchievementService{
		userRepo: userRepo,
		stats:    stats,
		now:      time.Now,
	}
}

// Evaluate checks all achievement conditions for a user and returns the
// achievements awarded by this call. Already-held achievements are
// skipped; awarding is idempotent either way.
func (s *AchievementService) Evaluate(userID uint64) ([]game.Achievement, error) {
	userStats, err := s.stats.GetUserStats(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}

	snapshot := game.AchievementStats{
		TasksCompleted:  userStats.TasksCompleted,
		Level:           userStats.Level,
		PointsEarned:    userStats.PointsEarned,
		LongestStreak:   userStats.LongestStreak,
		WishesPurchased: userStats.WishesPurchased,
	}

	var awarded []game.Achievement
	for _, achievement := range game.Achievements {
		if !achievement.Met(snapshot) {
			continue
		}

		ok, err := s.userRepo.AwardAchievement(userID, achievement.ID,
			achievement.RewardPoints, achievement.RewardXP, s.now())
		if err != nil {
			return awarded, fmt.Errorf("failed to award %s: %w", achievement.ID, err)
		}
		if ok {
			awarded = append(awarded, achievement)
		}
	}

	return awarded, nil
}

// ListEarned returns the user's earned achievements joined with their
// static definitions.
func (s *AchievementService) ListEarned(userID uint64) ([]EarnedAchievement, error) {
	records, err := s.userRepo.ListAchievements(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	byID := make(map[string]game.Achievement, len(game.Achievements))
	for _, a := range game.Achievements {
		byID[a.ID] = a
	}

	earned := make([]EarnedAchievement, 0, len(records))
	for _, rec := range records {
		def, ok := byID[rec.AchievementID]
		if !ok {
			continue
		}
		earned = append(earned, EarnedAchievement{
			Achievement: def,
			EarnedAt:    rec.EarnedAt,
		})
	}

	return earned, nil
}

// EarnedAchievement pairs an achievement definition with the time it
// was earned.
type EarnedAchievement struct {
	game.Achievement
	EarnedAt time.Time
}
