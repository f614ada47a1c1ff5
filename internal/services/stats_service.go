package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/lvtodo/lvtodo-api/internal/game"
	"github.com/lvtodo/lvtodo-api/internal/models"
	"github.com/lvtodo/lvtodo-api/internal/repository"
	"gorm.io/gorm"
)

var ErrStatsUserNotFound = errors.New("user not found")

// UserStats is an aggregate view over a user's task history.
type UserStats struct {
	TasksCompleted  int     `json:"tasks_completed"`
	TasksLate       int     `json:"tasks_late"`
	PointsEarned    int     `json:"points_earned"`
	XPEarned        int     `json:"xp_earned"`
	CurrentStreak   int     `json:"current_streak"`
	LongestStreak   int     `json:"longest_streak"`
	CompletionRate  float64 `json:"completion_rate"`
	WishesPurchased int     `json:"wishes_purchased"`
	Level           int     `json:"level"`
	LevelProgress   float64 `json:"level_progress"`
}

// StatsService derives user statistics from the append-only task
// history, so they survive task and group deletion.
type StatsService struct {
	userRepo    repository.UserRepository
	historyRepo repository.HistoryRepository
	wishRepo    repository.WishRepository

	now func() time.Time
}

// NewStatsService creates a new StatsService
func NewStatsService(
	userRepo repository.UserRepository,
	historyRepo repository.HistoryRepository,
	wishRepo repository.WishRepository,
) *StatsService {
	return &StatsService{
		userRepo:    userRepo,
		historyRepo: historyRepo,
		wishRepo:    wishRepo,
		now:         time.Now,
	}
}

// GetUserStats computes a user's statistics
func (s *StatsService) GetUserStats(userID uint64) (*UserStats, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStatsUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	records, err := s.historyRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}

	wishes, err := s.wishRepo.CountCompletedByCreator(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count wishes: %w", err)
	}

	stats := &UserStats{
		WishesPurchased: int(wishes),
		Level:           game.Level(user.XP),
		LevelProgress:   game.LevelProgress(user.XP),
	}

	var assigned int
	var confirmedDays []time.Time
	for _, rec := range records {
		switch rec.Action {
		case models.HistoryActionCreated:
			assigned++
		case models.HistoryActionLate:
			stats.TasksLate++
		case models.HistoryActionConfirmed:
			stats.TasksCompleted++
			stats.PointsEarned += rec.Points
			stats.XPEarned += rec.XP
			confirmedDays = append(confirmedDays, rec.CreatedAt)
		}
	}

	if assigned > 0 {
		stats.CompletionRate = float64(stats.TasksCompleted) / float64(assigned)
		if stats.CompletionRate > 1 {
			stats.CompletionRate = 1
		}
	}

	stats.CurrentStreak, stats.LongestStreak = streaks(confirmedDays, s.now())

	return stats, nil
}

// streaks computes the current and longest run of consecutive days
// with at least one confirmed task. Timestamps must be in ascending
// order. The current streak counts runs ending today or yesterday.
func streaks(timestamps []time.Time, now time.Time) (current, longest int) {
	if len(timestamps) == 0 {
		return 0, 0
	}

	days := make([]time.Time, 0, len(timestamps))
	for _, ts := range timestamps {
		day := dateOf(ts)
		if len(days) == 0 || !days[len(days)-1].Equal(day) {
			days = append(days, day)
		}
	}

	run := 1
	longest = 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	today := dateOf(now)
	last := days[len(days)-1]
	if last.Equal(today) || today.Sub(last) == 24*time.Hour {
		current = run
	}

	return current, longest
}

func dateOf(ts time.Time) time.Time {
	t := ts.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
