package services

import (
	"testing"
	"time"

	"github.com/lvtodo/lvtodo-api/internal/models"
	"github.com/lvtodo/lvtodo-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestStreaks(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 3, d, 10, 0, 0, 0, time.UTC)
	}
	now := day(10)

	tests := []struct {
		name        string
		confirmed   []time.Time
		wantCurrent int
		wantLongest int
	}{
		{"no history", nil, 0, 0},
		{"single today", []time.Time{day(10)}, 1, 1},
		{"three day run ending today", []time.Time{day(8), day(9), day(10)}, 3, 3},
		{"run ended yesterday still counts", []time.Time{day(8), day(9)}, 2, 2},
		{"broken run", []time.Time{day(5), day(6), day(9), day(10)}, 2, 2},
		{"old long run", []time.Time{day(1), day(2), day(3), day(4), day(10)}, 1, 4},
		{"stale run", []time.Time{day(1), day(2)}, 0, 2},
		{"same day twice", []time.Time{day(10), day(10).Add(2 * time.Hour)}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, longest := streaks(tt.confirmed, now)
			assert.Equal(t, tt.wantCurrent, current)
			assert.Equal(t, tt.wantLongest, longest)
		})
	}
}

// StatsServiceTestSuite defines the test suite for StatsService
type StatsServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *StatsService
	clock   time.Time
}

// SetupTest runs before each test
func (suite *StatsServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Wish{},
		&models.TaskHistory{},
		&models.UserAchievement{},
	)
	suite.Require().NoError(err)

	suite.clock = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	suite.service = NewStatsService(
		repository.NewUserRepository(suite.db),
		repository.NewHistoryRepository(suite.db),
		repository.NewWishRepository(suite.db),
	)
	suite.service.now = func() time.Time { return suite.clock }
}

// TearDownTest runs after each test
func (suite *StatsServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *StatsServiceTestSuite) addHistory(userID uint64, action models.HistoryAction, points, xp int, at time.Time) {
	rec := &models.TaskHistory{
		TaskID: 1, UserID: userID, GroupID: 1,
		Action: action, Points: points, XP: xp,
		CreatedAt: at,
	}
	suite.Require().NoError(suite.db.Create(rec).Error)
}

func (suite *StatsServiceTestSuite) TestGetUserStatsAggregatesHistory() {
	user := &models.User{Username: "alice", PasswordHash: "x", XP: 215}
	suite.Require().NoError(suite.db.Create(user).Error)

	day := suite.clock.Add(-48 * time.Hour)
	suite.addHistory(user.ID, models.HistoryActionCreated, 0, 0, day)
	suite.addHistory(user.ID, models.HistoryActionCreated, 0, 0, day)
	suite.addHistory(user.ID, models.HistoryActionConfirmed, 10, 15, day)
	suite.addHistory(user.ID, models.HistoryActionLate, 0, 0, day.Add(24*time.Hour))
	suite.addHistory(user.ID, models.HistoryActionConfirmed, 12, 40, day.Add(24*time.Hour))

	wish := &models.Wish{Title: "Pizza", CreatedBy: user.ID, GroupID: 1, Status: models.WishStatusCompleted}
	suite.Require().NoError(suite.db.Create(wish).Error)

	stats, err := suite.service.GetUserStats(user.ID)
	suite.Require().NoError(err)

	suite.Equal(2, stats.TasksCompleted)
	suite.Equal(1, stats.TasksLate)
	suite.Equal(22, stats.PointsEarned)
	suite.Equal(55, stats.XPEarned)
	suite.Equal(1, stats.WishesPurchased)
	suite.InDelta(1.0, stats.CompletionRate, 0.001)
	suite.Equal(3, stats.Level)
	suite.Equal(2, stats.CurrentStreak)
	suite.Equal(2, stats.LongestStreak)
}

func (suite *StatsServiceTestSuite) TestGetUserStatsUnknownUser() {
	_, err := suite.service.GetUserStats(999)
	suite.ErrorIs(err, ErrStatsUserNotFound)
}

func TestStatsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(StatsServiceTestSuite))
}
