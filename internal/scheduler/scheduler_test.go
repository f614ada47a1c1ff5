package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/lvtodo/lvtodo-api/internal/models"
	"github.com/lvtodo/lvtodo-api/internal/repository"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// spyNotifier records sent notifications for assertions.
type spyNotifier struct {
	sent []spyMessage
}

type spyMessage struct {
	Target string
	Title  string
	Body   string
}

func (n *spyNotifier) Send(_ context.Context, target, title, body string) error {
	n.sent = append(n.sent, spyMessage{Target: target, Title: title, Body: body})
	return nil
}

// SchedulerTestSuite defines the test suite for the deadline sweeps
type SchedulerTestSuite struct {
	suite.Suite
	db        *gorm.DB
	scheduler *Scheduler
	notifier  *spyNotifier
	clock     time.Time
	taskRepo  repository.TaskRepository
}

// SetupTest runs before each test
func (suite *SchedulerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Task{},
		&models.TaskHistory{},
	)
	suite.Require().NoError(err)

	suite.taskRepo = repository.NewTaskRepository(suite.db)
	suite.notifier = &spyNotifier{}
	suite.clock = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	suite.scheduler = New(suite.taskRepo, suite.notifier, time.Minute, time.Minute)
	suite.scheduler.now = func() time.Time { return suite.clock }
}

// TearDownTest runs after each test
func (suite *SchedulerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// createTask inserts an active task whose window opened at createdAt
// and closes at deadline.
func (suite *SchedulerTestSuite) createTask(createdAt, deadline time.Time, status models.TaskStatus) *models.Task {
	task := &models.Task{
		Title:      "Walk the dog",
		Difficulty: models.DifficultyEasy,
		Points:     10, XP: 15,
		AssignedTo: 1, AssignedBy: 2, GroupID: 1,
		Status:    status,
		Deadline:  deadline,
		CreatedAt: createdAt,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *SchedulerTestSuite) reload(id uint64) *models.Task {
	task, err := suite.taskRepo.FindByID(id)
	suite.Require().NoError(err)
	return task
}

func (suite *SchedulerTestSuite) TestReminderFiresOncePerThreshold() {
	// 25% of a 100h window elapsed: the 80% threshold is crossed.
	task := suite.createTask(suite.clock.Add(-25*time.Hour), suite.clock.Add(75*time.Hour), models.TaskStatusPending)

	suite.Require().NoError(suite.scheduler.RunReminderSweep(context.Background()))
	suite.Require().Len(suite.notifier.sent, 1)
	suite.Equal("Task reminder", suite.notifier.sent[0].Title)

	reloaded := suite.reload(task.ID)
	suite.True(reloaded.Notified80)
	suite.False(reloaded.Notified50)

	// A second sweep with nothing newly crossed stays silent.
	suite.Require().NoError(suite.scheduler.RunReminderSweep(context.Background()))
	suite.Len(suite.notifier.sent, 1)
}

func (suite *SchedulerTestSuite) TestReminderCatchesUpAcrossThresholds() {
	// 96% elapsed: 80, 50, 30 and 5 are all crossed at once, but only
	// one reminder goes out.
	task := suite.createTask(suite.clock.Add(-96*time.Hour), suite.clock.Add(4*time.Hour), models.TaskStatusInProgress)

	suite.Require().NoError(suite.scheduler.RunReminderSweep(context.Background()))
	suite.Require().Len(suite.notifier.sent, 1)

	reloaded := suite.reload(task.ID)
	suite.True(reloaded.Notified80)
	suite.True(reloaded.Notified50)
	suite.True(reloaded.Notified30)
	suite.True(reloaded.Notified5)
}

func (suite *SchedulerTestSuite) TestReminderSkipsFreshTask() {
	// 10% elapsed: no threshold crossed yet.
	task := suite.createTask(suite.clock.Add(-10*time.Hour), suite.clock.Add(90*time.Hour), models.TaskStatusPending)

	suite.Require().NoError(suite.scheduler.RunReminderSweep(context.Background()))
	suite.Empty(suite.notifier.sent)

	reloaded := suite.reload(task.ID)
	suite.False(reloaded.Notified80)
}

func (suite *SchedulerTestSuite) TestReminderLeavesOverdueTasksToOverdueSweep() {
	suite.createTask(suite.clock.Add(-48*time.Hour), suite.clock.Add(-time.Hour), models.TaskStatusPending)

	suite.Require().NoError(suite.scheduler.RunReminderSweep(context.Background()))
	suite.Empty(suite.notifier.sent)
}

func (suite *SchedulerTestSuite) TestOverdueSweepMarksLate() {
	task := suite.createTask(suite.clock.Add(-48*time.Hour), suite.clock.Add(-time.Hour), models.TaskStatusInProgress)

	suite.Require().NoError(suite.scheduler.RunOverdueSweep(context.Background()))

	reloaded := suite.reload(task.ID)
	suite.Equal(models.TaskStatusLate, reloaded.Status)

	suite.Require().Len(suite.notifier.sent, 1)
	suite.Equal("Task overdue", suite.notifier.sent[0].Title)
	suite.Equal("user_1", suite.notifier.sent[0].Target)

	var history []models.TaskHistory
	suite.Require().NoError(suite.db.Where("task_id = ?", task.ID).Find(&history).Error)
	suite.Require().Len(history, 1)
	suite.Equal(models.HistoryActionLate, history[0].Action)
}

func (suite *SchedulerTestSuite) TestOverdueSweepIsIdempotent() {
	task := suite.createTask(suite.clock.Add(-48*time.Hour), suite.clock.Add(-time.Hour), models.TaskStatusPending)

	suite.Require().NoError(suite.scheduler.RunOverdueSweep(context.Background()))
	suite.Require().NoError(suite.scheduler.RunOverdueSweep(context.Background()))

	suite.Len(suite.notifier.sent, 1)

	var history int64
	suite.db.Model(&models.TaskHistory{}).Where("task_id = ?", task.ID).Count(&history)
	suite.Equal(int64(1), history)
}

func (suite *SchedulerTestSuite) TestOverdueSweepIgnoresFutureDeadlines() {
	task := suite.createTask(suite.clock.Add(-time.Hour), suite.clock.Add(time.Hour), models.TaskStatusPending)

	suite.Require().NoError(suite.scheduler.RunOverdueSweep(context.Background()))

	reloaded := suite.reload(task.ID)
	suite.Equal(models.TaskStatusPending, reloaded.Status)
	suite.Empty(suite.notifier.sent)
}

func TestSchedulerTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerTestSuite))
}
