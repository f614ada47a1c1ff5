package services

import (
	"context"
	"errors"
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

// failingGroupRepo errors on FindByID and delegates everything else.
type failingGroupRepo struct {
	repository.GroupRepository
	err error
}

func (r *failingGroupRepo) FindByID(id uint64) (*models.Group, error) {
	return nil, r.err
}

// TaskServiceTestSuite defines the test suite for TaskService
type TaskServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	service  *TaskService
	notifier *spyNotifier
	clock    time.Time

	taskRepo    repository.TaskRepository
	groupRepo   repository.GroupRepository
	userRepo    repository.UserRepository
	historyRepo repository.HistoryRepository
}

// SetupTest runs before each test
func (suite *TaskServiceTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Task{},
		&models.Wish{},
		&models.WishApproval{},
		&models.TaskHistory{},
		&models.UserAchievement{},
	)
	suite.Require().NoError(err)

	suite.taskRepo = repository.NewTaskRepository(suite.db)
	suite.groupRepo = repository.NewGroupRepository(suite.db)
	suite.userRepo = repository.NewUserRepository(suite.db)
	suite.historyRepo = repository.NewHistoryRepository(suite.db)

	suite.notifier = &spyNotifier{}
	suite.clock = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	suite.service = NewTaskService(suite.taskRepo, suite.groupRepo, suite.userRepo, suite.notifier, nil)
	suite.service.now = func() time.Time { return suite.clock }
}

// TearDownTest runs after each test
func (suite *TaskServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *TaskServiceTestSuite) createTestUser(username string) *models.User {
	user := &models.User{
		Username:     username,
		PasswordHash: "hashedpassword",
		DisplayName:  username,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskServiceTestSuite) createTestGroup(ownerID uint64, memberIDs ...uint64) *models.Group {
	group := &models.Group{
		Name:                    "Test Group",
		InviteCode:              "ABC123",
		CreatedBy:               ownerID,
		AllowWishes:             true,
		RequireTaskConfirmation: true,
	}
	suite.Require().NoError(suite.db.Create(group).Error)

	suite.Require().NoError(suite.db.Create(&models.GroupMember{
		GroupID: group.ID, UserID: ownerID, Role: models.RoleOwner, JoinedAt: suite.clock,
	}).Error)
	for _, id := range memberIDs {
		suite.Require().NoError(suite.db.Create(&models.GroupMember{
			GroupID: group.ID, UserID: id, Role: models.RoleMember, JoinedAt: suite.clock,
		}).Error)
	}

	return group
}

func (suite *TaskServiceTestSuite) createTask(assigner, assignee *models.User, group *models.Group, difficulty models.TaskDifficulty) *models.Task {
	task, err := suite.service.CreateTask(CreateTaskInput{
		Title:      "Do the dishes",
		Difficulty: difficulty,
		AssignedTo: assignee.ID,
		AssignedBy: assigner.ID,
		GroupID:    group.ID,
		Deadline:   suite.clock.Add(48 * time.Hour),
	})
	suite.Require().NoError(err)
	return task
}

func (suite *TaskServiceTestSuite) reloadUser(id uint64) *models.User {
	user, err := suite.userRepo.FindByID(id)
	suite.Require().NoError(err)
	return user
}

func (suite *TaskServiceTestSuite) TestCreateTaskSnapshotsReward() {
	assigner := suite.createTestUser("alice")
	assignee := suite.createTestUser("bob")
	group := suite.createTestGroup(assigner.ID, assignee.ID)

	task := suite.createTask(assigner, assignee, group, models.DifficultyHard)

	suite.Equal(models.TaskStatusPending, task.Status)
	suite.Equal(25, task.Points)
	suite.Equal(40, task.XP)

	records, err := suite.historyRepo.ListByTask(task.ID)
	suite.Require().NoError(err)
	suite.Require().Len(records, 1)
	suite.Equal(models.HistoryActionCreated, records[0].Action)

	// Assignee got a notification about the new task
	suite.Require().Len(suite.notifier.sent, 1)
	suite.Equal("user_2", suite.notifier.sent[0].Target)
}

func (suite *TaskServiceTestSuite) TestCreateTaskRejectsPastDeadline() {
	assigner := suite.createTestUser("alice")
	assignee := suite.createTestUser("bob")
	group := suite.createTestGroup(assigner.ID, assignee.ID)

	_, err := suite.service.CreateTask(CreateTaskInput{
		Title:      "Too late",
		Difficulty: models.DifficultyEasy,
		AssignedTo: assignee.ID,
		AssignedBy: assigner.ID,
		GroupID:    group.ID,
		Deadline:   suite.clock.Add(-time.Hour),
	})
	suite.ErrorIs(err, ErrDeadlineNotFuture)
}

func (suite *TaskServiceTestSuite) TestCreateTaskRequiresMembership() {
	assigner := suite.createTestUser("alice")
	outsider := suite.createTestUser("mallory")
	group := suite.createTestGroup(assigner.ID)

	_, err := suite.service.CreateTask(CreateTaskInput{
		Title:      "For an outsider",
		Difficulty: models.DifficultyEasy,
		AssignedTo: outsider.ID,
		AssignedBy: assigner.ID,
		GroupID:    group.ID,
		Deadline:   suite.clock.Add(time.Hour),
	})
	suite.ErrorIs(err, ErrNotGroupMember)
}

func (suite *TaskServiceTestSuite) TestStartTaskOnlyAssignee() {
	assigner := suite.createTestUser("alice")
	assignee := suite.createTestUser("bob")
	group := suite.createTestGroup(assigner.ID, assignee.ID)
	task := suite.createTask(assigner, assignee, group, models.DifficultyEasy)

	_, err := suite.service.StartTask(task.ID, assigner.ID)
	suite.ErrorIs(err, ErrNotTaskAssignee)

	started, err := suite.service.StartTask(task.ID, assignee.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusInProgress, started.Status)
}

func (suite *TaskServiceTestSuite) TestStartTaskFromWrongStatus() {
	assigner := suite.createTestUser("alice")
	assignee := suite.createTestUser("bob")
	group := suite.createTestGroup(assigner.ID, assignee.ID)
	task := suite.createTask(assigner, assignee, group, models.DifficultyEasy)

	_, err := suite.service.StartTask(task.ID, assignee.ID)
	suite.Require().NoError(err)

	_, err = suite.service.StartTask(task.ID, assignee.ID)
	suite.ErrorIs(err, ErrInvalidTransition)
}

func (suite *TaskServiceTestSuite) TestCompleteOnTime() {
	assigner := suite.createTestUser("alice")
	assignee := suite.createTestUser("bob")
	group := suite.createTestGroup(assigner.ID, assignee.ID)
	task := suite.createTask(assigner, assignee, group, models.DifficultyEasy)

	_, err := suite.service.StartTask(task.ID, assignee.ID)
	suite.Require().NoError(err)

	completed, err := suite.service.CompleteTask(task.ID, assignee.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusCompleted, completed.Status)
	suite.Require().NotNil(completed.CompletedAt)
}

func (suite *TaskServiceTestSuite) TestCompleteAfterDeadlineLandsLate() {
	assigner := suite.createTestUser("alice")
	assignee := suite.createTestUser("bob")
	group := suite.createTestGroup(assigner.ID, assignee.ID)
	task := suite.createTask(assigner, assignee, group, models.DifficultyEasy)

	_, err := suite.service.StartTask(task.ID, assignee.ID)
	suite.Require().NoError(err)

	// Past the 48h deadline
	suite.clock = suite.clock.Add(72 * time.Hour)

	completed, err := suite.service.CompleteTask(task.ID, assignee.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusLate, completed.Status)
}

func (suite *TaskServiceTestSuite) TestConfirmSettlesReward() {
	assigner := suite.createTestUser("alice")
	assignee := suite.createTestUser("bob")
	group := suite.createTestGroup(assigner.ID, assignee.ID)
	task := suite.createTask(assigner, assignee, group, models.DifficultyEasy)

	_, err := suite.service.StartTask(task.ID, assignee.ID)
	suite.Require().NoError(err)
	_, err = suite.service.CompleteTask(task.ID, assignee.ID)
	suite.Require().NoError(err)

	confirmed, reward, err := suite.service.ConfirmTask(task.ID, assigner.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusConfirmed, confirmed.Status)
	suite.Equal(10, reward.Points)
	suite.Equal(15, reward.XP)

	user := suite.reloadUser(assignee.ID)
	suite.Equal(10, user.Points)
	suite.Equal(15, user.XP)
}

func (suite *TaskServiceTestSuite) TestConfirmLateAppliesPenalty() {
	assigner := suite.createTestUser("alice")
	assignee := suite.createTestUser("bob")
	group := suite.createTestGroup(assigner.ID, assignee.ID)
	task := suite.createTask(assigner, assignee, group, models.DifficultyEasy)

	_, err := suite.service.StartTask(task.ID, assignee.ID)
	suite.Require().NoError(err)

	suite.clock = suite.clock.Add(72 * time.Hour)
	_, err = suite.service.CompleteTask(task.ID, assignee.ID)
	suite.Require().NoError(err)

	_, reward, err := suite.service.ConfirmTask(task.ID, assigner.ID)
	suite.Require().NoError(err)

	// Half points rounded down, full XP
	suite.Equal(5, reward.Points)
	suite.Equal(15, reward.XP)

	user := suite.reloadUser(assignee.ID)
	suite.Equal(5, user.Points)
	suite.Equal(15, user.XP)
}

func (suite *TaskServiceTestSuite) TestConfirmTwiceSettlesOnce() {
	assigner := suite.createTestUser("alice")
	assignee := suite.createTestUser("bob")
	group := suite.createTestGroup(assigner.ID, assignee.ID)
	task := suite.createTask(assigner, assignee, group, models.DifficultyHard)

	_, err := suite.service.StartTask(task.ID, assignee.ID)
	suite.Require().NoError(err)
	_, err = suite.service.CompleteTask(task.ID, assignee.ID)
	suite.Require().NoError(err)

	_, _, err = suite.service.ConfirmTask(task.ID, assigner.ID)
	suite.Require().NoError(err)

	_, _, err = suite.service.ConfirmTask(task.ID, assigner.ID)
	suite.ErrorIs(err, ErrInvalidTransition)

	user := suite.reloadUser(assignee.ID)
	suite.Equal(25, user.Points)
	suite.Equal(40, user.XP)
}

func (suite *TaskServiceTestSuite) TestConfirmOnlyAssigner() {
	assigner := suite.createTestUser("alice")
	assignee := suite.createTestUser("bob")
	group := suite.createTestGroup(assigner.ID, assignee.ID)
	task := suite.createTask(assigner, assignee, group, models.DifficultyEasy)

	_, err := suite.service.StartTask(task.ID, assignee.ID)
	suite.Require().NoError(err)
	_, err = suite.service.CompleteTask(task.ID, assignee.ID)
	suite.Require().NoError(err)

	_, _, err = suite.service.ConfirmTask(task.ID, assignee.ID)
	suite.ErrorIs(err, ErrNotTaskAssigner)
}

func (suite *TaskServiceTestSuite) TestConfirmPendingTaskFails() {
	assigner := suite.createTestUser("alice")
	assignee := suite.createTestUser("bob")
	group := suite.createTestGroup(assigner.ID, assignee.ID)
	task := suite.createTask(assigner, assignee, group, models.DifficultyEasy)

	_, _, err := suite.service.ConfirmTask(task.ID, assigner.ID)
	suite.ErrorIs(err, ErrInvalidTransition)
}

func (suite *TaskServiceTestSuite) TestDisputeReopensTask() {
	assigner := suite.createTestUser("alice")
	assignee := suite.createTestUser("bob")
	group := suite.createTestGroup(assigner.ID, assignee.ID)
	task := suite.createTask(assigner, assignee, group, models.DifficultyEasy)

	_, err := suite.service.StartTask(task.ID, assignee.ID)
	suite.Require().NoError(err)
	_, err = suite.service.CompleteTask(task.ID, assignee.ID)
	suite.Require().NoError(err)

	disputed, err := suite.service.DisputeTask(task.ID, assigner.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusPending, disputed.Status)
	suite.Nil(disputed.CompletedAt)

	// No reward was granted
	user := suite.reloadUser(assignee.ID)
	suite.Equal(0, user.Points)
	suite.Equal(0, user.XP)
}

func (suite *TaskServiceTestSuite) TestAutoSettleWhenConfirmationDisabled() {
	assigner := suite.createTestUser("alice")
	assignee := suite.createTestUser("bob")
	group := suite.createTestGroup(assigner.ID, assignee.ID)

	group.RequireTaskConfirmation = false
	suite.Require().NoError(suite.db.Save(group).Error)

	task := suite.createTask(assigner, assignee, group, models.DifficultyEasy)

	_, err := suite.service.StartTask(task.ID, assignee.ID)
	suite.Require().NoError(err)

	completed, err := suite.service.CompleteTask(task.ID, assignee.ID)
	suite.Require().NoError(err)
	suite.Equal(models.TaskStatusConfirmed, completed.Status)

	user := suite.reloadUser(assignee.ID)
	suite.Equal(10, user.Points)
	suite.Equal(15, user.XP)
}

func (suite *TaskServiceTestSuite) TestCompleteSurfacesGroupLookupFailure() {
	assigner := suite.createTestUser("alice")
	assignee := suite.createTestUser("bob")
	group := suite.createTestGroup(assigner.ID, assignee.ID)

	group.RequireTaskConfirmation = false
	suite.Require().NoError(suite.db.Save(group).Error)

	task := suite.createTask(assigner, assignee, group, models.DifficultyEasy)

	_, err := suite.service.StartTask(task.ID, assignee.ID)
	suite.Require().NoError(err)

	broken := &failingGroupRepo{GroupRepository: suite.groupRepo, err: errors.New("connection reset")}
	service := NewTaskService(suite.taskRepo, broken, suite.userRepo, suite.notifier, nil)
	service.now = func() time.Time { return suite.clock }

	// The failed lookup must not read as success while the settlement
	// the group's settings promise is skipped.
	_, err = service.CompleteTask(task.ID, assignee.ID)
	suite.Require().Error(err)

	user := suite.reloadUser(assignee.ID)
	suite.Equal(0, user.Points)
	suite.Equal(0, user.XP)
}

func (suite *TaskServiceTestSuite) TestListTasksFiltersByAssignee() {
	assigner := suite.createTestUser("alice")
	assignee := suite.createTestUser("bob")
	group := suite.createTestGroup(assigner.ID, assignee.ID)

	suite.createTask(assigner, assignee, group, models.DifficultyEasy)
	suite.createTask(assignee, assigner, group, models.DifficultyEasy)

	tasks, total, err := suite.service.ListTasks(ListTasksInput{
		UserID:       assignee.ID,
		AssignedToMe: true,
	})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(tasks, 1)
	suite.Equal(assignee.ID, tasks[0].AssignedTo)
}

func TestTaskServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TaskServiceTestSuite))
}
