package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lvtodo/lvtodo-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB returns a gorm DB backed by sqlmock so SQL issued by the
// settlement path can be asserted exactly.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return db, mock
}

func settlementInput() ConfirmationInput {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	return ConfirmationInput{
		TaskID:      7,
		PriorStatus: models.TaskStatusCompleted,
		ConfirmedBy: 2,
		ConfirmedAt: now,
		AssigneeID:  1,
		Points:      10,
		XP:          15,
		History: &models.TaskHistory{
			TaskID: 7, UserID: 1, GroupID: 3,
			Action: models.HistoryActionConfirmed, Points: 10, XP: 15,
		},
	}
}

func TestSettleConfirmationIssuesRelativeIncrements(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	// Status update keyed on the observed prior status
	mock.ExpectExec("UPDATE `tasks` SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// Balance credit as a relative increment, never read-modify-write
	mock.ExpectExec("UPDATE `users` SET `points`=points \\+ \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `task_histories`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.SettleConfirmation(settlementInput())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleConfirmationRollsBackOnStatusConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTaskRepository(db)

	mock.ExpectBegin()
	// Another confirm already won the race: zero rows match.
	mock.ExpectExec("UPDATE `tasks` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.SettleConfirmation(settlementInput())
	assert.ErrorIs(t, err, ErrStatusConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkNotifiedRejectsUnknownColumn(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewTaskRepository(db)

	_, err := repo.MarkNotified(1, "status")
	assert.Error(t, err)
}
