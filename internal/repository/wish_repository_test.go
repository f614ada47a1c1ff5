package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestApproveMapsDuplicateKeyFromInsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewWishRepository(db)

	mock.ExpectBegin()
	// A racing vote by the same user is not visible to the existence
	// check yet
	mock.ExpectQuery("SELECT \\* FROM `wish_approvals`").
		WillReturnRows(sqlmock.NewRows([]string{"wish_id", "user_id", "suggested_cost"}))
	// but it already holds the composite primary key.
	mock.ExpectExec("INSERT INTO `wish_approvals`").
		WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	_, err := repo.Approve(5, 2, 100, 2, time.Now())
	assert.ErrorIs(t, err, ErrDuplicateApproval)
	assert.NoError(t, mock.ExpectationsWereMet())
}
