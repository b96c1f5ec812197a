package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/occupancy"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func TestRowLabelFromIndex(t *testing.T) {
	cases := map[int]string{
		0:  "A",
		1:  "B",
		25: "Z",
		26: "AA",
		27: "AB",
		51: "AZ",
		52: "BA",
	}
	for idx, want := range cases {
		assert.Equal(t, want, RowLabelFromIndex(idx))
	}
	assert.Equal(t, "", RowLabelFromIndex(-1))
}

func TestCreateBatchTx(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewSeatRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO seats").
		WithArgs(
			uint64(7), "A", 1, occupancy.ConfigAvailable,
			uint64(7), "A", 2, occupancy.ConfigAvailable,
			uint64(7), "B", 1, occupancy.ConfigAvailable,
			uint64(7), "B", 2, occupancy.ConfigAvailable,
		).
		WillReturnResult(sqlmock.NewResult(1, 4))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.CreateBatchTx(context.Background(), tx, 7, 2, 2))
	require.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBatchTx_ZeroDimensions(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewSeatRepo(db)

	mock.ExpectBegin()
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	err = repo.CreateBatchTx(context.Background(), tx, 7, 0, 5)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	err = repo.CreateBatchTx(context.Background(), tx, 7, 5, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreateBatchTx_DuplicateSeat(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewSeatRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO seats").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "duplicate entry"})

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	err = repo.CreateBatchTx(context.Background(), tx, 7, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestListByIDsForUpdateTx_LocksInOrder(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewSeatRepo(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "room_id", "row_label", "seat_number", "config_state", "created_at", "updated_at"}).
		AddRow(3, 7, "A", 3, "AVAILABLE", now, now).
		AddRow(9, 7, "B", 1, "DISABLED", now, now)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM seats WHERE id IN \(\?, \?\) ORDER BY id FOR UPDATE`).
		WithArgs(uint64(9), uint64(3)).
		WillReturnRows(rows)

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	seats, err := repo.ListByIDsForUpdateTx(context.Background(), tx, []uint64{9, 3})
	require.NoError(t, err)
	require.Len(t, seats, 2)
	assert.Equal(t, uint64(3), seats[0].ID)
	assert.Equal(t, occupancy.ConfigDisabled, seats[1].ConfigState)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewSeatRepo(db)

	mock.ExpectQuery("FROM seats WHERE id").
		WithArgs(uint64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrSeatNotFound)
}
