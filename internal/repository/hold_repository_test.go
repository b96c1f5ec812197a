package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
)

func TestGenerateHolds(t *testing.T) {
	expiry := time.Now().Add(5 * time.Minute)
	holds, err := GenerateHolds(42, 11, []uint64{1, 2, 3}, expiry)
	require.NoError(t, err)
	require.Len(t, holds, 3)

	tokens := make(map[string]bool)
	for i, h := range holds {
		assert.Equal(t, uint64(42), h.HolderID)
		assert.Equal(t, uint64(11), h.ShowtimeID)
		assert.Equal(t, uint64(i+1), h.SeatID)
		assert.Len(t, h.HoldToken, 64)
		assert.Equal(t, expiry.UTC(), h.ExpiresAt)
		tokens[h.HoldToken] = true
	}
	assert.Len(t, tokens, 3, "tokens must be unique")
}

func TestExpireTx_ReapsAndReturnsFreedSeats(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewHoldRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT seat_id FROM seat_holds`).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}).AddRow(2).AddRow(5))
	mock.ExpectExec(`DELETE FROM seat_holds`).
		WithArgs(uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	freed, err := repo.ExpireTx(context.Background(), tx, 11)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 5}, freed)
	require.NoError(t, tx.Commit())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExpireTx_NothingExpired(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewHoldRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT seat_id FROM seat_holds`).
		WithArgs(uint64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"seat_id"}))

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	freed, err := repo.ExpireTx(context.Background(), tx, 11)
	require.NoError(t, err)
	assert.Empty(t, freed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBySeatsTx_UsesLockingRead(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewHoldRepo(db)

	// The read must lock the rows. A plain SELECT under REPEATABLE READ
	// reads the transaction snapshot and misses a hold committed while
	// the caller waited on the seat locks.
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM seat_holds WHERE showtime_id = \? AND expires_at > UTC_TIMESTAMP\(\) AND seat_id IN \(\?, \?\) FOR UPDATE`).
		WithArgs(uint64(11), uint64(2), uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "showtime_id", "seat_id", "holder_id", "hold_token", "expires_at", "created_at"}).
			AddRow(1, 11, 2, 77, "tok", time.Now().Add(time.Minute), time.Now()))

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	holds, err := repo.ListBySeatsTx(context.Background(), tx, 11, []uint64{2, 5})
	require.NoError(t, err)
	require.Len(t, holds, 1)
	assert.Equal(t, uint64(77), holds[0].HolderID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByHolderTx_LeavesForeignHolds(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewHoldRepo(db)

	// Seat 2 is held by someone else; the holder-scoped delete touches
	// zero rows, so the survivor still backs the unique key.
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM seat_holds WHERE showtime_id = \? AND holder_id = \? AND seat_id IN \(\?\)`).
		WithArgs(uint64(11), uint64(42), uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	n, err := repo.DeleteByHolderTx(context.Background(), tx, 11, 42, []uint64{2})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBatchTx_LostRaceMapsToConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewHoldRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO seat_holds").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "duplicate entry"})

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	holds := []model.SeatHold{{ShowtimeID: 11, SeatID: 2, HolderID: 42, HoldToken: "tok", ExpiresAt: time.Now()}}
	err = repo.CreateBatchTx(context.Background(), tx, holds)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestExpireAll(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewHoldRepo(db)

	mock.ExpectExec(`DELETE FROM seat_holds WHERE expires_at`).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := repo.ExpireAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}
