package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/occupancy"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

func newRoomService(t *testing.T) (*RoomService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	svc := NewRoomService(
		repository.NewRoomRepo(db),
		repository.NewSeatRepo(db),
		repository.NewShowtimeRepo(db),
	)
	return svc, mock, func() { db.Close() }
}

func TestCreateRoom_GridInOneTransaction(t *testing.T) {
	svc, mock, closeDB := newRoomService(t)
	defer closeDB()
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO rooms`).
		WithArgs("Sala 1", uint32(2), uint32(3), uint32(6), "2D", true).
		WillReturnResult(sqlmock.NewResult(int64(testRoomID), 1))
	mock.ExpectQuery(`FROM rooms WHERE id`).
		WithArgs(testRoomID).
		WillReturnRows(roomRows(testRoomID, 2, 3))
	mock.ExpectExec(`INSERT INTO seats`).
		WithArgs(
			testRoomID, "A", 1, occupancy.ConfigAvailable,
			testRoomID, "A", 2, occupancy.ConfigAvailable,
			testRoomID, "A", 3, occupancy.ConfigAvailable,
			testRoomID, "B", 1, occupancy.ConfigAvailable,
			testRoomID, "B", 2, occupancy.ConfigAvailable,
			testRoomID, "B", 3, occupancy.ConfigAvailable,
		).
		WillReturnResult(sqlmock.NewResult(1, 6))
	mock.ExpectCommit()

	room, err := svc.CreateRoom(ctx, CreateRoomInput{Name: "Sala 1", RowCount: 2, SeatsPerRow: 3})
	require.NoError(t, err)
	assert.Equal(t, testRoomID, room.ID)
	assert.Equal(t, uint32(6), room.Capacity)
	assert.Equal(t, "2D", room.RoomType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoom_DuplicateName(t *testing.T) {
	svc, mock, closeDB := newRoomService(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO rooms`).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "duplicate entry"})
	mock.ExpectRollback()

	_, err := svc.CreateRoom(context.Background(), CreateRoomInput{Name: "Sala 1", RowCount: 2, SeatsPerRow: 3})
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoom_RejectsEmptyGrid(t *testing.T) {
	svc, _, closeDB := newRoomService(t)
	defer closeDB()

	_, err := svc.CreateRoom(context.Background(), CreateRoomInput{Name: "Sala 1"})
	assert.ErrorIs(t, err, repository.ErrInvalidArgument)
}

func TestDeleteRoom_FutureShowtimeBlocks(t *testing.T) {
	svc, mock, closeDB := newRoomService(t)
	defer closeDB()

	mock.ExpectQuery(`FROM rooms WHERE id`).
		WithArgs(testRoomID).
		WillReturnRows(roomRows(testRoomID, 2, 3))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(testRoomID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	err := svc.DeleteRoom(context.Background(), testRoomID)
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRoom(t *testing.T) {
	svc, mock, closeDB := newRoomService(t)
	defer closeDB()

	mock.ExpectQuery(`FROM rooms WHERE id`).
		WithArgs(testRoomID).
		WillReturnRows(roomRows(testRoomID, 2, 3))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(testRoomID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`DELETE FROM rooms WHERE id`).
		WithArgs(testRoomID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, svc.DeleteRoom(context.Background(), testRoomID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReconfigureRoom_FutureShowtimeBlocks(t *testing.T) {
	svc, mock, closeDB := newRoomService(t)
	defer closeDB()

	mock.ExpectQuery(`FROM rooms WHERE id`).
		WithArgs(testRoomID).
		WillReturnRows(roomRows(testRoomID, 2, 3))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(testRoomID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.ReconfigureRoom(context.Background(), testRoomID, 4, 5)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestAddRow_AppendsNextLetter(t *testing.T) {
	svc, mock, closeDB := newRoomService(t)
	defer closeDB()
	ctx := context.Background()

	// Room has rows A and B; the appended row must be C.
	mock.ExpectQuery(`FROM rooms WHERE id`).
		WithArgs(testRoomID).
		WillReturnRows(roomRows(testRoomID, 2, 3))
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO seats`).
		WithArgs(
			testRoomID, "C", 1, occupancy.ConfigAvailable,
			testRoomID, "C", 2, occupancy.ConfigAvailable,
			testRoomID, "C", 3, occupancy.ConfigAvailable,
		).
		WillReturnResult(sqlmock.NewResult(7, 3))
	mock.ExpectExec(`UPDATE rooms SET\s+row_count = \(SELECT COUNT\(DISTINCT row_label\)`).
		WithArgs(testRoomID, testRoomID, testRoomID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`FROM rooms WHERE id`).
		WithArgs(testRoomID).
		WillReturnRows(roomRows(testRoomID, 3, 3))

	room, err := svc.AddRow(ctx, testRoomID, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), room.RowCount)
	assert.Equal(t, uint32(9), room.Capacity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRow_UnknownLabel(t *testing.T) {
	svc, mock, closeDB := newRoomService(t)
	defer closeDB()

	mock.ExpectQuery(`FROM rooms WHERE id`).
		WithArgs(testRoomID).
		WillReturnRows(roomRows(testRoomID, 2, 3))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(testRoomID).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM seats WHERE room_id = \? AND row_label`).
		WithArgs(testRoomID, "Z").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.DeleteRow(context.Background(), testRoomID, "Z")
	assert.ErrorIs(t, err, repository.ErrSeatNotFound)
}

func TestListSeats(t *testing.T) {
	svc, mock, closeDB := newRoomService(t)
	defer closeDB()

	mock.ExpectQuery(`FROM rooms WHERE id`).
		WithArgs(testRoomID).
		WillReturnRows(roomRows(testRoomID, 2, 3))
	mock.ExpectQuery(`FROM seats WHERE room_id`).
		WithArgs(testRoomID).
		WillReturnRows(seatRows(nil, 1, 2, 3))

	seats, err := svc.ListSeats(context.Background(), testRoomID)
	require.NoError(t, err)
	assert.Len(t, seats, 3)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListSeats_SeatlessRoomIsNotFound(t *testing.T) {
	svc, mock, closeDB := newRoomService(t)
	defer closeDB()

	// The room exists but carries no seats; that reads as not found, not
	// as an empty map.
	mock.ExpectQuery(`FROM rooms WHERE id`).
		WithArgs(testRoomID).
		WillReturnRows(roomRows(testRoomID, 0, 0))
	mock.ExpectQuery(`FROM seats WHERE room_id`).
		WithArgs(testRoomID).
		WillReturnRows(seatRows(nil))

	_, err := svc.ListSeats(context.Background(), testRoomID)
	assert.ErrorIs(t, err, repository.ErrSeatNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetSeatConfigState_PendingSaleBlocks(t *testing.T) {
	svc, mock, closeDB := newRoomService(t)
	defer closeDB()

	mock.ExpectQuery(`FROM seats WHERE id`).
		WithArgs(uint64(3)).
		WillReturnRows(seatRows(nil, 3))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(uint64(3), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := svc.SetSeatConfigState(context.Background(), 3, occupancy.ConfigDisabled)
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetSeatConfigState(t *testing.T) {
	svc, mock, closeDB := newRoomService(t)
	defer closeDB()

	mock.ExpectQuery(`FROM seats WHERE id`).
		WithArgs(uint64(3)).
		WillReturnRows(seatRows(nil, 3))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(uint64(3), uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`UPDATE seats SET config_state`).
		WithArgs(occupancy.ConfigDisabled, uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM seats WHERE id`).
		WithArgs(uint64(3)).
		WillReturnRows(seatRows(map[uint64]occupancy.ConfigState{3: occupancy.ConfigDisabled}, 3))

	seat, err := svc.SetSeatConfigState(context.Background(), 3, occupancy.ConfigDisabled)
	require.NoError(t, err)
	assert.Equal(t, occupancy.ConfigDisabled, seat.ConfigState)
}

func TestSetSeatConfigState_RejectsUnknownState(t *testing.T) {
	svc, _, closeDB := newRoomService(t)
	defer closeDB()

	_, err := svc.SetSeatConfigState(context.Background(), 3, occupancy.ConfigState("BROKEN"))
	assert.ErrorIs(t, err, repository.ErrInvalidArgument)
}
