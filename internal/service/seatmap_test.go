package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/occupancy"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

func newSeatMapService(t *testing.T) (*SeatMapService, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	svc := NewSeatMapService(
		repository.NewRoomRepo(db),
		repository.NewSeatRepo(db),
		repository.NewShowtimeRepo(db),
		repository.NewHoldRepo(db),
		repository.NewTicketRepo(db),
	)
	return svc, mock, func() { db.Close() }
}

func roomSeatRows(states map[uint64]occupancy.ConfigState) *sqlmock.Rows {
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "room_id", "row_label", "seat_number", "config_state", "created_at", "updated_at"})
	id := uint64(1)
	for _, label := range []string{"A", "B"} {
		for num := 1; num <= 3; num++ {
			state := occupancy.ConfigAvailable
			if s, ok := states[id]; ok {
				state = s
			}
			rows.AddRow(id, testRoomID, label, num, state, now, now)
			id++
		}
	}
	return rows
}

func TestShowtimeSeatMap(t *testing.T) {
	svc, mock, closeDB := newSeatMapService(t)
	defer closeDB()
	ctx := context.Background()

	// 2x3 room: seat 2 (A2) is held, seat 5 (B2) is sold, seat 4 (B1)
	// is disabled, the rest are free.
	mock.ExpectQuery(`FROM showtimes WHERE id`).
		WithArgs(testShowtimeID).
		WillReturnRows(scheduledShowtimeRows())
	mock.ExpectQuery(`FROM rooms WHERE id`).
		WithArgs(testRoomID).
		WillReturnRows(roomRows(testRoomID, 2, 3))
	mock.ExpectQuery(`FROM seats WHERE room_id`).
		WithArgs(testRoomID).
		WillReturnRows(roomSeatRows(map[uint64]occupancy.ConfigState{4: occupancy.ConfigDisabled}))
	mock.ExpectQuery(`FROM seat_holds`).
		WithArgs(testShowtimeID).
		WillReturnRows(holdRows(model.SeatHold{SeatID: 2, HolderID: 42}))
	mock.ExpectQuery(`FROM tickets WHERE showtime_id`).
		WithArgs(testShowtimeID).
		WillReturnRows(ticketRows(model.Ticket{SeatID: 5, BuyerID: 7, SellerID: 7}))

	sm, err := svc.ShowtimeSeatMap(ctx, testShowtimeID)
	require.NoError(t, err)
	assert.Equal(t, testShowtimeID, sm.ShowtimeID)
	assert.Equal(t, "Sala 1", sm.RoomName)
	require.Len(t, sm.Rows, 2)
	assert.Equal(t, "A", sm.Rows[0].RowLabel)
	assert.Equal(t, "B", sm.Rows[1].RowLabel)
	require.Len(t, sm.Rows[0].Seats, 3)
	require.Len(t, sm.Rows[1].Seats, 3)

	rowA, rowB := sm.Rows[0].Seats, sm.Rows[1].Seats
	assert.Equal(t, occupancy.Free, rowA[0].State)
	assert.Equal(t, occupancy.Held, rowA[1].State)
	assert.Equal(t, occupancy.Free, rowA[2].State)
	assert.Equal(t, occupancy.Disabled, rowB[0].State)
	assert.Equal(t, occupancy.Sold, rowB[1].State)
	assert.Equal(t, occupancy.Free, rowB[2].State)

	assert.Equal(t, "A2", rowA[1].Label)
	assert.True(t, rowA[0].Sellable)
	assert.False(t, rowA[1].Sellable)
	assert.False(t, rowB[0].Sellable)
	assert.False(t, rowB[1].Sellable)
	assert.Contains(t, sm.Legend, string(occupancy.Sold))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomLayout(t *testing.T) {
	svc, mock, closeDB := newSeatMapService(t)
	defer closeDB()

	mock.ExpectQuery(`FROM rooms WHERE id`).
		WithArgs(testRoomID).
		WillReturnRows(roomRows(testRoomID, 2, 3))
	mock.ExpectQuery(`FROM seats WHERE room_id`).
		WithArgs(testRoomID).
		WillReturnRows(roomSeatRows(map[uint64]occupancy.ConfigState{4: occupancy.ConfigDisabled}))

	sm, err := svc.RoomLayout(context.Background(), testRoomID)
	require.NoError(t, err)
	assert.Zero(t, sm.ShowtimeID)
	require.Len(t, sm.Rows, 2)
	assert.Equal(t, occupancy.Free, sm.Rows[0].Seats[0].State)
	assert.Equal(t, occupancy.Disabled, sm.Rows[1].Seats[0].State)
}

func TestSortSeatMap_ShortLabelsFirst(t *testing.T) {
	sm := &SeatMap{Rows: []MapRow{
		{RowLabel: "AA", Seats: []MapSeat{{SeatNumber: 2}, {SeatNumber: 1}}},
		{RowLabel: "B"},
		{RowLabel: "Z"},
		{RowLabel: "A"},
	}}
	sortSeatMap(sm)

	labels := make([]string, 0, len(sm.Rows))
	for _, r := range sm.Rows {
		labels = append(labels, r.RowLabel)
	}
	assert.Equal(t, []string{"A", "B", "Z", "AA"}, labels)
	assert.Equal(t, uint32(1), sm.Rows[3].Seats[0].SeatNumber)
	assert.Equal(t, uint32(2), sm.Rows[3].Seats[1].SeatNumber)
}
