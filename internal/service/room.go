package service

import (
	"context"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/occupancy"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// RoomService owns room administration: creating rooms with their seat
// grid, reshaping layouts and flipping seat configuration. Layout
// mutations are refused while the room has future showtimes scheduled,
// so sold seat maps never shift under a buyer.
type RoomService struct {
	rooms     *repository.RoomRepo
	seats     *repository.SeatRepo
	showtimes *repository.ShowtimeRepo
}

// NewRoomService wires the room administration flows.
func NewRoomService(rooms *repository.RoomRepo, seats *repository.SeatRepo, showtimes *repository.ShowtimeRepo) *RoomService {
	return &RoomService{rooms: rooms, seats: seats, showtimes: showtimes}
}

// CreateRoomInput carries the fields for room creation.
type CreateRoomInput struct {
	Name        string
	RowCount    uint32
	SeatsPerRow uint32
	RoomType    string
}

// CreateRoom creates a room together with its full seat grid in one
// transaction: RowCount lettered rows of SeatsPerRow seats, all
// AVAILABLE. Capacity is always RowCount*SeatsPerRow at creation.
func (s *RoomService) CreateRoom(ctx context.Context, in CreateRoomInput) (*model.Room, error) {
	if in.Name == "" || in.RowCount == 0 || in.SeatsPerRow == 0 {
		return nil, repository.ErrInvalidArgument
	}
	roomType := in.RoomType
	if roomType == "" {
		roomType = "2D"
	}
	room := &model.Room{
		Name:        in.Name,
		RowCount:    in.RowCount,
		SeatsPerRow: in.SeatsPerRow,
		Capacity:    in.RowCount * in.SeatsPerRow,
		RoomType:    roomType,
		IsActive:    true,
	}

	tx, err := s.rooms.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.rooms.CreateTx(ctx, tx, room); err != nil {
		return nil, err
	}
	if err := s.seats.CreateBatchTx(ctx, tx, room.ID, in.RowCount, in.SeatsPerRow); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return room, nil
}

// GetRoom returns one room by ID.
func (s *RoomService) GetRoom(ctx context.Context, id uint64) (*model.Room, error) {
	return s.rooms.GetByID(ctx, id)
}

// ListRooms returns all rooms.
func (s *RoomService) ListRooms(ctx context.Context) ([]model.Room, error) {
	return s.rooms.List(ctx)
}

// DeleteRoom removes a room and its seats. Refused with ErrConflict
// while any future showtime is scheduled in the room.
func (s *RoomService) DeleteRoom(ctx context.Context, id uint64) error {
	if _, err := s.rooms.GetByID(ctx, id); err != nil {
		return err
	}
	busy, err := s.showtimes.HasFutureByRoom(ctx, id)
	if err != nil {
		return err
	}
	if busy {
		return repository.ErrConflict
	}
	return s.rooms.Delete(ctx, id)
}

// ReconfigureRoom wipes the room's seats and regenerates the grid with
// the new dimensions, atomically. Refused with ErrConflict while any
// future showtime is scheduled, because regeneration renumbers seats.
func (s *RoomService) ReconfigureRoom(ctx context.Context, roomID uint64, rowCount, seatsPerRow uint32) (*model.Room, error) {
	if rowCount == 0 || seatsPerRow == 0 {
		return nil, repository.ErrInvalidArgument
	}
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	busy, err := s.showtimes.HasFutureByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, repository.ErrConflict
	}

	tx, err := s.rooms.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.seats.DeleteByRoomTx(ctx, tx, roomID); err != nil {
		return nil, err
	}
	if err := s.rooms.UpdateLayoutTx(ctx, tx, roomID, rowCount, seatsPerRow); err != nil {
		return nil, err
	}
	if err := s.seats.CreateBatchTx(ctx, tx, roomID, rowCount, seatsPerRow); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return s.rooms.GetByID(ctx, roomID)
}

// AddRow appends the next lettered row to the room and syncs the
// stored dimensions. Additive, so it is allowed even with future
// showtimes scheduled.
func (s *RoomService) AddRow(ctx context.Context, roomID uint64, seatsPerRow uint32) (*model.Room, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if seatsPerRow == 0 {
		seatsPerRow = room.SeatsPerRow
	}
	label := repository.RowLabelFromIndex(int(room.RowCount))

	tx, err := s.rooms.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.seats.AddRowTx(ctx, tx, roomID, label, seatsPerRow); err != nil {
		return nil, err
	}
	if err := s.rooms.SyncLayoutTx(ctx, tx, roomID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return s.rooms.GetByID(ctx, roomID)
}

// DeleteRow removes one lettered row from the room and syncs the
// stored dimensions. Refused with ErrConflict while any future
// showtime is scheduled in the room.
func (s *RoomService) DeleteRow(ctx context.Context, roomID uint64, label string) (*model.Room, error) {
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	if label == "" {
		return nil, repository.ErrInvalidArgument
	}
	busy, err := s.showtimes.HasFutureByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, repository.ErrConflict
	}

	tx, err := s.rooms.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.seats.DeleteRowTx(ctx, tx, roomID, label); err != nil {
		return nil, err
	}
	if err := s.rooms.SyncLayoutTx(ctx, tx, roomID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return s.rooms.GetByID(ctx, roomID)
}

// ListSeats returns the seats of a room. A room without any seats is
// reported as ErrSeatNotFound rather than an empty list.
func (s *RoomService) ListSeats(ctx context.Context, roomID uint64) ([]model.Seat, error) {
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	seats, err := s.seats.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		return nil, repository.ErrSeatNotFound
	}
	return seats, nil
}

// GetSeat returns one seat by ID.
func (s *RoomService) GetSeat(ctx context.Context, seatID uint64) (*model.Seat, error) {
	return s.seats.GetByID(ctx, seatID)
}

// SetSeatConfigState flips the configuration axis of one seat. Refused
// with ErrConflict while the seat is held or sold for a future
// showtime, so administration cannot pull a seat out from under a
// pending sale.
func (s *RoomService) SetSeatConfigState(ctx context.Context, seatID uint64, state occupancy.ConfigState) (*model.Seat, error) {
	if state != occupancy.ConfigAvailable && state != occupancy.ConfigDisabled {
		return nil, repository.ErrInvalidArgument
	}
	if _, err := s.seats.GetByID(ctx, seatID); err != nil {
		return nil, err
	}
	busy, err := s.showtimes.SeatHasFutureCommitments(ctx, seatID)
	if err != nil {
		return nil, err
	}
	if busy {
		return nil, repository.ErrConflict
	}
	if err := s.seats.SetConfigState(ctx, seatID, state); err != nil {
		return nil, err
	}
	return s.seats.GetByID(ctx, seatID)
}
