package service

import (
	"context"
	"sort"

	"github.com/iliyamo/cinema-booking/internal/occupancy"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// SeatMapService projects seat inventory into the row-grouped views
// served to clients: the per-showtime occupancy map and the bare room
// layout.
type SeatMapService struct {
	rooms     *repository.RoomRepo
	seats     *repository.SeatRepo
	showtimes *repository.ShowtimeRepo
	holds     *repository.HoldRepo
	tickets   *repository.TicketRepo
}

// NewSeatMapService wires the seat map projections.
func NewSeatMapService(
	rooms *repository.RoomRepo,
	seats *repository.SeatRepo,
	showtimes *repository.ShowtimeRepo,
	holds *repository.HoldRepo,
	tickets *repository.TicketRepo,
) *SeatMapService {
	return &SeatMapService{rooms: rooms, seats: seats, showtimes: showtimes, holds: holds, tickets: tickets}
}

// MapSeat is one seat cell in a seat map.
type MapSeat struct {
	SeatID     uint64          `json:"seat_id"`
	Label      string          `json:"label"`
	SeatNumber uint32          `json:"seat_number"`
	State      occupancy.State `json:"state"`
	Sellable   bool            `json:"sellable"`
}

// MapRow is one lettered row of a seat map, seats sorted by number.
type MapRow struct {
	RowLabel string    `json:"row_label"`
	Seats    []MapSeat `json:"seats"`
}

// SeatMap is the full availability view of one showtime.
type SeatMap struct {
	ShowtimeID uint64            `json:"showtime_id,omitempty"`
	RoomID     uint64            `json:"room_id"`
	RoomName   string            `json:"room_name"`
	Rows       []MapRow          `json:"rows"`
	Legend     map[string]string `json:"legend"`
}

// legend maps each occupancy state to a short description for clients
// rendering the map.
func legend() map[string]string {
	return map[string]string{
		string(occupancy.Free):     "free for holding or purchase",
		string(occupancy.Held):     "temporarily held pending purchase",
		string(occupancy.Sold):     "sold, a live ticket exists",
		string(occupancy.Disabled): "disabled by administration",
	}
}

// ShowtimeSeatMap resolves the occupancy of every seat in the
// showtime's room, grouped by row and sorted by seat number.
func (s *SeatMapService) ShowtimeSeatMap(ctx context.Context, showtimeID uint64) (*SeatMap, error) {
	st, err := s.showtimes.GetByID(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	room, err := s.rooms.GetByID(ctx, st.RoomID)
	if err != nil {
		return nil, err
	}
	seats, err := s.seats.ListByRoom(ctx, st.RoomID)
	if err != nil {
		return nil, err
	}
	holds, err := s.holds.ListActiveByShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListLiveByShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	held := make(map[uint64]bool, len(holds))
	for _, h := range holds {
		held[h.SeatID] = true
	}
	sold := make(map[uint64]bool, len(tickets))
	for _, t := range tickets {
		sold[t.SeatID] = true
	}

	sm := &SeatMap{ShowtimeID: showtimeID, RoomID: room.ID, RoomName: room.Name, Legend: legend()}
	byRow := make(map[string]int)
	for _, seat := range seats {
		idx, ok := byRow[seat.RowLabel]
		if !ok {
			idx = len(sm.Rows)
			byRow[seat.RowLabel] = idx
			sm.Rows = append(sm.Rows, MapRow{RowLabel: seat.RowLabel})
		}
		state := occupancy.Resolve(seat.ConfigState, sold[seat.ID], held[seat.ID])
		sm.Rows[idx].Seats = append(sm.Rows[idx].Seats, MapSeat{
			SeatID:     seat.ID,
			Label:      seat.Label(),
			SeatNumber: seat.SeatNumber,
			State:      state,
			Sellable:   occupancy.Sellable(state),
		})
	}
	sortSeatMap(sm)
	return sm, nil
}

// RoomLayout returns the configuration view of a room without any
// showtime: seats are FREE or DISABLED purely from their config state.
func (s *SeatMapService) RoomLayout(ctx context.Context, roomID uint64) (*SeatMap, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	seats, err := s.seats.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	sm := &SeatMap{RoomID: room.ID, RoomName: room.Name, Legend: legend()}
	byRow := make(map[string]int)
	for _, seat := range seats {
		idx, ok := byRow[seat.RowLabel]
		if !ok {
			idx = len(sm.Rows)
			byRow[seat.RowLabel] = idx
			sm.Rows = append(sm.Rows, MapRow{RowLabel: seat.RowLabel})
		}
		state := occupancy.Resolve(seat.ConfigState, false, false)
		sm.Rows[idx].Seats = append(sm.Rows[idx].Seats, MapSeat{
			SeatID:     seat.ID,
			Label:      seat.Label(),
			SeatNumber: seat.SeatNumber,
			State:      state,
			Sellable:   occupancy.Sellable(state),
		})
	}
	sortSeatMap(sm)
	return sm, nil
}

// Row labels sort lexicographically except that shorter labels come
// first, so Z precedes AA.
func sortSeatMap(sm *SeatMap) {
	sort.Slice(sm.Rows, func(i, j int) bool {
		a, b := sm.Rows[i].RowLabel, sm.Rows[j].RowLabel
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		return a < b
	})
	for i := range sm.Rows {
		row := sm.Rows[i].Seats
		sort.Slice(row, func(a, b int) bool { return row[a].SeatNumber < row[b].SeatNumber })
	}
}
