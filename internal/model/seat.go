package model

import (
	"strconv"
	"time"

	"github.com/iliyamo/cinema-booking/internal/occupancy"
)

// Seat describes a physical seat in a room, uniquely identified by
// (room, row label, seat number). It carries only the configuration
// axis of seat state; whether the seat is free, held or sold for a
// particular showtime is derived from holds and tickets, never stored
// here.
//
// Fields:
//  ID          – primary key identifier.
//  RoomID      – room to which this seat belongs.
//  RowLabel    – letter or string designating the row (A, B, .., AA).
//  SeatNumber  – 1-based position within the row.
//  ConfigState – AVAILABLE or DISABLED, set by room administration.
type Seat struct {
	ID          uint64                // seats.id
	RoomID      uint64                // seats.room_id
	RowLabel    string                // seats.row_label
	SeatNumber  uint32                // seats.seat_number
	ConfigState occupancy.ConfigState // seats.config_state
	CreatedAt   time.Time             // seats.created_at
	UpdatedAt   time.Time             // seats.updated_at
}

// Label renders the human-readable seat position, e.g. "A3".
func (s Seat) Label() string {
	return s.RowLabel + strconv.FormatUint(uint64(s.SeatNumber), 10)
}
