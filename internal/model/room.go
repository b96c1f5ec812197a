package model

import "time"

// Room represents a screening room. Its seat layout is a grid of
// row_count lettered rows with seats_per_row seats each; capacity is
// always row_count * seats_per_row and is validated at creation.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – unique room name (e.g. "Sala 1").
//  RowCount    – number of lettered rows.
//  SeatsPerRow – seats in each row.
//  Capacity    – total seats; equals RowCount * SeatsPerRow.
//  RoomType    – projection type, e.g. "2D" or "3D".
//  IsActive    – whether the room is open for scheduling.
type Room struct {
	ID          uint64    // rooms.id
	Name        string    // rooms.name
	RowCount    uint32    // rooms.row_count
	SeatsPerRow uint32    // rooms.seats_per_row
	Capacity    uint32    // rooms.capacity
	RoomType    string    // rooms.room_type
	IsActive    bool      // rooms.is_active
	CreatedAt   time.Time // rooms.created_at
	UpdatedAt   time.Time // rooms.updated_at
}
