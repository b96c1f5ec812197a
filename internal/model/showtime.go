package model

import "time"

// Showtime status values. A cancelled showtime keeps its row so ticket
// history stays intact, but no longer blocks the scheduling slot.
const (
	ShowtimeScheduled = "SCHEDULED"
	ShowtimeCancelled = "CANCELLED"
)

// Showtime is one scheduled screening of a movie in a room. The pair
// (room, starts_at) is unique among scheduled showtimes and the registry
// additionally refuses any new showtime within the scheduling buffer
// window of an existing one in the same room.
//
// Fields:
//  ID             – primary key identifier.
//  MovieID        – movie being screened (external collaborator).
//  RoomID         – room hosting the screening.
//  StartsAt       – screening start, stored in UTC.
//  BasePriceCents – flat per-showtime ticket price; must be positive.
//  Status         – SCHEDULED or CANCELLED (soft delete).
type Showtime struct {
	ID             uint64    // showtimes.id
	MovieID        uint64    // showtimes.movie_id
	RoomID         uint64    // showtimes.room_id
	StartsAt       time.Time // showtimes.starts_at
	BasePriceCents uint32    // showtimes.base_price_cents
	Status         string    // showtimes.status
	CreatedAt      time.Time // showtimes.created_at
	UpdatedAt      time.Time // showtimes.updated_at
}

// ShowtimePatch enumerates the fields a showtime update may change.
// Nil fields are left untouched. Replaces the attribute-bag updates of
// earlier iterations with explicit semantics per field.
type ShowtimePatch struct {
	MovieID        *uint64
	RoomID         *uint64
	StartsAt       *time.Time
	BasePriceCents *uint32
}
