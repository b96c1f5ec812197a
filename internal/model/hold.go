package model

import "time"

// SeatHold is a transient reservation of one seat for one showtime,
// pending purchase confirmation. Holds expire at ExpiresAt; expired
// rows are reaped lazily inside mutating transactions and by the
// background sweeper, so an expired hold never blocks a sale.
//
// Fields:
//  ID         – primary key identifier.
//  ShowtimeID – showtime the seat is held for.
//  SeatID     – seat being held.
//  HolderID   – user who placed the hold.
//  HoldToken  – opaque token returned to the client for correlation.
//  ExpiresAt  – when the hold lapses, in UTC.
type SeatHold struct {
	ID         uint64    // seat_holds.id
	ShowtimeID uint64    // seat_holds.showtime_id
	SeatID     uint64    // seat_holds.seat_id
	HolderID   uint64    // seat_holds.holder_id
	HoldToken  string    // seat_holds.hold_token
	ExpiresAt  time.Time // seat_holds.expires_at
	CreatedAt  time.Time // seat_holds.created_at
}
