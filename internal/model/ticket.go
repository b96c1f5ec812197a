package model

import "time"

// Ticket state values. A cancelled ticket stays in the table so sales
// history survives; only PURCHASED and USED tickets occupy a seat.
const (
	TicketPurchased = "PURCHASED"
	TicketCancelled = "CANCELLED"
	TicketUsed      = "USED"
)

// Ticket is the durable record of a completed sale binding one seat to
// one showtime and one buyer. At most one non-cancelled ticket may
// exist per (seat, showtime); the database enforces this with a
// filtered unique key.
//
// Fields:
//  ID          – primary key identifier.
//  ShowtimeID  – showtime the ticket admits to.
//  SeatID      – seat sold.
//  BuyerID     – user the ticket was sold to.
//  SellerID    – user who performed the sale (box office or self).
//  PriceCents  – price paid, in cents.
//  Status      – PURCHASED, CANCELLED or USED.
//  QRPayload   – opaque string encoded into the printable QR code.
type Ticket struct {
	ID         uint64    // tickets.id
	ShowtimeID uint64    // tickets.showtime_id
	SeatID     uint64    // tickets.seat_id
	BuyerID    uint64    // tickets.buyer_id
	SellerID   uint64    // tickets.seller_id
	PriceCents uint32    // tickets.price_cents
	Status     string    // tickets.status
	QRPayload  string    // tickets.qr_payload
	CreatedAt  time.Time // tickets.created_at
	UpdatedAt  time.Time // tickets.updated_at
}

// Live reports whether the ticket currently occupies its seat.
func (t Ticket) Live() bool { return t.Status != TicketCancelled }
