// Package queue defines message payloads exchanged over the message
// broker plus the publisher and background consumer for them.
package queue

// TicketIssuedEvent is published when a purchase completes. It carries
// enough for downstream consumers to log or notify without querying
// the primary database.
type TicketIssuedEvent struct {
	TicketID   uint64 `json:"ticket_id"`
	ShowtimeID uint64 `json:"showtime_id"`
	BuyerID    uint64 `json:"buyer_id"`
	SellerID   uint64 `json:"seller_id"`
	MovieTitle string `json:"movie_title"`
	RoomName   string `json:"room_name"`
	SeatLabel  string `json:"seat_label"`
	StartsAt   string `json:"starts_at"`
	PriceCents uint32 `json:"price_cents"`
	IssuedAt   string `json:"issued_at"`
}

// TicketCancelledEvent is published when a live ticket is cancelled,
// either individually or as part of a showtime cancellation.
type TicketCancelledEvent struct {
	TicketID    uint64 `json:"ticket_id"`
	ShowtimeID  uint64 `json:"showtime_id"`
	BuyerID     uint64 `json:"buyer_id"`
	CancelledBy uint64 `json:"cancelled_by"`
	SeatLabel   string `json:"seat_label"`
	Reason      string `json:"reason"`
	CancelledAt string `json:"cancelled_at"`
}
