// Package service implements the business flows of the reservation
// core on top of the repositories. Every mutating flow runs inside one
// database transaction that reaps expired holds, locks the seat rows
// FOR UPDATE in ascending id order and applies the occupancy state
// machine before committing.
package service

import (
	"context"
	"database/sql"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/occupancy"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// Actor identifies the authenticated caller of a service operation.
// Role checks beyond admin/non-admin happen in the middleware layer.
type Actor struct {
	ID    uint64
	Admin bool
}

// ReservationService owns the hold/purchase/cancel flows and the
// availability check. Events are published best-effort after commit; a
// broker outage never fails a sale.
type ReservationService struct {
	seats     *repository.SeatRepo
	showtimes *repository.ShowtimeRepo
	holds     *repository.HoldRepo
	tickets   *repository.TicketRepo
	users     *repository.UserRepo
	publisher *queue.Publisher
	holdTTL   time.Duration
}

// NewReservationService wires the reservation flows. publisher may be
// nil to disable event emission. holdTTL bounds how long a hold blocks
// a seat before lapsing.
func NewReservationService(
	seats *repository.SeatRepo,
	showtimes *repository.ShowtimeRepo,
	holds *repository.HoldRepo,
	tickets *repository.TicketRepo,
	users *repository.UserRepo,
	publisher *queue.Publisher,
	holdTTL time.Duration,
) *ReservationService {
	return &ReservationService{
		seats:     seats,
		showtimes: showtimes,
		holds:     holds,
		tickets:   tickets,
		users:     users,
		publisher: publisher,
		holdTTL:   holdTTL,
	}
}

// SeatAvailability is one seat's resolved occupancy for a showtime.
type SeatAvailability struct {
	SeatID   uint64          `json:"seat_id"`
	Label    string          `json:"label"`
	State    occupancy.State `json:"state"`
	Sellable bool            `json:"sellable"`
}

// CheckAvailability resolves the occupancy of the given seats for one
// showtime. Read-only; tolerates the slight staleness of running
// outside a transaction.
func (s *ReservationService) CheckAvailability(ctx context.Context, showtimeID uint64, seatIDs []uint64) ([]SeatAvailability, error) {
	if len(seatIDs) == 0 {
		return nil, repository.ErrInvalidArgument
	}
	st, err := s.scheduledShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	seats, err := s.seats.ListByIDs(ctx, seatIDs)
	if err != nil {
		return nil, err
	}
	if len(seats) != len(dedupe(seatIDs)) {
		return nil, repository.ErrSeatNotFound
	}
	for _, seat := range seats {
		if seat.RoomID != st.RoomID {
			return nil, repository.ErrInvalidArgument
		}
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
	result := make([]SeatAvailability, 0, len(seats))
	for _, seat := range seats {
		state := occupancy.Resolve(seat.ConfigState, sold[seat.ID], held[seat.ID])
		result = append(result, SeatAvailability{
			SeatID:   seat.ID,
			Label:    seat.Label(),
			State:    state,
			Sellable: occupancy.Sellable(state),
		})
	}
	return result, nil
}

// Reserve places holds on all requested seats or none of them. A seat
// already held by the same actor is re-held with a fresh expiry; any
// disabled, foreign-held or sold seat fails the whole batch. Returns
// the created holds, all sharing one expiry.
func (s *ReservationService) Reserve(ctx context.Context, actor Actor, showtimeID uint64, seatIDs []uint64) ([]model.SeatHold, error) {
	ids := dedupe(seatIDs)
	if len(ids) == 0 {
		return nil, repository.ErrInvalidArgument
	}
	st, err := s.scheduledShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}

	tx, err := s.seats.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	seats, holds, tickets, err := s.lockAndLoad(ctx, tx, st, ids)
	if err != nil {
		return nil, err
	}
	for _, seat := range seats {
		cur := resolveSeat(seat, holds, tickets)
		h, ok := holds[seat.ID]
		if err := occupancy.CheckHold(seat.ConfigState, cur, ok && h.HolderID == actor.ID); err != nil {
			return nil, err
		}
	}

	// Re-holds by the same actor are replaced so the expiry refreshes.
	// Only the actor's own rows are cleared: a foreign hold committed
	// after this transaction's snapshot survives and fails the insert
	// below on the unique key.
	if _, err := s.holds.DeleteByHolderTx(ctx, tx, showtimeID, actor.ID, ids); err != nil {
		return nil, err
	}
	created, err := repository.GenerateHolds(actor.ID, showtimeID, ids, time.Now().UTC().Add(s.holdTTL))
	if err != nil {
		return nil, err
	}
	if err := s.holds.CreateBatchTx(ctx, tx, created); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return created, nil
}

// Release frees the given seats: holds are dropped and sold seats have
// their tickets cancelled. A seat that is already free fails the whole
// batch as an input error. Dropping a foreign hold and cancelling a
// ticket sold by someone else both require admin rights (the ticket's
// seller may also cancel it).
func (s *ReservationService) Release(ctx context.Context, actor Actor, showtimeID uint64, seatIDs []uint64) error {
	ids := dedupe(seatIDs)
	if len(ids) == 0 {
		return repository.ErrInvalidArgument
	}
	st, err := s.scheduledShowtime(ctx, showtimeID)
	if err != nil {
		return err
	}

	tx, err := s.seats.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	seats, holds, tickets, err := s.lockAndLoad(ctx, tx, st, ids)
	if err != nil {
		return err
	}
	var cancelled []model.Ticket
	for _, seat := range seats {
		cur := resolveSeat(seat, holds, tickets)
		if err := occupancy.CheckRelease(cur); err != nil {
			return err
		}
		switch cur {
		case occupancy.Held:
			if h := holds[seat.ID]; h.HolderID != actor.ID && !actor.Admin {
				return repository.ErrForbidden
			}
		case occupancy.Sold:
			t := tickets[seat.ID]
			if t.SellerID != actor.ID && !actor.Admin {
				return repository.ErrForbidden
			}
			cancelled = append(cancelled, t)
		}
	}
	if _, err := s.holds.DeleteBySeatsTx(ctx, tx, showtimeID, ids); err != nil {
		return err
	}
	for _, t := range cancelled {
		if err := s.tickets.CancelTx(ctx, tx, t.ID); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	for _, t := range cancelled {
		s.emitCancelled(ctx, t, actor.ID, "seat released")
	}
	return nil
}

// Purchase sells one seat for a showtime to the given buyer and
// returns the issued ticket. A free seat may be bought directly; a
// held seat only when the hold belongs to the buyer or to the selling
// actor. The price charged is always the showtime's base price; a
// non-zero priceCents is a client confirmation and must match it.
func (s *ReservationService) Purchase(ctx context.Context, actor Actor, showtimeID, seatID, buyerID uint64, priceCents uint32) (*model.Ticket, error) {
	st, err := s.scheduledShowtime(ctx, showtimeID)
	if err != nil {
		return nil, err
	}
	if priceCents != 0 && priceCents != st.BasePriceCents {
		return nil, repository.ErrInvalidArgument
	}
	if _, err := s.users.GetByID(ctx, buyerID); err != nil {
		return nil, err
	}

	tx, err := s.seats.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	seats, holds, tickets, err := s.lockAndLoad(ctx, tx, st, []uint64{seatID})
	if err != nil {
		return nil, err
	}
	seat := seats[0]
	cur := resolveSeat(seat, holds, tickets)
	h, held := holds[seat.ID]
	heldByBuyer := held && (h.HolderID == buyerID || h.HolderID == actor.ID)
	if err := occupancy.CheckPurchase(seat.ConfigState, cur, heldByBuyer); err != nil {
		return nil, err
	}

	// Only the verified hold is consumed, never whatever row happens
	// to be on the seat.
	if held {
		if err := s.holds.DeleteTx(ctx, tx, h.ID); err != nil {
			return nil, err
		}
	}
	ticket := &model.Ticket{
		ShowtimeID: showtimeID,
		SeatID:     seatID,
		BuyerID:    buyerID,
		SellerID:   actor.ID,
		PriceCents: st.BasePriceCents,
		QRPayload:  uuid.NewString(),
	}
	if err := s.tickets.CreateTx(ctx, tx, ticket); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.emitIssued(ctx, ticket)
	return ticket, nil
}

// Cancel voids one ticket, freeing its seat for resale. Only the
// selling user or an admin may cancel.
func (s *ReservationService) Cancel(ctx context.Context, actor Actor, ticketID uint64) error {
	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return err
	}
	if t.SellerID != actor.ID && !actor.Admin {
		return repository.ErrForbidden
	}

	tx, err := s.tickets.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.tickets.CancelTx(ctx, tx, ticketID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	s.emitCancelled(ctx, *t, actor.ID, "ticket cancelled")
	return nil
}

// ListTickets returns the caller's purchases. Admins may instead list
// every ticket of one showtime by passing a non-zero showtimeID.
func (s *ReservationService) ListTickets(ctx context.Context, actor Actor, showtimeID uint64) ([]model.Ticket, error) {
	if showtimeID != 0 {
		if !actor.Admin {
			return nil, repository.ErrForbidden
		}
		return s.tickets.ListByShowtime(ctx, showtimeID)
	}
	return s.tickets.ListByBuyer(ctx, actor.ID)
}

// PrintData loads the printable view of a ticket. Only the buyer, the
// seller or an admin may view it.
func (s *ReservationService) PrintData(ctx context.Context, actor Actor, ticketID uint64) (*repository.PrintData, error) {
	t, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.BuyerID != actor.ID && t.SellerID != actor.ID && !actor.Admin {
		return nil, repository.ErrForbidden
	}
	return s.tickets.GetPrintData(ctx, ticketID)
}

// scheduledShowtime loads a showtime and hides cancelled ones behind
// ErrShowtimeNotFound.
func (s *ReservationService) scheduledShowtime(ctx context.Context, id uint64) (*model.Showtime, error) {
	st, err := s.showtimes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st.Status != model.ShowtimeScheduled {
		return nil, repository.ErrShowtimeNotFound
	}
	return st, nil
}

// lockAndLoad is the shared front half of every mutating flow: reap
// expired holds, lock the seat rows FOR UPDATE in ascending id order,
// verify the seats exist and belong to the showtime's room, then load
// the live holds and tickets keyed by seat. The hold and ticket reads
// are locking reads; rows committed by a flow that held the seat locks
// first are visible here, not hidden by the transaction snapshot.
func (s *ReservationService) lockAndLoad(ctx context.Context, tx *sql.Tx, st *model.Showtime, seatIDs []uint64) (
	[]model.Seat, map[uint64]model.SeatHold, map[uint64]model.Ticket, error,
) {
	if _, err := s.holds.ExpireTx(ctx, tx, st.ID); err != nil {
		return nil, nil, nil, err
	}
	seats, err := s.seats.ListByIDsForUpdateTx(ctx, tx, seatIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(seats) != len(seatIDs) {
		return nil, nil, nil, repository.ErrSeatNotFound
	}
	for _, seat := range seats {
		if seat.RoomID != st.RoomID {
			return nil, nil, nil, repository.ErrInvalidArgument
		}
	}
	holdRows, err := s.holds.ListBySeatsTx(ctx, tx, st.ID, seatIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	holds := make(map[uint64]model.SeatHold, len(holdRows))
	for _, h := range holdRows {
		holds[h.SeatID] = h
	}
	ticketRows, err := s.tickets.ListLiveBySeatsTx(ctx, tx, st.ID, seatIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	tickets := make(map[uint64]model.Ticket, len(ticketRows))
	for _, t := range ticketRows {
		tickets[t.SeatID] = t
	}
	return seats, holds, tickets, nil
}

func resolveSeat(seat model.Seat, holds map[uint64]model.SeatHold, tickets map[uint64]model.Ticket) occupancy.State {
	_, held := holds[seat.ID]
	_, sold := tickets[seat.ID]
	return occupancy.Resolve(seat.ConfigState, sold, held)
}

func (s *ReservationService) emitIssued(ctx context.Context, t *model.Ticket) {
	if s.publisher == nil {
		return
	}
	pd, err := s.tickets.GetPrintData(ctx, t.ID)
	if err != nil {
		log.Printf("events: load print data for ticket %d failed: %v", t.ID, err)
		return
	}
	ev := queue.TicketIssuedEvent{
		TicketID:   t.ID,
		ShowtimeID: t.ShowtimeID,
		BuyerID:    t.BuyerID,
		SellerID:   t.SellerID,
		MovieTitle: pd.MovieTitle,
		RoomName:   pd.RoomName,
		SeatLabel:  pd.RowLabel + strconv.FormatUint(uint64(pd.SeatNumber), 10),
		StartsAt:   pd.StartsAt.UTC().Format(time.RFC3339),
		PriceCents: t.PriceCents,
		IssuedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishTicketIssued(ctx, ev); err != nil {
		log.Printf("events: publish ticket.issued for ticket %d failed: %v", t.ID, err)
	}
}

func (s *ReservationService) emitCancelled(ctx context.Context, t model.Ticket, cancelledBy uint64, reason string) {
	if s.publisher == nil {
		return
	}
	label := ""
	if seat, err := s.seats.GetByID(ctx, t.SeatID); err == nil {
		label = seat.Label()
	}
	ev := queue.TicketCancelledEvent{
		TicketID:    t.ID,
		ShowtimeID:  t.ShowtimeID,
		BuyerID:     t.BuyerID,
		CancelledBy: cancelledBy,
		SeatLabel:   label,
		Reason:      reason,
		CancelledAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishTicketCancelled(ctx, ev); err != nil {
		log.Printf("events: publish ticket.cancelled for ticket %d failed: %v", t.ID, err)
	}
}

func dedupe(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
