package service

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/queue"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

// ShowtimeService owns the showtime registry: scheduling with the
// conflict-window check, updates and soft cancellation.
type ShowtimeService struct {
	showtimes *repository.ShowtimeRepo
	rooms     *repository.RoomRepo
	movies    *repository.MovieRepo
	holds     *repository.HoldRepo
	tickets   *repository.TicketRepo
	publisher *queue.Publisher
}

// NewShowtimeService wires the showtime registry flows. publisher may
// be nil to disable event emission on cancellation.
func NewShowtimeService(
	showtimes *repository.ShowtimeRepo,
	rooms *repository.RoomRepo,
	movies *repository.MovieRepo,
	holds *repository.HoldRepo,
	tickets *repository.TicketRepo,
	publisher *queue.Publisher,
) *ShowtimeService {
	return &ShowtimeService{
		showtimes: showtimes,
		rooms:     rooms,
		movies:    movies,
		holds:     holds,
		tickets:   tickets,
		publisher: publisher,
	}
}

// CreateShowtimeInput carries the fields for scheduling a showtime.
type CreateShowtimeInput struct {
	MovieID        uint64
	RoomID         uint64
	StartsAt       time.Time
	BasePriceCents uint32
}

// CreateShowtime schedules a screening. The start must lie in the
// future, the price must be positive, movie and room must exist, and
// no other showtime of the same room may start within the conflict
// window around the requested time (bounds inclusive).
func (s *ShowtimeService) CreateShowtime(ctx context.Context, in CreateShowtimeInput) (*model.Showtime, error) {
	if in.BasePriceCents == 0 || in.StartsAt.IsZero() || !in.StartsAt.After(time.Now()) {
		return nil, repository.ErrInvalidArgument
	}
	if _, err := s.movies.GetByID(ctx, in.MovieID); err != nil {
		return nil, err
	}
	if _, err := s.rooms.GetByID(ctx, in.RoomID); err != nil {
		return nil, err
	}
	conflicts, err := s.showtimes.FindInWindow(ctx, in.RoomID, in.StartsAt, 0)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, repository.ErrConflict
	}
	st := &model.Showtime{
		MovieID:        in.MovieID,
		RoomID:         in.RoomID,
		StartsAt:       in.StartsAt.UTC(),
		BasePriceCents: in.BasePriceCents,
	}
	if err := s.showtimes.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// GetShowtime returns one showtime by ID, cancelled ones included so
// ticket history stays inspectable.
func (s *ShowtimeService) GetShowtime(ctx context.Context, id uint64) (*model.Showtime, error) {
	return s.showtimes.GetByID(ctx, id)
}

// ListShowtimes returns all showtimes, by movie when movieID is
// non-zero.
func (s *ShowtimeService) ListShowtimes(ctx context.Context, movieID uint64) ([]model.Showtime, error) {
	if movieID != 0 {
		return s.showtimes.ListByMovie(ctx, movieID)
	}
	return s.showtimes.List(ctx)
}

// UpdateShowtime applies a typed patch. Room and time changes re-run
// the conflict-window check excluding the showtime itself; a price
// change must stay positive. Cancelled showtimes cannot be updated.
func (s *ShowtimeService) UpdateShowtime(ctx context.Context, id uint64, p model.ShowtimePatch) (*model.Showtime, error) {
	st, err := s.showtimes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if st.Status != model.ShowtimeScheduled {
		return nil, repository.ErrConflict
	}
	if p.BasePriceCents != nil && *p.BasePriceCents == 0 {
		return nil, repository.ErrInvalidArgument
	}
	if p.MovieID != nil {
		if _, err := s.movies.GetByID(ctx, *p.MovieID); err != nil {
			return nil, err
		}
	}
	roomID := st.RoomID
	if p.RoomID != nil {
		if _, err := s.rooms.GetByID(ctx, *p.RoomID); err != nil {
			return nil, err
		}
		roomID = *p.RoomID
	}
	startsAt := st.StartsAt
	if p.StartsAt != nil {
		if !p.StartsAt.After(time.Now()) {
			return nil, repository.ErrInvalidArgument
		}
		startsAt = p.StartsAt.UTC()
	}
	if p.RoomID != nil || p.StartsAt != nil {
		conflicts, err := s.showtimes.FindInWindow(ctx, roomID, startsAt, id)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			return nil, repository.ErrConflict
		}
	}
	if err := s.showtimes.Update(ctx, id, p); err != nil {
		return nil, err
	}
	return s.showtimes.GetByID(ctx, id)
}

// CancelShowtime soft-deletes a showtime: its live tickets are
// cancelled, its holds removed and its scheduling slot freed, all in
// one transaction. Sales history keeps the rows. Cancellation events
// for the voided tickets are published best-effort after commit.
func (s *ShowtimeService) CancelShowtime(ctx context.Context, actor Actor, id uint64) error {
	live, err := s.tickets.ListLiveByShowtime(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.showtimes.DB().BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.showtimes.CancelTx(ctx, tx, id); err != nil {
		return err
	}
	if _, err := s.tickets.CancelByShowtimeTx(ctx, tx, id); err != nil {
		return err
	}
	if err := s.holds.DeleteByShowtimeTx(ctx, tx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	if s.publisher != nil {
		for _, t := range live {
			ev := queue.TicketCancelledEvent{
				TicketID:    t.ID,
				ShowtimeID:  t.ShowtimeID,
				BuyerID:     t.BuyerID,
				CancelledBy: actor.ID,
				Reason:      "showtime cancelled",
				CancelledAt: time.Now().UTC().Format(time.RFC3339),
			}
			if err := s.publisher.PublishTicketCancelled(ctx, ev); err != nil {
				log.Printf("events: publish ticket.cancelled for ticket %d failed: %v", t.ID, err)
			}
		}
	}
	return nil
}

// SlotValidation is the result of probing a room/time slot.
type SlotValidation struct {
	Available bool             `json:"available"`
	Conflicts []model.Showtime `json:"conflicts"`
}

// ValidateSlot reports whether a showtime could be scheduled in the
// room at the given time, listing the showtimes that block it.
// excludeID skips one showtime, for probing a reschedule; pass 0
// otherwise.
func (s *ShowtimeService) ValidateSlot(ctx context.Context, roomID uint64, at time.Time, excludeID uint64) (*SlotValidation, error) {
	if at.IsZero() {
		return nil, repository.ErrInvalidArgument
	}
	if _, err := s.rooms.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	conflicts, err := s.showtimes.FindInWindow(ctx, roomID, at, excludeID)
	if err != nil {
		return nil, err
	}
	return &SlotValidation{Available: len(conflicts) == 0, Conflicts: conflicts}, nil
}
