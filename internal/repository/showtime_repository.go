package repository // repository defines data access for showtimes

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// ConflictWindow is the scheduling buffer around an existing showtime.
// A new showtime in the same room is refused when its start falls within
// this window (inclusive) of an existing one.
const ConflictWindow = 2 * time.Hour

// ShowtimeRepo manages persistence for showtimes.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo constructs a ShowtimeRepo with the given DB handle.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo {
	return &ShowtimeRepo{db: db}
}

// DB exposes the underlying sql.DB for cross-repository transactions.
func (r *ShowtimeRepo) DB() *sql.DB { return r.db }

const showtimeColumns = `id, movie_id, room_id, starts_at, base_price_cents, status, created_at, updated_at`

func scanShowtime(row interface{ Scan(...any) error }, st *model.Showtime) error {
	return row.Scan(&st.ID, &st.MovieID, &st.RoomID, &st.StartsAt, &st.BasePriceCents, &st.Status, &st.CreatedAt, &st.UpdatedAt)
}

// Create inserts a showtime and populates its generated ID and
// timestamps. The unique key on (room_id, starts_at) backstops the
// window check; losing that race maps to ErrConflict.
func (r *ShowtimeRepo) Create(ctx context.Context, st *model.Showtime) error {
	const q = `INSERT INTO showtimes (movie_id, room_id, starts_at, base_price_cents) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, st.MovieID, st.RoomID, st.StartsAt.UTC(), st.BasePriceCents)
	if err != nil {
		return MapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	st.ID = uint64(id)
	const sel = `SELECT ` + showtimeColumns + ` FROM showtimes WHERE id = ?`
	return scanShowtime(r.db.QueryRowContext(ctx, sel, st.ID), st)
}

// GetByID retrieves a showtime by its ID, returning ErrShowtimeNotFound
// when absent.
func (r *ShowtimeRepo) GetByID(ctx context.Context, id uint64) (*model.Showtime, error) {
	const q = `SELECT ` + showtimeColumns + ` FROM showtimes WHERE id = ?`
	var st model.Showtime
	if err := scanShowtime(r.db.QueryRowContext(ctx, q, id), &st); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowtimeNotFound
		}
		return nil, err
	}
	return &st, nil
}

// List returns all showtimes ordered by start time ascending.
func (r *ShowtimeRepo) List(ctx context.Context) ([]model.Showtime, error) {
	const q = `SELECT ` + showtimeColumns + ` FROM showtimes ORDER BY starts_at ASC`
	return r.queryMany(ctx, q)
}

// ListByMovie returns the showtimes of one movie ordered by start time.
func (r *ShowtimeRepo) ListByMovie(ctx context.Context, movieID uint64) ([]model.Showtime, error) {
	const q = `SELECT ` + showtimeColumns + ` FROM showtimes WHERE movie_id = ? ORDER BY starts_at ASC`
	return r.queryMany(ctx, q, movieID)
}

// ListByRoom returns the showtimes of one room ordered by start time.
func (r *ShowtimeRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Showtime, error) {
	const q = `SELECT ` + showtimeColumns + ` FROM showtimes WHERE room_id = ? ORDER BY starts_at ASC`
	return r.queryMany(ctx, q, roomID)
}

func (r *ShowtimeRepo) queryMany(ctx context.Context, q string, args ...any) ([]model.Showtime, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Showtime, 0)
	for rows.Next() {
		var st model.Showtime
		if err := scanShowtime(rows, &st); err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	return result, rows.Err()
}

// FindInWindow returns showtimes of the room whose start lies within
// [at-ConflictWindow, at+ConflictWindow], bounds inclusive. Any result
// makes the requested slot a scheduling conflict. excludeID skips one
// showtime (the one being updated); pass 0 for creation.
func (r *ShowtimeRepo) FindInWindow(ctx context.Context, roomID uint64, at time.Time, excludeID uint64) ([]model.Showtime, error) {
	const q = `SELECT ` + showtimeColumns + `
	           FROM showtimes
	           WHERE room_id = ? AND id <> ? AND status = 'SCHEDULED' AND starts_at BETWEEN ? AND ?
	           ORDER BY starts_at ASC`
	from := at.UTC().Add(-ConflictWindow)
	to := at.UTC().Add(ConflictWindow)
	return r.queryMany(ctx, q, roomID, excludeID, from, to)
}

// HasFutureByRoom reports whether the room has any showtime that starts
// after now. Room deletion and layout changes are refused while this
// holds.
func (r *ShowtimeRepo) HasFutureByRoom(ctx context.Context, roomID uint64) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM showtimes WHERE room_id = ? AND status = 'SCHEDULED' AND starts_at > UTC_TIMESTAMP())`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, roomID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// SeatHasFutureCommitments reports whether the seat is held or sold for
// any future showtime. Administrative config flips are refused while a
// pending sale flow references the seat.
func (r *ShowtimeRepo) SeatHasFutureCommitments(ctx context.Context, seatID uint64) (bool, error) {
	const q = `SELECT EXISTS(
	             SELECT 1 FROM seat_holds h
	             JOIN showtimes st ON st.id = h.showtime_id
	             WHERE h.seat_id = ? AND st.starts_at > UTC_TIMESTAMP() AND h.expires_at > UTC_TIMESTAMP()
	           ) OR EXISTS(
	             SELECT 1 FROM tickets t
	             JOIN showtimes st ON st.id = t.showtime_id
	             WHERE t.seat_id = ? AND st.starts_at > UTC_TIMESTAMP() AND t.status <> 'CANCELLED'
	           )`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, seatID, seatID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Update applies a typed patch to a showtime. Nil fields are left
// untouched; an empty patch is an input error. The caller re-validates
// the conflict window when RoomID or StartsAt change.
func (r *ShowtimeRepo) Update(ctx context.Context, id uint64, p model.ShowtimePatch) error {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if p.MovieID != nil {
		sets = append(sets, "movie_id = ?")
		args = append(args, *p.MovieID)
	}
	if p.RoomID != nil {
		sets = append(sets, "room_id = ?")
		args = append(args, *p.RoomID)
	}
	if p.StartsAt != nil {
		sets = append(sets, "starts_at = ?")
		args = append(args, p.StartsAt.UTC())
	}
	if p.BasePriceCents != nil {
		sets = append(sets, "base_price_cents = ?")
		args = append(args, *p.BasePriceCents)
	}
	if len(sets) == 0 {
		return ErrInvalidArgument
	}
	args = append(args, id)
	q := `UPDATE showtimes SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return MapDuplicate(err)
	}
	return nil
}

// CancelTx soft-deletes a showtime within the caller's transaction.
// The row stays so ticket history keeps a valid reference; the service
// cancels live tickets and removes holds in the same transaction.
func (r *ShowtimeRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE showtimes SET status = 'CANCELLED' WHERE id = ? AND status = 'SCHEDULED'`
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrShowtimeNotFound
	}
	return nil
}
