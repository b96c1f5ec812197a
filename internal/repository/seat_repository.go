package repository // repository defines data access for seats

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/occupancy"
)

// SeatRepo provides methods to work with seats in the database. Seats
// are created in batches when a room's layout is configured and only
// carry configuration state; per-showtime occupancy lives in holds and
// tickets.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// DB exposes the underlying sql.DB for cross-repository transactions.
func (r *SeatRepo) DB() *sql.DB { return r.db }

const seatColumns = `id, room_id, row_label, seat_number, config_state, created_at, updated_at`

func scanSeat(row interface{ Scan(...any) error }, s *model.Seat) error {
	return row.Scan(&s.ID, &s.RoomID, &s.RowLabel, &s.SeatNumber, &s.ConfigState, &s.CreatedAt, &s.UpdatedAt)
}

// placeholders renders "?, ?, ?" for IN clauses of length n.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// RowLabelFromIndex converts a zero-based row index to its letter label:
// 0 -> A, 25 -> Z, 26 -> AA.
func RowLabelFromIndex(i int) string {
	if i < 0 {
		return ""
	}
	var res []rune
	for {
		res = append(res, rune('A'+i%26))
		i = i/26 - 1
		if i < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res)
}

// ListByRoom retrieves all seats of a room ordered by row then number.
func (r *SeatRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats WHERE room_id = ? ORDER BY row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := scanSeat(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetByID retrieves a seat by its id, returning ErrSeatNotFound when absent.
func (r *SeatRepo) GetByID(ctx context.Context, id uint64) (*model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats WHERE id = ?`
	var s model.Seat
	if err := scanSeat(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByIDs returns the seats matching the given IDs, ordered by id.
// Missing IDs are simply absent from the result; callers compare lengths
// to detect unknown seats.
func (r *SeatRepo) ListByIDs(ctx context.Context, ids []uint64) ([]model.Seat, error) {
	return r.listByIDs(ctx, r.db.QueryContext, ids, false)
}

// ListByIDsForUpdateTx loads the seats matching ids inside the caller's
// transaction with FOR UPDATE row locks. Rows are locked in ascending id
// order so two batches sharing members cannot deadlock.
func (r *SeatRepo) ListByIDsForUpdateTx(ctx context.Context, tx *sql.Tx, ids []uint64) ([]model.Seat, error) {
	return r.listByIDs(ctx, tx.QueryContext, ids, true)
}

type queryFn func(ctx context.Context, query string, args ...any) (*sql.Rows, error)

func (r *SeatRepo) listByIDs(ctx context.Context, query queryFn, ids []uint64, lock bool) ([]model.Seat, error) {
	if len(ids) == 0 {
		return []model.Seat{}, nil
	}
	q := `SELECT ` + seatColumns + ` FROM seats WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY id`
	if lock {
		q += ` FOR UPDATE`
	}
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}
	rows, err := query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Seat, 0, len(ids))
	for rows.Next() {
		var s model.Seat
		if err := scanSeat(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// CreateBatchTx creates the full seat grid for a room inside the
// caller's transaction: rowCount lettered rows of seatsPerRow seats
// each, all configured AVAILABLE. Non-positive dimensions and duplicate
// (room, row, number) combinations are input errors.
func (r *SeatRepo) CreateBatchTx(ctx context.Context, tx *sql.Tx, roomID uint64, rowCount, seatsPerRow uint32) error {
	if rowCount == 0 || seatsPerRow == 0 {
		return ErrInvalidArgument
	}
	query := `INSERT INTO seats (room_id, row_label, seat_number, config_state) VALUES `
	args := make([]any, 0, int(rowCount*seatsPerRow)*4)
	first := true
	for row := 0; row < int(rowCount); row++ {
		label := RowLabelFromIndex(row)
		for num := 1; num <= int(seatsPerRow); num++ {
			if !first {
				query += ","
			}
			first = false
			query += "(?, ?, ?, ?)"
			args = append(args, roomID, label, num, occupancy.ConfigAvailable)
		}
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if IsDuplicateKey(err) {
			return ErrInvalidArgument
		}
		return err
	}
	return nil
}

// AddRowTx appends one lettered row of seats to a room within the
// caller's transaction, so the room's stored dimensions can change in
// the same commit. Fails with ErrInvalidArgument when the label already
// exists or the count is zero.
func (r *SeatRepo) AddRowTx(ctx context.Context, tx *sql.Tx, roomID uint64, label string, seatsPerRow uint32) error {
	if label == "" || seatsPerRow == 0 {
		return ErrInvalidArgument
	}
	query := `INSERT INTO seats (room_id, row_label, seat_number, config_state) VALUES `
	args := make([]any, 0, int(seatsPerRow)*4)
	for num := 1; num <= int(seatsPerRow); num++ {
		if num > 1 {
			query += ","
		}
		query += "(?, ?, ?, ?)"
		args = append(args, roomID, label, num, occupancy.ConfigAvailable)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if IsDuplicateKey(err) {
			return ErrInvalidArgument
		}
		return err
	}
	return nil
}

// DeleteRowTx removes all seats in one lettered row of a room within
// the caller's transaction. Returns ErrSeatNotFound when the row has no
// seats.
func (r *SeatRepo) DeleteRowTx(ctx context.Context, tx *sql.Tx, roomID uint64, label string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM seats WHERE room_id = ? AND row_label = ?`, roomID, label)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSeatNotFound
	}
	return nil
}

// DeleteByRoomTx removes every seat of a room within the caller's
// transaction. Used when a room's layout is regenerated.
func (r *SeatRepo) DeleteByRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM seats WHERE room_id = ?`, roomID)
	return err
}

// SetConfigState flips the administrative axis of a seat. The service
// layer refuses the flip while the seat participates in a pending sale
// flow for a future showtime.
// Callers verify the seat exists first; a same-value update affects zero
// rows in MySQL, so RowsAffected cannot signal absence here.
func (r *SeatRepo) SetConfigState(ctx context.Context, seatID uint64, state occupancy.ConfigState) error {
	_, err := r.db.ExecContext(ctx, `UPDATE seats SET config_state = ? WHERE id = ?`, state, seatID)
	return err
}
