package repository // repository defines data access for seat holds

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// HoldRepo provides data access to the seat_holds table. All timestamps
// are stored and compared in UTC; a hold is expired once expires_at is
// at or before the current UTC time. Expired rows are removed lazily
// inside mutating transactions and periodically by the sweeper, so they
// never block a sale.
type HoldRepo struct {
	db *sql.DB
}

// NewHoldRepo constructs a HoldRepo with the given DB handle.
func NewHoldRepo(db *sql.DB) *HoldRepo { return &HoldRepo{db: db} }

// DB exposes the underlying sql.DB for cross-repository transactions.
func (r *HoldRepo) DB() *sql.DB { return r.db }

const holdColumns = `id, showtime_id, seat_id, holder_id, hold_token, expires_at, created_at`

func scanHold(row interface{ Scan(...any) error }, h *model.SeatHold) error {
	return row.Scan(&h.ID, &h.ShowtimeID, &h.SeatID, &h.HolderID, &h.HoldToken, &h.ExpiresAt, &h.CreatedAt)
}

// randomToken returns a hex string of n random bytes (2n characters).
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateHolds builds hold records for the given holder, showtime and
// seats, each with a fresh random token and the shared expiry.
func GenerateHolds(holderID, showtimeID uint64, seatIDs []uint64, expiresAt time.Time) ([]model.SeatHold, error) {
	holds := make([]model.SeatHold, 0, len(seatIDs))
	for _, sid := range seatIDs {
		token, err := randomToken(32)
		if err != nil {
			return nil, err
		}
		holds = append(holds, model.SeatHold{
			ShowtimeID: showtimeID,
			SeatID:     sid,
			HolderID:   holderID,
			HoldToken:  token,
			ExpiresAt:  expiresAt.UTC(),
		})
	}
	return holds, nil
}

// CreateBatchTx inserts all holds in one statement within the caller's
// transaction. The unique key on (showtime_id, seat_id) maps a losing
// race to ErrConflict. Passing an empty slice is a no-op.
func (r *HoldRepo) CreateBatchTx(ctx context.Context, tx *sql.Tx, holds []model.SeatHold) error {
	if len(holds) == 0 {
		return nil
	}
	query := `INSERT INTO seat_holds (showtime_id, seat_id, holder_id, hold_token, expires_at) VALUES `
	args := make([]any, 0, len(holds)*5)
	for i, h := range holds {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, h.ShowtimeID, h.SeatID, h.HolderID, h.HoldToken, h.ExpiresAt.UTC())
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return MapDuplicate(err)
	}
	return nil
}

// ExpireTx removes all expired holds of one showtime within the
// caller's transaction and returns the seat IDs that were freed. Every
// mutating flow calls this before inspecting occupancy so a lapsed hold
// can never block a purchase.
func (r *HoldRepo) ExpireTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT seat_id FROM seat_holds WHERE showtime_id = ? AND expires_at <= UTC_TIMESTAMP()`,
		showtimeID,
	)
	if err != nil {
		return nil, err
	}
	var freed []uint64
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			rows.Close()
			return nil, err
		}
		freed = append(freed, sid)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(freed) == 0 {
		return []uint64{}, nil
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM seat_holds WHERE showtime_id = ? AND expires_at <= UTC_TIMESTAMP()`,
		showtimeID,
	)
	if err != nil {
		return nil, err
	}
	return freed, nil
}

// ExpireAll removes every expired hold across all showtimes and returns
// the number of rows reaped. The background sweeper runs this on an
// interval as a safety net behind the lazy per-transaction reaping.
func (r *HoldRepo) ExpireAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM seat_holds WHERE expires_at <= UTC_TIMESTAMP()`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListBySeatsTx returns the holds on the given seats for one showtime
// inside the caller's transaction. Expired rows are excluded; callers
// run ExpireTx first, so any row returned here is live. The read locks
// the rows FOR UPDATE: under REPEATABLE READ a plain SELECT would use
// the transaction's snapshot and miss a hold committed while the caller
// waited on the seat locks, while a locking read always sees the
// current rows.
func (r *HoldRepo) ListBySeatsTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, seatIDs []uint64) ([]model.SeatHold, error) {
	if len(seatIDs) == 0 {
		return []model.SeatHold{}, nil
	}
	q := `SELECT ` + holdColumns + ` FROM seat_holds
	      WHERE showtime_id = ? AND expires_at > UTC_TIMESTAMP() AND seat_id IN (` + placeholders(len(seatIDs)) + `) FOR UPDATE`
	args := make([]any, 0, len(seatIDs)+1)
	args = append(args, showtimeID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	holds := make([]model.SeatHold, 0, len(seatIDs))
	for rows.Next() {
		var h model.SeatHold
		if err := scanHold(rows, &h); err != nil {
			return nil, err
		}
		holds = append(holds, h)
	}
	return holds, rows.Err()
}

// ListActiveByShowtime returns all live holds of a showtime. Used by
// availability queries, which tolerate the slight staleness of reading
// outside a transaction.
func (r *HoldRepo) ListActiveByShowtime(ctx context.Context, showtimeID uint64) ([]model.SeatHold, error) {
	const q = `SELECT ` + holdColumns + ` FROM seat_holds
	           WHERE showtime_id = ? AND expires_at > UTC_TIMESTAMP()`
	rows, err := r.db.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	holds := make([]model.SeatHold, 0)
	for rows.Next() {
		var h model.SeatHold
		if err := scanHold(rows, &h); err != nil {
			return nil, err
		}
		holds = append(holds, h)
	}
	return holds, rows.Err()
}

// DeleteBySeatsTx removes the holds on the given seats for one showtime
// within the caller's transaction and reports how many were removed.
// Unscoped; used when releasing seats whose holds the caller has
// already loaded with a locking read and permission-checked.
func (r *HoldRepo) DeleteBySeatsTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, seatIDs []uint64) (int64, error) {
	if len(seatIDs) == 0 {
		return 0, nil
	}
	q := `DELETE FROM seat_holds WHERE showtime_id = ? AND seat_id IN (` + placeholders(len(seatIDs)) + `)`
	args := make([]any, 0, len(seatIDs)+1)
	args = append(args, showtimeID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByHolderTx removes one holder's holds on the given seats within
// the caller's transaction. Scoping to the holder means a concurrent
// hold by someone else is never swept away here; it survives to make
// the caller's subsequent insert hit the unique key and fail with
// ErrConflict.
func (r *HoldRepo) DeleteByHolderTx(ctx context.Context, tx *sql.Tx, showtimeID, holderID uint64, seatIDs []uint64) (int64, error) {
	if len(seatIDs) == 0 {
		return 0, nil
	}
	q := `DELETE FROM seat_holds WHERE showtime_id = ? AND holder_id = ? AND seat_id IN (` + placeholders(len(seatIDs)) + `)`
	args := make([]any, 0, len(seatIDs)+2)
	args = append(args, showtimeID, holderID)
	for _, id := range seatIDs {
		args = append(args, id)
	}
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteTx removes one hold by ID within the caller's transaction.
// Used when a purchase consumes the specific hold it has verified.
func (r *HoldRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM seat_holds WHERE id = ?`, id)
	return err
}

// DeleteByShowtimeTx removes every hold of a showtime within the
// caller's transaction. Runs when a showtime is cancelled.
func (r *HoldRepo) DeleteByShowtimeTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM seat_holds WHERE showtime_id = ?`, showtimeID)
	return err
}
