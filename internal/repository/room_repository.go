package repository // repository defines data access for rooms

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// RoomRepo provides methods to work with rooms in the database.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories.
func (r *RoomRepo) DB() *sql.DB { return r.db }

const roomColumns = `id, name, row_count, seats_per_row, capacity, room_type, is_active, created_at, updated_at`

func scanRoom(row interface{ Scan(...any) error }, rm *model.Room) error {
	return row.Scan(&rm.ID, &rm.Name, &rm.RowCount, &rm.SeatsPerRow, &rm.Capacity,
		&rm.RoomType, &rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt)
}

// CreateTx inserts a room within the caller's transaction and
// populates its generated ID and timestamps. Capacity must already
// equal RowCount*SeatsPerRow; the service layer validates that before
// calling. A duplicate name maps to ErrConflict.
func (r *RoomRepo) CreateTx(ctx context.Context, tx *sql.Tx, rm *model.Room) error {
	const q = `INSERT INTO rooms (name, row_count, seats_per_row, capacity, room_type, is_active)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, rm.Name, rm.RowCount, rm.SeatsPerRow, rm.Capacity, rm.RoomType, rm.IsActive)
	if err != nil {
		return MapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	const sel = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	return scanRoom(tx.QueryRowContext(ctx, sel, rm.ID), rm)
}

// GetByID retrieves a room by its ID, returning ErrRoomNotFound when absent.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	var rm model.Room
	if err := scanRoom(r.db.QueryRowContext(ctx, q, id), &rm); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return &rm, nil
}

// List returns all rooms ordered by name.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Room, 0)
	for rows.Next() {
		var rm model.Room
		if err := scanRoom(rows, &rm); err != nil {
			return nil, err
		}
		result = append(result, rm)
	}
	return result, rows.Err()
}

// UpdateLayoutTx rewrites the room's grid dimensions within the caller's
// transaction. Used when a room is reconfigured; seats are regenerated
// separately in the same transaction.
func (r *RoomRepo) UpdateLayoutTx(ctx context.Context, tx *sql.Tx, roomID uint64, rowCount, seatsPerRow uint32) error {
	const q = `UPDATE rooms SET row_count = ?, seats_per_row = ?, capacity = ? WHERE id = ?`
	res, err := tx.ExecContext(ctx, q, rowCount, seatsPerRow, rowCount*seatsPerRow, roomID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// SyncLayoutTx recomputes the room's stored dimensions from its actual
// seats within the caller's transaction. Used after adding or removing
// whole rows, which can leave the grid ragged.
func (r *RoomRepo) SyncLayoutTx(ctx context.Context, tx *sql.Tx, roomID uint64) error {
	const q = `UPDATE rooms SET
	             row_count = (SELECT COUNT(DISTINCT row_label) FROM seats WHERE room_id = ?),
	             capacity = (SELECT COUNT(*) FROM seats WHERE room_id = ?)
	           WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, roomID, roomID, roomID)
	return err
}

// Delete removes a room. Seats cascade via the foreign key. The service
// layer refuses deletion while future showtimes exist in the room.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	return nil
}
