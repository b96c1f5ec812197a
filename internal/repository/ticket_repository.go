package repository // repository defines data access for tickets

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/cinema-booking/internal/model"
)

// TicketRepo provides data access to the tickets table. Cancelled
// tickets keep their rows so sales history survives; the filtered
// unique key on (showtime_id, seat_id) only covers live tickets.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo constructs a TicketRepo with the given DB handle.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// DB exposes the underlying sql.DB for cross-repository transactions.
func (r *TicketRepo) DB() *sql.DB { return r.db }

const ticketColumns = `id, showtime_id, seat_id, buyer_id, seller_id, price_cents, status, qr_payload, created_at, updated_at`

func scanTicket(row interface{ Scan(...any) error }, t *model.Ticket) error {
	return row.Scan(&t.ID, &t.ShowtimeID, &t.SeatID, &t.BuyerID, &t.SellerID,
		&t.PriceCents, &t.Status, &t.QRPayload, &t.CreatedAt, &t.UpdatedAt)
}

// CreateTx inserts a ticket within the caller's transaction and
// populates its generated ID and timestamps. The live-ticket unique key
// is the final arbiter between concurrent purchases of the same seat;
// losing that race maps to ErrConflict.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO tickets (showtime_id, seat_id, buyer_id, seller_id, price_cents, qr_payload)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, t.ShowtimeID, t.SeatID, t.BuyerID, t.SellerID, t.PriceCents, t.QRPayload)
	if err != nil {
		return MapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	const sel = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ?`
	return scanTicket(tx.QueryRowContext(ctx, sel, t.ID), t)
}

// GetByID retrieves a ticket by its ID, returning ErrTicketNotFound
// when absent.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ?`
	var t model.Ticket
	if err := scanTicket(r.db.QueryRowContext(ctx, q, id), &t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListLiveBySeatsTx returns the live tickets on the given seats for one
// showtime inside the caller's transaction. Locks the rows FOR UPDATE
// so a ticket committed while the caller waited on the seat locks is
// visible despite the transaction's earlier snapshot.
func (r *TicketRepo) ListLiveBySeatsTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, seatIDs []uint64) ([]model.Ticket, error) {
	if len(seatIDs) == 0 {
		return []model.Ticket{}, nil
	}
	q := `SELECT ` + ticketColumns + ` FROM tickets
	      WHERE showtime_id = ? AND status <> 'CANCELLED' AND seat_id IN (` + placeholders(len(seatIDs)) + `) FOR UPDATE`
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
	tickets := make([]model.Ticket, 0, len(seatIDs))
	for rows.Next() {
		var t model.Ticket
		if err := scanTicket(rows, &t); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// ListLiveByShowtime returns all live tickets of a showtime. Used by
// availability queries.
func (r *TicketRepo) ListLiveByShowtime(ctx context.Context, showtimeID uint64) ([]model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE showtime_id = ? AND status <> 'CANCELLED'`
	return r.queryMany(ctx, q, showtimeID)
}

// ListByShowtime returns every ticket of a showtime, cancelled included,
// newest first. Administrative view of a showtime's sales history.
func (r *TicketRepo) ListByShowtime(ctx context.Context, showtimeID uint64) ([]model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE showtime_id = ? ORDER BY created_at DESC`
	return r.queryMany(ctx, q, showtimeID)
}

// ListByBuyer returns the tickets bought by one user, newest first.
func (r *TicketRepo) ListByBuyer(ctx context.Context, buyerID uint64) ([]model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE buyer_id = ? ORDER BY created_at DESC`
	return r.queryMany(ctx, q, buyerID)
}

func (r *TicketRepo) queryMany(ctx context.Context, q string, args ...any) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		if err := scanTicket(rows, &t); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

// CancelTx flips one ticket to CANCELLED within the caller's
// transaction. A ticket already cancelled affects zero rows and maps to
// ErrTicketNotFound so double cancellation surfaces to the caller.
func (r *TicketRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	const q = `UPDATE tickets SET status = 'CANCELLED' WHERE id = ? AND status <> 'CANCELLED'`
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// CancelByShowtimeTx cancels every live ticket of a showtime within the
// caller's transaction and reports how many were flipped. Runs when the
// showtime itself is cancelled.
func (r *TicketRepo) CancelByShowtimeTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) (int64, error) {
	const q = `UPDATE tickets SET status = 'CANCELLED' WHERE showtime_id = ? AND status <> 'CANCELLED'`
	res, err := tx.ExecContext(ctx, q, showtimeID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// PrintData is the joined view of a ticket used to render its printable
// form, QR code included.
type PrintData struct {
	TicketID   uint64    `json:"ticket_id"`
	MovieTitle string    `json:"movie_title"`
	RoomName   string    `json:"room_name"`
	RowLabel   string    `json:"row_label"`
	SeatNumber uint32    `json:"seat_number"`
	StartsAt   time.Time `json:"starts_at"`
	PriceCents uint32    `json:"price_cents"`
	Status     string    `json:"status"`
	QRPayload  string    `json:"-"`
}

// GetPrintData loads the printable view of one ticket, joining movie,
// room and seat details. Returns ErrTicketNotFound when absent.
func (r *TicketRepo) GetPrintData(ctx context.Context, id uint64) (*PrintData, error) {
	const q = `SELECT t.id, m.title, rm.name, se.row_label, se.seat_number,
	                  st.starts_at, t.price_cents, t.status, t.qr_payload
	           FROM tickets t
	           JOIN showtimes st ON st.id = t.showtime_id
	           JOIN movies m ON m.id = st.movie_id
	           JOIN rooms rm ON rm.id = st.room_id
	           JOIN seats se ON se.id = t.seat_id
	           WHERE t.id = ?`
	var pd PrintData
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&pd.TicketID, &pd.MovieTitle, &pd.RoomName, &pd.RowLabel, &pd.SeatNumber,
		&pd.StartsAt, &pd.PriceCents, &pd.Status, &pd.QRPayload,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &pd, nil
}
