package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
)

func TestTicketCreateTx_ReadsBackRow(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewTicketRepo(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tickets").
		WithArgs(uint64(11), uint64(2), uint64(42), uint64(7), uint32(1500), "payload").
		WillReturnResult(sqlmock.NewResult(99, 1))
	mock.ExpectQuery("FROM tickets WHERE id").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "showtime_id", "seat_id", "buyer_id", "seller_id", "price_cents", "status", "qr_payload", "created_at", "updated_at"}).
			AddRow(99, 11, 2, 42, 7, 1500, model.TicketPurchased, "payload", now, now))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	ticket := &model.Ticket{ShowtimeID: 11, SeatID: 2, BuyerID: 42, SellerID: 7, PriceCents: 1500, QRPayload: "payload"}
	require.NoError(t, repo.CreateTx(context.Background(), tx, ticket))
	require.NoError(t, tx.Commit())

	assert.Equal(t, uint64(99), ticket.ID)
	assert.Equal(t, model.TicketPurchased, ticket.Status)
	assert.True(t, ticket.Live())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTicketCreateTx_SecondLiveTicketMapsToConflict(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewTicketRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tickets").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "duplicate entry"})

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	err = repo.CreateTx(context.Background(), tx, &model.Ticket{ShowtimeID: 11, SeatID: 2})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestTicketCancelTx_DoubleCancel(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	repo := NewTicketRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tickets SET status = 'CANCELLED'`).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE tickets SET status = 'CANCELLED'`).
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.CancelTx(context.Background(), tx, 99))
	err = repo.CancelTx(context.Background(), tx, 99)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, IsDuplicateKey(&mysql.MySQLError{Number: 1062}))
	assert.False(t, IsDuplicateKey(&mysql.MySQLError{Number: 1452}))
	assert.False(t, IsDuplicateKey(errors.New("plain error")))
	assert.False(t, IsDuplicateKey(nil))
}
