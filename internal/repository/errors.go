// Package repository defines error values shared across repositories and
// the service layer. Sentinels let handlers translate failures into HTTP
// statuses with errors.Is instead of inspecting driver errors: NotFound
// sentinels map to 404, ErrConflict to 409, ErrInvalidArgument to 400 and
// ErrForbidden to 403. Anything else is an internal error.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrForbidden is returned when the caller is not permitted to act on a
// resource, e.g. cancelling a ticket sold by someone else.
var ErrForbidden = errors.New("forbidden")

// ErrConflict signals a state-machine violation: a double sale, an
// overlapping showtime, a disabled seat, or a lost race on a unique key.
var ErrConflict = errors.New("conflict")

// ErrInvalidArgument signals malformed input such as a non-positive
// price, a past date or an empty seat batch.
var ErrInvalidArgument = errors.New("invalid argument")

// Not-found sentinels, one per entity the core reads.
var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrSeatNotFound     = errors.New("seat not found")
	ErrShowtimeNotFound = errors.New("showtime not found")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrMovieNotFound    = errors.New("movie not found")
	ErrUserNotFound     = errors.New("user not found")
)

// mysqlDuplicateEntry is the server error number for a unique key
// violation. The unique keys on seat_holds and tickets are the final
// arbiter between racing writers, so a duplicate entry is a Conflict,
// not an internal error.
const mysqlDuplicateEntry = 1062

// IsDuplicateKey reports whether err is a MySQL duplicate-entry error.
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// MapDuplicate converts duplicate-key errors to ErrConflict and passes
// everything else through.
func MapDuplicate(err error) error {
	if IsDuplicateKey(err) {
		return ErrConflict
	}
	return err
}
