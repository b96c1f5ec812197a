package model

import "time"

// Movie is an external collaborator of the reservation core. The core
// only reads movies for existence checks during showtime creation and
// for the joined ticket-print view; movie administration lives
// elsewhere.
type Movie struct {
	ID          uint64    // movies.id
	Title       string    // movies.title
	DurationMin uint32    // movies.duration_min
	Rating      string    // movies.rating
	Genre       string    // movies.genre
	IsShowing   bool      // movies.is_showing
	CreatedAt   time.Time // movies.created_at
}
