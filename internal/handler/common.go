package handler // handler defines http handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/occupancy"
	"github.com/iliyamo/cinema-booking/internal/repository"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	Rooms        *service.RoomService
	Showtimes    *service.ShowtimeService
	Reservations *service.ReservationService
	SeatMaps     *service.SeatMapService
}

// NewHandler constructs a Handler and panics if any dependency is nil.
func NewHandler(rooms *service.RoomService, showtimes *service.ShowtimeService, reservations *service.ReservationService, seatMaps *service.SeatMapService) *Handler {
	if rooms == nil || showtimes == nil || reservations == nil || seatMaps == nil {
		panic("nil service passed to NewHandler")
	}
	return &Handler{Rooms: rooms, Showtimes: showtimes, Reservations: reservations, SeatMaps: seatMaps}
}

// actor extracts the authenticated caller from the context values set
// by the JWT middleware.
func actor(c echo.Context) (service.Actor, error) {
	uid, ok := c.Get(middleware.CtxUserID).(uint64)
	if !ok || uid == 0 {
		return service.Actor{}, errors.New("invalid user_id in context")
	}
	role, _ := c.Get(middleware.CtxRole).(string)
	return service.Actor{ID: uid, Admin: role == model.RoleAdmin}, nil
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

// writeErr maps service and repository errors onto HTTP responses:
// 400 invalid input, 403 forbidden, 404 unknown resource, 409 state
// conflict. Anything unrecognized is logged and returned as an opaque
// 500 so internals never leak to clients.
func writeErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrInvalidArgument),
		errors.Is(err, occupancy.ErrNotReleasable):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid argument"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrRoomNotFound),
		errors.Is(err, repository.ErrSeatNotFound),
		errors.Is(err, repository.ErrShowtimeNotFound),
		errors.Is(err, repository.ErrTicketNotFound),
		errors.Is(err, repository.ErrMovieNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrConflict),
		errors.Is(err, occupancy.ErrSeatTaken),
		errors.Is(err, occupancy.ErrSeatDisabled):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		log.Printf("handler: internal error on %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}
