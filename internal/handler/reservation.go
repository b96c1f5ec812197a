package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// seatSelectionRequest carries the seat IDs of a hold, release or
// availability request.
type seatSelectionRequest struct {
	ShowtimeID uint64   `json:"showtime_id"`
	SeatIDs    []uint64 `json:"seat_ids"`
}

// CheckAvailability resolves the occupancy of the requested seats for
// a showtime.
func (h *Handler) CheckAvailability(c echo.Context) error {
	var req seatSelectionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	seats, err := h.Reservations.CheckAvailability(c.Request().Context(), req.ShowtimeID, req.SeatIDs)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"showtime_id": req.ShowtimeID, "seats": seats})
}

// reserveRequest is the payload for POST /v1/showtimes/:id/reservations.
type reserveRequest struct {
	SeatIDs []uint64 `json:"seat_ids"`
}

// Reserve places holds on all requested seats or none of them.
func (h *Handler) Reserve(c echo.Context) error {
	showtimeID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid showtime id")
	}
	a, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var req reserveRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	holds, err := h.Reservations.Reserve(c.Request().Context(), a, showtimeID, req.SeatIDs)
	if err != nil {
		return writeErr(c, err)
	}
	resp := echo.Map{"showtime_id": showtimeID, "holds": holds}
	if len(holds) > 0 {
		resp["expires_at"] = holds[0].ExpiresAt.UTC().Format(time.RFC3339)
	}
	return c.JSON(http.StatusCreated, resp)
}

// Release frees held or sold seats, cancelling tickets where needed.
func (h *Handler) Release(c echo.Context) error {
	showtimeID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid showtime id")
	}
	a, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var req reserveRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	if err := h.Reservations.Release(c.Request().Context(), a, showtimeID, req.SeatIDs); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"released": req.SeatIDs})
}
