package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// createShowtimeRequest is the payload for POST /v1/showtimes. Times
// are RFC3339.
type createShowtimeRequest struct {
	MovieID        uint64 `json:"movie_id"`
	RoomID         uint64 `json:"room_id"`
	StartsAt       string `json:"starts_at"`
	BasePriceCents uint32 `json:"base_price_cents"`
}

// CreateShowtime schedules a screening. Admin only.
func (h *Handler) CreateShowtime(c echo.Context) error {
	var req createShowtimeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return badRequest(c, "starts_at must be RFC3339")
	}
	st, err := h.Showtimes.CreateShowtime(c.Request().Context(), service.CreateShowtimeInput{
		MovieID:        req.MovieID,
		RoomID:         req.RoomID,
		StartsAt:       startsAt,
		BasePriceCents: req.BasePriceCents,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, st)
}

// ListShowtimes returns all showtimes, filtered by ?movie_id= when
// given.
func (h *Handler) ListShowtimes(c echo.Context) error {
	var movieID uint64
	if raw := c.QueryParam("movie_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(c, "invalid movie_id")
		}
		movieID = n
	}
	shows, err := h.Showtimes.ListShowtimes(c.Request().Context(), movieID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"showtimes": shows})
}

// GetShowtime returns one showtime.
func (h *Handler) GetShowtime(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid showtime id")
	}
	st, err := h.Showtimes.GetShowtime(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// updateShowtimeRequest is the payload for PATCH /v1/showtimes/:id.
// Absent fields are left untouched.
type updateShowtimeRequest struct {
	MovieID        *uint64 `json:"movie_id"`
	RoomID         *uint64 `json:"room_id"`
	StartsAt       *string `json:"starts_at"`
	BasePriceCents *uint32 `json:"base_price_cents"`
}

// UpdateShowtime patches a showtime. Admin only.
func (h *Handler) UpdateShowtime(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid showtime id")
	}
	var req updateShowtimeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	patch := model.ShowtimePatch{
		MovieID:        req.MovieID,
		RoomID:         req.RoomID,
		BasePriceCents: req.BasePriceCents,
	}
	if req.StartsAt != nil {
		t, err := time.Parse(time.RFC3339, *req.StartsAt)
		if err != nil {
			return badRequest(c, "starts_at must be RFC3339")
		}
		patch.StartsAt = &t
	}
	st, err := h.Showtimes.UpdateShowtime(c.Request().Context(), id, patch)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// CancelShowtime soft-deletes a showtime, voiding its tickets and
// holds. Admin only.
func (h *Handler) CancelShowtime(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid showtime id")
	}
	a, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	if err := h.Showtimes.CancelShowtime(c.Request().Context(), a, id); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cancelled": id})
}

// ValidateSlot probes whether a room/time slot is free for scheduling.
// Query: room_id, starts_at (RFC3339), optional exclude_id. Admin only.
func (h *Handler) ValidateSlot(c echo.Context) error {
	roomID, err := strconv.ParseUint(c.QueryParam("room_id"), 10, 64)
	if err != nil || roomID == 0 {
		return badRequest(c, "invalid room_id")
	}
	at, err := time.Parse(time.RFC3339, c.QueryParam("starts_at"))
	if err != nil {
		return badRequest(c, "starts_at must be RFC3339")
	}
	var excludeID uint64
	if raw := c.QueryParam("exclude_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(c, "invalid exclude_id")
		}
		excludeID = n
	}
	res, err := h.Showtimes.ValidateSlot(c.Request().Context(), roomID, at, excludeID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ShowtimeSeatMap returns the row-grouped occupancy map of a showtime.
func (h *Handler) ShowtimeSeatMap(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid showtime id")
	}
	sm, err := h.SeatMaps.ShowtimeSeatMap(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, sm)
}
