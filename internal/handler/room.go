package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/occupancy"
	"github.com/iliyamo/cinema-booking/internal/service"
)

// createRoomRequest is the payload for POST /v1/rooms.
type createRoomRequest struct {
	Name        string `json:"name"`
	RowCount    uint32 `json:"row_count"`
	SeatsPerRow uint32 `json:"seats_per_row"`
	RoomType    string `json:"room_type"`
}

// CreateRoom creates a room with its full seat grid. Admin only.
func (h *Handler) CreateRoom(c echo.Context) error {
	var req createRoomRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	room, err := h.Rooms.CreateRoom(c.Request().Context(), service.CreateRoomInput{
		Name:        req.Name,
		RowCount:    req.RowCount,
		SeatsPerRow: req.SeatsPerRow,
		RoomType:    req.RoomType,
	})
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// ListRooms returns all rooms.
func (h *Handler) ListRooms(c echo.Context) error {
	rooms, err := h.Rooms.ListRooms(c.Request().Context())
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rooms": rooms})
}

// GetRoom returns one room.
func (h *Handler) GetRoom(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid room id")
	}
	room, err := h.Rooms.GetRoom(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// DeleteRoom removes a room and its seats. Refused while future
// showtimes are scheduled in it. Admin only.
func (h *Handler) DeleteRoom(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid room id")
	}
	if err := h.Rooms.DeleteRoom(c.Request().Context(), id); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"deleted": id})
}

// reconfigureRoomRequest is the payload for PUT /v1/rooms/:id/layout.
type reconfigureRoomRequest struct {
	RowCount    uint32 `json:"row_count"`
	SeatsPerRow uint32 `json:"seats_per_row"`
}

// ReconfigureRoom regenerates the room's seat grid. Admin only.
func (h *Handler) ReconfigureRoom(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid room id")
	}
	var req reconfigureRoomRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	room, err := h.Rooms.ReconfigureRoom(c.Request().Context(), id, req.RowCount, req.SeatsPerRow)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// addRowRequest is the payload for POST /v1/rooms/:id/rows.
type addRowRequest struct {
	SeatsPerRow uint32 `json:"seats_per_row"`
}

// AddRow appends the next lettered row to the room. Admin only.
func (h *Handler) AddRow(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid room id")
	}
	var req addRowRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	room, err := h.Rooms.AddRow(c.Request().Context(), id, req.SeatsPerRow)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, room)
}

// DeleteRow removes one lettered row from the room. Admin only.
func (h *Handler) DeleteRow(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid room id")
	}
	label := c.Param("label")
	room, err := h.Rooms.DeleteRow(c.Request().Context(), id, label)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, room)
}

// ListRoomSeats returns the seats of a room.
func (h *Handler) ListRoomSeats(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid room id")
	}
	seats, err := h.Rooms.ListSeats(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"seats": seats})
}

// RoomLayout returns the row-grouped configuration view of a room.
func (h *Handler) RoomLayout(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid room id")
	}
	layout, err := h.SeatMaps.RoomLayout(c.Request().Context(), id)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, layout)
}

// seatConfigRequest is the payload for PATCH /v1/seats/:id/config.
type seatConfigRequest struct {
	ConfigState string `json:"config_state"`
}

// SetSeatConfig flips a seat between AVAILABLE and DISABLED. Admin
// only.
func (h *Handler) SetSeatConfig(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid seat id")
	}
	var req seatConfigRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	seat, err := h.Rooms.SetSeatConfigState(c.Request().Context(), id, occupancy.ConfigState(req.ConfigState))
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, seat)
}
