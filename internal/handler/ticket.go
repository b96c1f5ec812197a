package handler

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/utils"
)

// purchaseRequest is the payload for POST /v1/tickets. BuyerID may be
// omitted to buy for oneself. PriceCents may be omitted to charge the
// showtime's base price; when present it must match that price.
type purchaseRequest struct {
	ShowtimeID uint64 `json:"showtime_id"`
	SeatID     uint64 `json:"seat_id"`
	BuyerID    uint64 `json:"buyer_id"`
	PriceCents uint32 `json:"price_cents"`
}

// PurchaseTicket sells one seat for a showtime and returns the ticket.
func (h *Handler) PurchaseTicket(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var req purchaseRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "malformed body")
	}
	buyerID := req.BuyerID
	if buyerID == 0 {
		buyerID = a.ID
	}
	ticket, err := h.Reservations.Purchase(c.Request().Context(), a, req.ShowtimeID, req.SeatID, buyerID, req.PriceCents)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusCreated, ticket)
}

// CancelTicket voids one ticket, freeing its seat. Seller or admin
// only.
func (h *Handler) CancelTicket(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid ticket id")
	}
	a, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	if err := h.Reservations.Cancel(c.Request().Context(), a, id); err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cancelled": id})
}

// ListTickets returns the caller's purchases; admins may pass
// ?showtime_id= to list a showtime's sales history instead.
func (h *Handler) ListTickets(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	var showtimeID uint64
	if raw := c.QueryParam("showtime_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(c, "invalid showtime_id")
		}
		showtimeID = n
	}
	tickets, err := h.Reservations.ListTickets(c.Request().Context(), a, showtimeID)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tickets": tickets})
}

// qrPixelSize is the rendered QR code edge length in pixels.
const qrPixelSize = 256

// PrintTicket returns the printable view of a ticket with a base64
// PNG QR code of its payload. Buyer, seller or admin only.
func (h *Handler) PrintTicket(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid ticket id")
	}
	a, err := actor(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
	}
	pd, err := h.Reservations.PrintData(c.Request().Context(), a, id)
	if err != nil {
		return writeErr(c, err)
	}
	png, err := utils.GenerateQRCode(pd.QRPayload, qrPixelSize)
	if err != nil {
		return writeErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"ticket": pd,
		"qr_png": base64.StdEncoding.EncodeToString(png),
	})
}
