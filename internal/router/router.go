package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/handler"
	"github.com/iliyamo/cinema-booking/internal/middleware"
	"github.com/iliyamo/cinema-booking/internal/model"
)

// Register wires the full HTTP surface onto the Echo instance. Three
// tiers: public browse endpoints, authenticated sale flows, and
// admin-only administration. jwtSecret verifies the bearer tokens
// issued by the external auth service.
func Register(e *echo.Echo, h *handler.Handler, jwtSecret string) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	// Public browse endpoints, no authentication.
	e.GET("/v1/rooms", h.ListRooms)
	e.GET("/v1/rooms/:id", h.GetRoom)
	e.GET("/v1/rooms/:id/seats", h.ListRoomSeats)
	e.GET("/v1/rooms/:id/layout", h.RoomLayout)
	e.GET("/v1/showtimes", h.ListShowtimes)
	e.GET("/v1/showtimes/:id", h.GetShowtime)
	e.GET("/v1/showtimes/:id/seats", h.ShowtimeSeatMap)

	// Sale flows require a valid bearer token of either role.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleAdmin, model.RoleCustomer))
	auth.POST("/seats/check-availability", h.CheckAvailability)
	auth.POST("/showtimes/:id/reservations", h.Reserve)
	auth.DELETE("/showtimes/:id/reservations", h.Release)
	auth.POST("/tickets", h.PurchaseTicket)
	auth.DELETE("/tickets/:id", h.CancelTicket)
	auth.GET("/tickets", h.ListTickets)
	auth.GET("/tickets/:id/print", h.PrintTicket)

	// Administration of rooms, seats and showtimes.
	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/rooms", h.CreateRoom)
	admin.DELETE("/rooms/:id", h.DeleteRoom)
	admin.PUT("/rooms/:id/layout", h.ReconfigureRoom)
	admin.POST("/rooms/:id/rows", h.AddRow)
	admin.DELETE("/rooms/:id/rows/:label", h.DeleteRow)
	admin.PATCH("/seats/:id/config", h.SetSeatConfig)
	admin.POST("/showtimes", h.CreateShowtime)
	admin.PATCH("/showtimes/:id", h.UpdateShowtime)
	admin.DELETE("/showtimes/:id", h.CancelShowtime)
	admin.GET("/showtimes/validate-slot", h.ValidateSlot)
}
