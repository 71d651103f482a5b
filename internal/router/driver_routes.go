package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cupoapp/cupo-backend/internal/handler"
	"github.com/cupoapp/cupo-backend/internal/middleware"
)

// RegisterDriver registers the cupo management endpoints under /v1.
// All routes require a valid JWT and the DRIVER role; admins pass too.
// Ownership of the individual cupo is enforced in the service layer,
// the role middleware only keeps passengers off these routes entirely.
func RegisterDriver(e *echo.Echo, h *handler.OfferHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("DRIVER", "ADMIN"),
	)

	g.POST("/cupos", h.Create)
	g.PATCH("/cupos/:id", h.Update)
	g.POST("/cupos/:id/cancel", h.Cancel)
	g.DELETE("/cupos/:id", h.Delete)
	g.GET("/my-cupos", h.Mine)
	// Bookings received on one of the driver's cupos.
	g.GET("/cupos/:id/bookings", h.OfferBookings)
}
