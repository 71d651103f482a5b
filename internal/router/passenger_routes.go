package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cupoapp/cupo-backend/internal/handler"
	"github.com/cupoapp/cupo-backend/internal/middleware"
)

// RegisterBookings registers the booking lifecycle, notification,
// rating and favorite endpoints under /v1. Any authenticated role may
// reach them: who may confirm, reject, cancel or complete a given
// booking is decided per booking by the policy checks in the service,
// since a driver is also a passenger on other people's cupos.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, n *handler.NotificationHandler, r *handler.RatingHandler, f *handler.FavoriteHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("PASSENGER", "DRIVER", "ADMIN"),
	)

	// ---- Bookings ----
	g.POST("/bookings", b.Create)
	g.GET("/my-bookings", b.Mine)
	g.POST("/bookings/:id/confirm", b.Confirm)
	g.POST("/bookings/:id/reject", b.Reject)
	g.POST("/bookings/:id/cancel", b.Cancel)
	g.POST("/bookings/:id/complete", b.Complete)

	// ---- Ratings ----
	g.POST("/bookings/:id/rating", r.Rate)

	// ---- Notifications ----
	g.GET("/notifications", n.List)
	g.GET("/notifications/unread", n.Unread)
	g.GET("/notifications/unread/count", n.UnreadCount)
	g.POST("/notifications/:id/read", n.MarkRead)
	g.POST("/notifications/read-all", n.MarkAllRead)
	g.DELETE("/notifications/:id", n.Delete)
	g.GET("/ws/notifications", n.Connect)

	// ---- Favorites ----
	g.POST("/cupos/:id/favorite", f.Add)
	g.DELETE("/cupos/:id/favorite", f.Remove)
	g.GET("/cupos/:id/favorite", f.Check)
	g.GET("/favorites", f.List)
}
