package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cupoapp/cupo-backend/internal/handler"
)

// RegisterPublic registers the unauthenticated browse endpoints: cupo
// search, cupo detail and a user's received ratings. The cache
// middleware sits only on these routes; everything authenticated is
// per-user and must not be cached.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, r *handler.RatingHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/cupos", p.ListCupos, cache)
	e.GET("/v1/cupos/:id", p.GetCupo, cache)
	e.GET("/v1/users/:id/ratings", r.ForUser, cache)
}
