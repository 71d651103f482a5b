package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cupoapp/cupo-backend/internal/model"
	"github.com/cupoapp/cupo-backend/internal/repository"
)

// PublicHandler serves the unauthenticated browsing endpoints: cupo
// search and single-cupo detail. Responses go out through the Redis
// response cache middleware.
type PublicHandler struct {
	Offers *repository.OfferRepo
}

func NewPublicHandler(offers *repository.OfferRepo) *PublicHandler {
	return &PublicHandler{Offers: offers}
}

// ListCupos searches active cupos. Supported query parameters:
// destination, driver_id, min_seats, min_price_cents, max_price_cents,
// departure_after (RFC 3339) and status. Results are ordered by
// departure time.
func (h *PublicHandler) ListCupos(c echo.Context) error {
	var f repository.OfferFilter

	if dest := c.QueryParam("destination"); dest != "" {
		if !model.ValidZone(dest) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown destination zone"})
		}
		f.Destination = dest
	}
	if v := c.QueryParam("driver_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid driver_id"})
		}
		f.DriverID = id
	}
	if v := c.QueryParam("min_seats"); v != "" {
		n, err := strconv.ParseUint(v, 10, 8)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid min_seats"})
		}
		f.MinSeats = uint8(n)
	}
	if v := c.QueryParam("min_price_cents"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid min_price_cents"})
		}
		f.MinPriceCents = uint32(n)
	}
	if v := c.QueryParam("max_price_cents"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid max_price_cents"})
		}
		f.MaxPriceCents = uint32(n)
	}
	if v := c.QueryParam("departure_after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid departure_after, want RFC3339"})
		}
		f.DepartureAfter = t
	}
	if v := c.QueryParam("status"); v != "" {
		f.Status = model.OfferStatus(v)
	}

	offers, err := h.Offers.Search(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toOfferViews(offers)})
}

// GetCupo returns one active cupo.
func (h *PublicHandler) GetCupo(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	offer, err := h.Offers.GetActiveByID(c.Request().Context(), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toOfferView(offer))
}
