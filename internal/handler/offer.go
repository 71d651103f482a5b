package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cupoapp/cupo-backend/internal/policy"
	"github.com/cupoapp/cupo-backend/internal/repository"
	"github.com/cupoapp/cupo-backend/internal/service"
)

// OfferHandler serves the driver-facing cupo endpoints. Mutations go
// through the offer engine; reads hit the repositories directly.
type OfferHandler struct {
	Svc      *service.OfferService
	Offers   *repository.OfferRepo
	Bookings *repository.BookingRepo
}

func NewOfferHandler(svc *service.OfferService, offers *repository.OfferRepo, bookings *repository.BookingRepo) *OfferHandler {
	return &OfferHandler{Svc: svc, Offers: offers, Bookings: bookings}
}

type createOfferReq struct {
	Destination    string    `json:"destination"`
	Description    string    `json:"description"`
	MeetingPoint   string    `json:"meeting_point"`
	TotalSeats     uint8     `json:"total_seats"`
	AvailableSeats uint8     `json:"available_seats"`
	DepartureTime  time.Time `json:"departure_time"`
	PriceCents     uint32    `json:"price_cents"`
}

type updateOfferReq struct {
	Destination    *string    `json:"destination"`
	Description    *string    `json:"description"`
	MeetingPoint   *string    `json:"meeting_point"`
	TotalSeats     *uint8     `json:"total_seats"`
	AvailableSeats *uint8     `json:"available_seats"`
	DepartureTime  *time.Time `json:"departure_time"`
	PriceCents     *uint32    `json:"price_cents"`
}

// Create posts a new cupo for the authenticated driver.
func (h *OfferHandler) Create(c echo.Context) error {
	var req createOfferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.MeetingPoint == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "meeting_point required"})
	}
	actor := actorFrom(c)
	offer, err := h.Svc.CreateOffer(c.Request().Context(), actor.UserID, service.OfferInput{
		Destination:    req.Destination,
		Description:    req.Description,
		MeetingPoint:   req.MeetingPoint,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.AvailableSeats,
		DepartureTime:  req.DepartureTime,
		PriceCents:     req.PriceCents,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, toOfferView(offer))
}

// Update applies a partial edit to one of the driver's cupos.
func (h *OfferHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req updateOfferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	offer, err := h.Svc.UpdateOffer(c.Request().Context(), actorFrom(c), id, service.OfferUpdate{
		Destination:    req.Destination,
		Description:    req.Description,
		MeetingPoint:   req.MeetingPoint,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.AvailableSeats,
		DepartureTime:  req.DepartureTime,
		PriceCents:     req.PriceCents,
	})
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toOfferView(offer))
}

// Cancel marks the cupo CANCELLED; its active bookings are notified.
func (h *OfferHandler) Cancel(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Svc.CancelOffer(c.Request().Context(), actorFrom(c), id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete removes the cupo per the configured deletion policy.
func (h *OfferHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Svc.DeleteOffer(c.Request().Context(), actorFrom(c), id); err != nil {
		return respondErr(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Mine lists the driver's own active cupos.
func (h *OfferHandler) Mine(c echo.Context) error {
	actor := actorFrom(c)
	offers, err := h.Offers.ListByDriver(c.Request().Context(), actor.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": toOfferViews(offers)})
}

// OfferBookings lists the bookings on one of the driver's cupos. Only
// the owning driver or an admin may see them.
func (h *OfferHandler) OfferBookings(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	offer, err := h.Offers.GetByID(ctx, id)
	if err != nil {
		return respondErr(c, err)
	}
	if !policy.CanManageOffer(actorFrom(c), offer) {
		return respondErr(c, repository.ErrForbidden)
	}
	bookings, err := h.Bookings.ListByOffer(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": bookings})
}
