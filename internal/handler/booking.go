package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cupoapp/cupo-backend/internal/repository"
	"github.com/cupoapp/cupo-backend/internal/service"
)

// BookingHandler serves the booking endpoints. All lifecycle mutations
// run through the reservation engine, which owns the seat math.
type BookingHandler struct {
	Svc      *service.ReservationService
	Bookings *repository.BookingRepo
}

func NewBookingHandler(svc *service.ReservationService, bookings *repository.BookingRepo) *BookingHandler {
	return &BookingHandler{Svc: svc, Bookings: bookings}
}

type createBookingReq struct {
	CupoID uint64 `json:"cupo_id"`
	Seats  uint8  `json:"seats"`
}

// Create places a PENDING booking, holding the seats immediately.
func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CupoID == 0 || req.Seats == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cupo_id and seats required"})
	}
	actor := actorFrom(c)
	booking, err := h.Svc.CreateBooking(c.Request().Context(), actor.UserID, req.CupoID, req.Seats)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingView(booking))
}

// Mine lists the caller's bookings with cupo details.
func (h *BookingHandler) Mine(c echo.Context) error {
	actor := actorFrom(c)
	items, err := h.Bookings.ListByRequester(c.Request().Context(), actor.UserID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Confirm lets the cupo's driver accept a PENDING booking.
func (h *BookingHandler) Confirm(c echo.Context) error {
	return h.transition(c, h.Svc.ConfirmBooking)
}

// Reject lets the cupo's driver refuse a PENDING booking; the held
// seats return to the cupo.
func (h *BookingHandler) Reject(c echo.Context) error {
	return h.transition(c, h.Svc.RejectBooking)
}

// Cancel lets the requester withdraw a PENDING or CONFIRMED booking;
// the held seats return to the cupo.
func (h *BookingHandler) Cancel(c echo.Context) error {
	return h.transition(c, h.Svc.CancelBooking)
}

// Complete lets the driver close a CONFIRMED booking after departure.
func (h *BookingHandler) Complete(c echo.Context) error {
	return h.transition(c, h.Svc.CompleteBooking)
}

func (h *BookingHandler) transition(c echo.Context, op service.BookingTransition) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	booking, err := op(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusOK, toBookingView(booking))
}
