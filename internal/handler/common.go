// Package handler exposes the HTTP surface: auth, cupos, bookings,
// notifications, ratings and favorites. Handlers bind input, call the
// repositories or engines and translate sentinel errors into status
// codes; business rules live in internal/service.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cupoapp/cupo-backend/internal/model"
	"github.com/cupoapp/cupo-backend/internal/policy"
	"github.com/cupoapp/cupo-backend/internal/repository"
)

// actorFrom rebuilds the policy actor from the claims JWTAuth stored in
// the context.
func actorFrom(c echo.Context) policy.Actor {
	id, _ := c.Get("user_id").(uint64)
	role, _ := c.Get("role").(string)
	return policy.Actor{UserID: id, Role: role}
}

// pathID parses the named path parameter as an unsigned ID.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// respondErr maps sentinel errors onto HTTP responses. Unknown errors
// become a generic 500 so internals never leak to clients.
func respondErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrOfferNotFound),
		errors.Is(err, repository.ErrBookingNotFound),
		errors.Is(err, repository.ErrNotificationNotFound),
		errors.Is(err, repository.ErrFavoriteNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})

	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})

	case errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, repository.ErrDuplicateBooking),
		errors.Is(err, repository.ErrStateConflict),
		errors.Is(err, repository.ErrSeatsUnavailable),
		errors.Is(err, repository.ErrOfferNotBookable),
		errors.Is(err, repository.ErrOfferDeparted),
		errors.Is(err, repository.ErrOwnOffer),
		errors.Is(err, repository.ErrRatingExists),
		errors.Is(err, repository.ErrFavoriteExists),
		errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})

	case errors.Is(err, repository.ErrInvalidZone),
		errors.Is(err, repository.ErrPastDeparture),
		errors.Is(err, repository.ErrSeatsExceedCap),
		errors.Is(err, repository.ErrSeatsOverbooked),
		errors.Is(err, repository.ErrNotParticipant),
		errors.Is(err, repository.ErrBookingNotCompleted):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// offerView is the JSON shape of a cupo in API responses.
type offerView struct {
	ID             uint64    `json:"id"`
	DriverID       uint64    `json:"driver_id"`
	Destination    string    `json:"destination"`
	Description    string    `json:"description,omitempty"`
	MeetingPoint   string    `json:"meeting_point"`
	TotalSeats     uint8     `json:"total_seats"`
	AvailableSeats uint8     `json:"available_seats"`
	DepartureTime  time.Time `json:"departure_time"`
	PriceCents     uint32    `json:"price_cents"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func toOfferView(o *model.Offer) offerView {
	return offerView{
		ID:             o.ID,
		DriverID:       o.DriverID,
		Destination:    o.Destination,
		Description:    o.Description,
		MeetingPoint:   o.MeetingPoint,
		TotalSeats:     o.TotalSeats,
		AvailableSeats: o.AvailableSeats,
		DepartureTime:  o.DepartureTime,
		PriceCents:     o.PriceCents,
		Status:         string(o.Status),
		CreatedAt:      o.CreatedAt,
	}
}

func toOfferViews(offers []model.Offer) []offerView {
	out := make([]offerView, 0, len(offers))
	for i := range offers {
		out = append(out, toOfferView(&offers[i]))
	}
	return out
}

// bookingView is the JSON shape of a booking in API responses.
type bookingView struct {
	ID          uint64    `json:"id"`
	CupoID      uint64    `json:"cupo_id"`
	RequesterID uint64    `json:"requester_id"`
	Seats       uint8     `json:"seats"`
	TotalCents  uint64    `json:"total_cents"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

func toBookingView(b *model.Booking) bookingView {
	return bookingView{
		ID:          b.ID,
		CupoID:      b.OfferID,
		RequesterID: b.RequesterID,
		Seats:       b.Seats,
		TotalCents:  b.TotalCents,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
	}
}
