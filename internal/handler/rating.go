package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cupoapp/cupo-backend/internal/model"
	"github.com/cupoapp/cupo-backend/internal/policy"
	"github.com/cupoapp/cupo-backend/internal/repository"
)

// RatingHandler serves trip ratings. A rating is tied to a COMPLETED
// booking and always targets the counterpart: the requester rates the
// driver, the driver rates the requester.
type RatingHandler struct {
	Ratings  *repository.RatingRepo
	Bookings *repository.BookingRepo
	Offers   *repository.OfferRepo
}

func NewRatingHandler(ratings *repository.RatingRepo, bookings *repository.BookingRepo, offers *repository.OfferRepo) *RatingHandler {
	return &RatingHandler{Ratings: ratings, Bookings: bookings, Offers: offers}
}

type rateReq struct {
	Stars   uint8  `json:"stars"`
	Comment string `json:"comment"`
}

type ratingView struct {
	ID        uint64    `json:"id"`
	BookingID uint64    `json:"booking_id"`
	RaterID   uint64    `json:"rater_id"`
	Stars     uint8     `json:"stars"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Rate records the caller's rating of their counterpart on a completed
// trip. One rating per participant per booking.
func (h *RatingHandler) Rate(c echo.Context) error {
	bookingID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req rateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Stars < model.MinStars || req.Stars > model.MaxStars {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "stars must be between 1 and 5"})
	}

	ctx := c.Request().Context()
	booking, err := h.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return respondErr(c, err)
	}
	if booking.Status != model.BookingCompleted {
		return respondErr(c, repository.ErrBookingNotCompleted)
	}
	offer, err := h.Offers.GetByID(ctx, booking.OfferID)
	if err != nil {
		return respondErr(c, err)
	}
	actor := actorFrom(c)
	rateeID, ok := policy.CanRate(actor, offer, booking)
	if !ok {
		return respondErr(c, repository.ErrNotParticipant)
	}

	rating := &model.Rating{
		BookingID: bookingID,
		RaterID:   actor.UserID,
		RateeID:   rateeID,
		Stars:     req.Stars,
		Comment:   req.Comment,
	}
	if err := h.Ratings.Create(ctx, rating); err != nil {
		return respondErr(c, err)
	}
	return c.JSON(http.StatusCreated, ratingView{
		ID:        rating.ID,
		BookingID: rating.BookingID,
		RaterID:   rating.RaterID,
		Stars:     rating.Stars,
		Comment:   rating.Comment,
		CreatedAt: rating.CreatedAt,
	})
}

// ForUser lists the ratings a user has received plus their average.
func (h *RatingHandler) ForUser(c echo.Context) error {
	userID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx := c.Request().Context()
	items, err := h.Ratings.ListForUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	avg, count, err := h.Ratings.AverageForUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	views := make([]ratingView, 0, len(items))
	for _, r := range items {
		views = append(views, ratingView{
			ID:        r.ID,
			BookingID: r.BookingID,
			RaterID:   r.RaterID,
			Stars:     r.Stars,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":   views,
		"average": avg,
		"count":   count,
	})
}
