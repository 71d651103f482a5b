package service

import (
	"context"

	"github.com/cupoapp/cupo-backend/internal/model"
)

// ReservationStore is the transactional surface the reservation engine
// runs on. repository.ReservationStore is the production implementation;
// tests substitute an in-memory fake.
type ReservationStore interface {
	GetOffer(ctx context.Context, offerID uint64) (*model.Offer, error)
	GetBooking(ctx context.Context, bookingID uint64) (*model.Booking, error)
	HasActiveBooking(ctx context.Context, offerID, requesterID uint64) (bool, error)
	// CreateWithSeatHold inserts the booking and decrements the cupo's
	// seats atomically, returning repository.ErrSeatsUnavailable when
	// the conditional decrement matches no row.
	CreateWithSeatHold(ctx context.Context, b *model.Booking) error
	// Transition moves the booking from one status to another and
	// restores held seats when the move leaves a seat-holding status.
	// A stale `from` yields repository.ErrStateConflict.
	Transition(ctx context.Context, bookingID uint64, from, to model.BookingStatus) error
}

// OfferStore is the persistence surface the offer engine runs on,
// implemented by repository.OfferRepo.
type OfferStore interface {
	Create(ctx context.Context, o *model.Offer) error
	GetByID(ctx context.Context, id uint64) (*model.Offer, error)
	Update(ctx context.Context, o *model.Offer) error
	Cancel(ctx context.Context, id uint64) error
	Delete(ctx context.Context, id uint64) error
	Deactivate(ctx context.Context, id uint64) error
}

// BookingLister exposes the one booking query the offer engine needs:
// who to tell when a cupo changes under their booking.
type BookingLister interface {
	ActiveRequesters(ctx context.Context, offerID uint64) ([]uint64, error)
}

// Notifier delivers a notification to a user. Implementations are
// best-effort: they log failures internally and never report them, so
// engine operations that already committed stay committed.
type Notifier interface {
	Emit(ctx context.Context, userID uint64, typ model.NotificationType, message string)
}
