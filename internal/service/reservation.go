package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cupoapp/cupo-backend/internal/model"
	"github.com/cupoapp/cupo-backend/internal/observability"
	"github.com/cupoapp/cupo-backend/internal/policy"
	"github.com/cupoapp/cupo-backend/internal/repository"
)

// ReservationService drives the booking lifecycle: create, confirm,
// reject, cancel, complete. Seats are held from PENDING on, so every
// transition out of PENDING or CONFIRMED into a non-holding status
// restores them; the store performs the hold and the restore inside the
// same transaction as the status change.
type ReservationService struct {
	store    ReservationStore
	notifier Notifier
	now      func() time.Time
}

// NewReservationService wires the engine to its store and notifier.
func NewReservationService(store ReservationStore, notifier Notifier) *ReservationService {
	return &ReservationService{store: store, notifier: notifier, now: func() time.Time { return time.Now().UTC() }}
}

// BookingTransition is the shared shape of the confirm, reject, cancel
// and complete operations, so handlers can route them uniformly.
type BookingTransition func(ctx context.Context, actor policy.Actor, bookingID uint64) (*model.Booking, error)

// CreateBooking places a PENDING booking for the requester on the cupo,
// holding the seats immediately. Preconditions are checked in a fixed
// order, each with its own error: duplicate booking, cupo bookable,
// departure in the future, enough seats, not the driver's own cupo.
// The seat check here is advisory; the authoritative check is the
// conditional decrement inside CreateWithSeatHold, so two racing
// requests can never jointly exceed the capacity.
func (s *ReservationService) CreateBooking(ctx context.Context, requesterID, offerID uint64, seats uint8) (*model.Booking, error) {
	if seats < 1 {
		return nil, fmt.Errorf("%w: seats must be at least 1", repository.ErrConflict)
	}
	offer, err := s.store.GetOffer(ctx, offerID)
	if err != nil {
		return nil, err
	}
	dup, err := s.store.HasActiveBooking(ctx, offerID, requesterID)
	if err != nil {
		return nil, err
	}
	if dup {
		observability.BookingConflicts.Inc()
		return nil, repository.ErrDuplicateBooking
	}
	now := s.now()
	if !offer.Active || offer.Status != model.OfferAvailable {
		observability.BookingConflicts.Inc()
		return nil, repository.ErrOfferNotBookable
	}
	if !offer.DepartureTime.After(now) {
		observability.BookingConflicts.Inc()
		return nil, repository.ErrOfferDeparted
	}
	if offer.AvailableSeats < seats {
		observability.BookingConflicts.Inc()
		return nil, repository.ErrSeatsUnavailable
	}
	if requesterID == offer.DriverID {
		observability.BookingConflicts.Inc()
		return nil, repository.ErrOwnOffer
	}

	booking := &model.Booking{
		OfferID:     offerID,
		RequesterID: requesterID,
		Seats:       seats,
		TotalCents:  uint64(offer.PriceCents) * uint64(seats),
		Status:      model.BookingPending,
	}
	if err := s.store.CreateWithSeatHold(ctx, booking); err != nil {
		if errors.Is(err, repository.ErrSeatsUnavailable) {
			observability.BookingConflicts.Inc()
		}
		return nil, err
	}
	observability.BookingsCreated.Inc()

	msg := fmt.Sprintf("Booking for %d seat(s) to %s requested", seats, offer.Destination)
	s.notifier.Emit(ctx, requesterID, model.NotifyBookingCreated, msg)
	s.notifier.Emit(ctx, offer.DriverID, model.NotifyBookingCreated,
		fmt.Sprintf("New booking request: %d seat(s) on your cupo to %s", seats, offer.Destination))
	return booking, nil
}

// ConfirmBooking moves a PENDING booking to CONFIRMED. Only the driver
// of the cupo may confirm, never the requester. Seats do not change;
// they were held when the booking was created.
func (s *ReservationService) ConfirmBooking(ctx context.Context, actor policy.Actor, bookingID uint64) (*model.Booking, error) {
	booking, offer, err := s.loadPair(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !policy.CanDecideBooking(actor, offer, booking) {
		return nil, repository.ErrForbidden
	}
	if booking.Status != model.BookingPending {
		return nil, repository.ErrStateConflict
	}
	if err := s.store.Transition(ctx, bookingID, model.BookingPending, model.BookingConfirmed); err != nil {
		return nil, err
	}
	booking.Status = model.BookingConfirmed
	observability.BookingsConfirmed.Inc()

	msg := fmt.Sprintf("Your booking to %s was confirmed", offer.Destination)
	s.notifier.Emit(ctx, booking.RequesterID, model.NotifyBookingConfirmed, msg)
	s.notifier.Emit(ctx, offer.DriverID, model.NotifyBookingConfirmed,
		fmt.Sprintf("You confirmed a booking for %d seat(s) to %s", booking.Seats, offer.Destination))
	return booking, nil
}

// RejectBooking moves a PENDING booking to REJECTED and restores its
// seats to the cupo. Same authorization as ConfirmBooking.
func (s *ReservationService) RejectBooking(ctx context.Context, actor policy.Actor, bookingID uint64) (*model.Booking, error) {
	booking, offer, err := s.loadPair(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !policy.CanDecideBooking(actor, offer, booking) {
		return nil, repository.ErrForbidden
	}
	if booking.Status != model.BookingPending {
		return nil, repository.ErrStateConflict
	}
	if err := s.store.Transition(ctx, bookingID, model.BookingPending, model.BookingRejected); err != nil {
		return nil, err
	}
	booking.Status = model.BookingRejected
	observability.BookingsRejected.Inc()

	msg := fmt.Sprintf("Your booking to %s was rejected", offer.Destination)
	s.notifier.Emit(ctx, booking.RequesterID, model.NotifyBookingCancelled, msg)
	s.notifier.Emit(ctx, offer.DriverID, model.NotifyBookingCancelled,
		fmt.Sprintf("You rejected a booking for %d seat(s) to %s", booking.Seats, offer.Destination))
	return booking, nil
}

// CancelBooking moves a PENDING or CONFIRMED booking to CANCELLED and
// restores its seats. Only the requester (or an admin) may cancel. A
// booking already in a terminal state is a state conflict, not a
// silent no-op.
func (s *ReservationService) CancelBooking(ctx context.Context, actor policy.Actor, bookingID uint64) (*model.Booking, error) {
	booking, offer, err := s.loadPair(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !policy.CanCancelBooking(actor, booking) {
		return nil, repository.ErrForbidden
	}
	if !booking.Status.HoldsSeats() {
		return nil, repository.ErrStateConflict
	}
	if err := s.store.Transition(ctx, bookingID, booking.Status, model.BookingCancelled); err != nil {
		return nil, err
	}
	booking.Status = model.BookingCancelled
	observability.BookingsCancelled.Inc()

	msg := fmt.Sprintf("Your booking to %s was cancelled", offer.Destination)
	s.notifier.Emit(ctx, booking.RequesterID, model.NotifyBookingCancelled, msg)
	s.notifier.Emit(ctx, offer.DriverID, model.NotifyBookingCancelled,
		fmt.Sprintf("A booking for %d seat(s) to %s was cancelled", booking.Seats, offer.Destination))
	return booking, nil
}

// CompleteBooking moves a CONFIRMED booking to COMPLETED once the cupo
// has departed. Only the driver may complete; completion is what
// enables the rating flow.
func (s *ReservationService) CompleteBooking(ctx context.Context, actor policy.Actor, bookingID uint64) (*model.Booking, error) {
	booking, offer, err := s.loadPair(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !policy.CanCompleteBooking(actor, offer, booking) {
		return nil, repository.ErrForbidden
	}
	if booking.Status != model.BookingConfirmed {
		return nil, repository.ErrStateConflict
	}
	if offer.DepartureTime.After(s.now()) {
		return nil, fmt.Errorf("%w: cupo has not departed yet", repository.ErrConflict)
	}
	if err := s.store.Transition(ctx, bookingID, model.BookingConfirmed, model.BookingCompleted); err != nil {
		return nil, err
	}
	booking.Status = model.BookingCompleted

	msg := fmt.Sprintf("Your trip to %s was completed. You can now rate the driver", offer.Destination)
	s.notifier.Emit(ctx, booking.RequesterID, model.NotifyBookingCompleted, msg)
	return booking, nil
}

func (s *ReservationService) loadPair(ctx context.Context, bookingID uint64) (*model.Booking, *model.Offer, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	offer, err := s.store.GetOffer(ctx, booking.OfferID)
	if err != nil {
		return nil, nil, err
	}
	return booking, offer, nil
}
