// Package repository defines the data access layer and the sentinel
// error values reused across repositories and services. Handlers
// translate these sentinels into HTTP responses, which keeps the SQL
// details out of the transport layer.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state. Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")

// Not-found sentinels, one per aggregate. Distinguishing them from
// ErrForbidden aids debugging even when the API collapses both into a
// 404.
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrOfferNotFound        = errors.New("cupo not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrFavoriteNotFound     = errors.New("favorite not found")
)

// ErrEmailExists is returned by UserRepo.Create when the email is
// already registered.
var ErrEmailExists = errors.New("email already exists")

// Booking / seat-math conflicts. Each precondition of the reservation
// engine fails with its own sentinel so the caller receives a specific
// reason rather than a generic rejection.
var (
	// ErrSeatsUnavailable means the conditional seat decrement matched no
	// row: the cupo has fewer available seats than requested, or stopped
	// being bookable between the precondition read and the update.
	ErrSeatsUnavailable = errors.New("not enough available seats")

	// ErrStateConflict means a status transition was requested from a
	// status that does not permit it (e.g. confirming a booking twice).
	ErrStateConflict = errors.New("status does not allow this transition")

	// ErrDuplicateBooking means the requester already holds a PENDING or
	// CONFIRMED booking on the same cupo.
	ErrDuplicateBooking = errors.New("an active booking for this cupo already exists")

	// ErrOfferNotBookable means the cupo is inactive or not AVAILABLE.
	ErrOfferNotBookable = errors.New("cupo is not open for booking")

	// ErrOfferDeparted means the cupo's departure time has already passed.
	ErrOfferDeparted = errors.New("cupo departure time has passed")

	// ErrOwnOffer means a driver attempted to book their own cupo.
	ErrOwnOffer = errors.New("cannot book your own cupo")
)

// Offer validation conflicts raised by the offer engine.
var (
	ErrInvalidZone     = errors.New("destination is not in the zone catalog")
	ErrPastDeparture   = errors.New("departure time must be in the future")
	ErrSeatsExceedCap  = errors.New("available seats cannot exceed total seats")
	ErrSeatsOverbooked = errors.New("active bookings exceed the new capacity")
)

// Rating and favorite conflicts.
var (
	ErrRatingExists        = errors.New("this booking was already rated by you")
	ErrNotParticipant      = errors.New("you did not take part in this trip")
	ErrBookingNotCompleted = errors.New("only completed trips can be rated")
	ErrFavoriteExists      = errors.New("cupo is already in your favorites")
)
