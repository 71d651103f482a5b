package model

import "time"

// BookingStatus is the lifecycle state of a booking. Seats are held
// from the moment a booking is PENDING, not only once CONFIRMED, so
// REJECTED and CANCELLED transitions must restore them.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingRejected  BookingStatus = "REJECTED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// CanTransitionTo reports whether the booking status machine permits
// moving from s to next. REJECTED, CANCELLED and COMPLETED are
// terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingRejected || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCancelled || next == BookingCompleted
	default:
		return false
	}
}

// Terminal reports whether no further transition is permitted from s.
func (s BookingStatus) Terminal() bool {
	return s == BookingRejected || s == BookingCancelled || s == BookingCompleted
}

// HoldsSeats reports whether bookings in state s count against the
// offer's available seats.
func (s BookingStatus) HoldsSeats() bool {
	return s == BookingPending || s == BookingConfirmed
}

// Booking records a passenger's request to occupy seats on an offer.
// TotalCents is frozen at creation time (offer price × seats) and is
// never recomputed, even if the offer's price later changes.
//
// Fields:
//  ID          – primary key identifier.
//  OfferID     – cupo being booked; immutable.
//  RequesterID – passenger who requested the seats; immutable.
//  Seats       – number of seats requested, ≥ 1.
//  TotalCents  – frozen total price in cents.
//  Status      – PENDING, CONFIRMED, REJECTED, CANCELLED or COMPLETED.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Booking struct {
	ID          uint64        // bookings.id
	OfferID     uint64        // bookings.cupo_id
	RequesterID uint64        // bookings.requester_id
	Seats       uint8         // bookings.seats
	TotalCents  uint64        // bookings.total_cents
	Status      BookingStatus // bookings.status
	CreatedAt   time.Time     // bookings.created_at
	UpdatedAt   time.Time     // bookings.updated_at
}
