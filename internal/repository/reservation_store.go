package repository

import (
	"context"
	"database/sql"

	"github.com/cupoapp/cupo-backend/internal/model"
)

// ReservationStore couples the offer and booking repositories behind
// the transactional operations the reservation engine needs. Each
// method is one atomic unit of work: the booking row and the seat
// counter on the cupo always change together or not at all.
type ReservationStore struct {
	db       *sql.DB
	offers   *OfferRepo
	bookings *BookingRepo
}

// NewReservationStore builds a store over the shared database handle.
func NewReservationStore(db *sql.DB, offers *OfferRepo, bookings *BookingRepo) *ReservationStore {
	return &ReservationStore{db: db, offers: offers, bookings: bookings}
}

// GetOffer returns the cupo regardless of its active flag; the engine
// decides how to treat inactive offers.
func (s *ReservationStore) GetOffer(ctx context.Context, offerID uint64) (*model.Offer, error) {
	return s.offers.GetByID(ctx, offerID)
}

// GetBooking returns a single booking.
func (s *ReservationStore) GetBooking(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	return s.bookings.GetByID(ctx, bookingID)
}

// HasActiveBooking reports whether the requester already holds seats
// on the cupo.
func (s *ReservationStore) HasActiveBooking(ctx context.Context, offerID, requesterID uint64) (bool, error) {
	return s.bookings.HasActive(ctx, offerID, requesterID)
}

// CreateWithSeatHold inserts the booking and decrements the cupo's
// available seats in one transaction. The decrement is the conditional
// ReserveSeatsTx statement, so when seats run out between the engine's
// precondition read and this call, the whole unit rolls back and
// ErrSeatsUnavailable is returned. This is the guarantee that keeps
// concurrent bookings from overbooking a cupo.
func (s *ReservationStore) CreateWithSeatHold(ctx context.Context, b *model.Booking) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := s.offers.ReserveSeatsTx(ctx, tx, b.OfferID, b.Seats); err != nil {
		return err
	}
	if err := s.bookings.CreateTx(ctx, tx, b); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// Transition moves a booking from one status to another and, when the
// source status held seats and the target does not, restores them to
// the cupo in the same transaction. The booking row is locked first so
// the seat restore pairs with exactly one successful transition; a
// repeated call finds the status already changed and fails with
// ErrStateConflict without touching the seat counter again.
func (s *ReservationStore) Transition(ctx context.Context, bookingID uint64, from, to model.BookingStatus) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	b, err := s.bookings.GetForUpdateTx(ctx, tx, bookingID)
	if err != nil {
		return err
	}
	if err := s.bookings.UpdateStatusTx(ctx, tx, bookingID, from, to); err != nil {
		return err
	}
	if from.HoldsSeats() && !to.HoldsSeats() {
		if err := s.offers.RestoreSeatsTx(ctx, tx, b.OfferID, b.Seats); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
