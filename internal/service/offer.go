package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cupoapp/cupo-backend/internal/model"
	"github.com/cupoapp/cupo-backend/internal/observability"
	"github.com/cupoapp/cupo-backend/internal/policy"
	"github.com/cupoapp/cupo-backend/internal/repository"
)

// DeletionPolicy controls what DeleteOffer does with the row. Hard
// deletion is for non-production environments; production deployments
// soft-delete so the cupo and its bookings stay auditable.
type DeletionPolicy int

const (
	SoftDelete DeletionPolicy = iota
	HardDelete
)

// ParseDeletionPolicy maps the OFFER_DELETE_MODE value to a policy.
// Anything other than "hard" falls back to soft deletion.
func ParseDeletionPolicy(s string) DeletionPolicy {
	if strings.EqualFold(strings.TrimSpace(s), "hard") {
		return HardDelete
	}
	return SoftDelete
}

// OfferService drives the cupo lifecycle: create, update, cancel,
// delete. Mutations are gated on ownership through the policy package
// and fan change notifications out to the driver and to users holding
// active bookings.
type OfferService struct {
	offers   OfferStore
	bookings BookingLister
	notifier Notifier
	deletion DeletionPolicy
	now      func() time.Time
}

// NewOfferService wires the engine to its stores and notifier.
func NewOfferService(offers OfferStore, bookings BookingLister, notifier Notifier, deletion DeletionPolicy) *OfferService {
	return &OfferService{
		offers:   offers,
		bookings: bookings,
		notifier: notifier,
		deletion: deletion,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// OfferInput carries the fields a driver supplies when posting a cupo.
// AvailableSeats is optional; zero means "all seats available".
type OfferInput struct {
	Destination    string
	Description    string
	MeetingPoint   string
	TotalSeats     uint8
	AvailableSeats uint8
	DepartureTime  time.Time
	PriceCents     uint32
}

// CreateOffer validates and persists a new cupo for the driver. The
// cupo starts AVAILABLE and active with all seats free unless the input
// holds some back.
func (s *OfferService) CreateOffer(ctx context.Context, driverID uint64, in OfferInput) (*model.Offer, error) {
	if !model.ValidZone(in.Destination) {
		return nil, repository.ErrInvalidZone
	}
	if in.TotalSeats < model.MinTotalSeats || in.TotalSeats > model.MaxTotalSeats {
		return nil, fmt.Errorf("%w: total seats must be between %d and %d",
			repository.ErrConflict, model.MinTotalSeats, model.MaxTotalSeats)
	}
	available := in.AvailableSeats
	if available == 0 {
		available = in.TotalSeats
	}
	if available > in.TotalSeats {
		return nil, repository.ErrSeatsExceedCap
	}
	if !in.DepartureTime.After(s.now()) {
		return nil, repository.ErrPastDeparture
	}

	offer := &model.Offer{
		DriverID:       driverID,
		Destination:    in.Destination,
		Description:    in.Description,
		MeetingPoint:   in.MeetingPoint,
		TotalSeats:     in.TotalSeats,
		AvailableSeats: available,
		DepartureTime:  in.DepartureTime.UTC(),
		PriceCents:     in.PriceCents,
		Status:         model.OfferAvailable,
		Active:         true,
	}
	if err := s.offers.Create(ctx, offer); err != nil {
		return nil, err
	}
	observability.OffersCreated.Inc()

	s.notifier.Emit(ctx, driverID, model.NotifyOfferCreated,
		fmt.Sprintf("Your cupo to %s on %s was published",
			offer.Destination, offer.DepartureTime.Format("2006-01-02 15:04")))
	return offer, nil
}

// OfferUpdate carries the optional field changes for UpdateOffer. Nil
// means "leave unchanged".
type OfferUpdate struct {
	Destination    *string
	Description    *string
	MeetingPoint   *string
	TotalSeats     *uint8
	AvailableSeats *uint8
	DepartureTime  *time.Time
	PriceCents     *uint32
}

// UpdateOffer applies a partial update to a cupo. Seat capacity edits
// follow two rules: when both seat fields are given, available must not
// exceed total; when only total changes, available shifts by the same
// delta and the edit is rejected if active bookings already exceed the
// new capacity. A changed departure time must still be in the future.
// The driver receives a field-diff notification and active bookers are
// told their cupo changed.
func (s *OfferService) UpdateOffer(ctx context.Context, actor policy.Actor, offerID uint64, up OfferUpdate) (*model.Offer, error) {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageOffer(actor, offer) {
		return nil, repository.ErrForbidden
	}
	if offer.Status.Terminal() || !offer.Active {
		return nil, repository.ErrStateConflict
	}

	var changed []string
	if up.Destination != nil && *up.Destination != offer.Destination {
		if !model.ValidZone(*up.Destination) {
			return nil, repository.ErrInvalidZone
		}
		offer.Destination = *up.Destination
		changed = append(changed, "destination")
	}
	if up.Description != nil && *up.Description != offer.Description {
		offer.Description = *up.Description
		changed = append(changed, "description")
	}
	if up.MeetingPoint != nil && *up.MeetingPoint != offer.MeetingPoint {
		offer.MeetingPoint = *up.MeetingPoint
		changed = append(changed, "meeting point")
	}
	switch {
	case up.TotalSeats != nil && up.AvailableSeats != nil:
		if *up.TotalSeats < model.MinTotalSeats || *up.TotalSeats > model.MaxTotalSeats {
			return nil, fmt.Errorf("%w: total seats must be between %d and %d",
				repository.ErrConflict, model.MinTotalSeats, model.MaxTotalSeats)
		}
		if *up.AvailableSeats > *up.TotalSeats {
			return nil, repository.ErrSeatsExceedCap
		}
		if *up.TotalSeats != offer.TotalSeats || *up.AvailableSeats != offer.AvailableSeats {
			offer.TotalSeats = *up.TotalSeats
			offer.AvailableSeats = *up.AvailableSeats
			changed = append(changed, "seats")
		}
	case up.TotalSeats != nil && *up.TotalSeats != offer.TotalSeats:
		if *up.TotalSeats < model.MinTotalSeats || *up.TotalSeats > model.MaxTotalSeats {
			return nil, fmt.Errorf("%w: total seats must be between %d and %d",
				repository.ErrConflict, model.MinTotalSeats, model.MaxTotalSeats)
		}
		held := int(offer.TotalSeats) - int(offer.AvailableSeats)
		newAvailable := int(*up.TotalSeats) - held
		if newAvailable < 0 {
			return nil, repository.ErrSeatsOverbooked
		}
		offer.TotalSeats = *up.TotalSeats
		offer.AvailableSeats = uint8(newAvailable)
		changed = append(changed, "seats")
	case up.AvailableSeats != nil && *up.AvailableSeats != offer.AvailableSeats:
		if *up.AvailableSeats > offer.TotalSeats {
			return nil, repository.ErrSeatsExceedCap
		}
		offer.AvailableSeats = *up.AvailableSeats
		changed = append(changed, "seats")
	}
	if up.DepartureTime != nil && !up.DepartureTime.Equal(offer.DepartureTime) {
		if !up.DepartureTime.After(s.now()) {
			return nil, repository.ErrPastDeparture
		}
		offer.DepartureTime = up.DepartureTime.UTC()
		changed = append(changed, "departure time")
	}
	if up.PriceCents != nil && *up.PriceCents != offer.PriceCents {
		offer.PriceCents = *up.PriceCents
		changed = append(changed, "price")
	}

	if len(changed) == 0 {
		return offer, nil
	}
	if err := s.offers.Update(ctx, offer); err != nil {
		return nil, err
	}

	diff := strings.Join(changed, ", ")
	s.notifier.Emit(ctx, offer.DriverID, model.NotifyOfferModified,
		fmt.Sprintf("Your cupo to %s was updated: %s", offer.Destination, diff))
	s.notifyActiveBookers(ctx, offer, model.NotifyOfferModified,
		fmt.Sprintf("The cupo to %s you booked changed: %s", offer.Destination, diff))
	return offer, nil
}

// CancelOffer marks a cupo CANCELLED and inactive. Cancelling an
// already-cancelled cupo is a state conflict. Active bookers are
// notified; their bookings stay as they are and can still be cancelled
// by the requesters to free up their records.
func (s *OfferService) CancelOffer(ctx context.Context, actor policy.Actor, offerID uint64) error {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return err
	}
	if !policy.CanManageOffer(actor, offer) {
		return repository.ErrForbidden
	}
	if err := s.offers.Cancel(ctx, offerID); err != nil {
		return err
	}
	observability.OffersCancelled.Inc()

	s.notifyActiveBookers(ctx, offer, model.NotifyOfferCancelled,
		fmt.Sprintf("The cupo to %s you booked was cancelled by the driver", offer.Destination))
	return nil
}

// DeleteOffer removes a cupo according to the configured deletion
// policy: the row is dropped under HardDelete, hidden under SoftDelete.
func (s *OfferService) DeleteOffer(ctx context.Context, actor policy.Actor, offerID uint64) error {
	offer, err := s.offers.GetByID(ctx, offerID)
	if err != nil {
		return err
	}
	if !policy.CanManageOffer(actor, offer) {
		return repository.ErrForbidden
	}
	if s.deletion == HardDelete {
		return s.offers.Delete(ctx, offerID)
	}
	return s.offers.Deactivate(ctx, offerID)
}

func (s *OfferService) notifyActiveBookers(ctx context.Context, offer *model.Offer, typ model.NotificationType, msg string) {
	ids, err := s.bookings.ActiveRequesters(ctx, offer.ID)
	if err != nil {
		// Notification fan-out is best-effort; the mutation committed.
		return
	}
	for _, id := range ids {
		s.notifier.Emit(ctx, id, typ, msg)
	}
}
