package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupoapp/cupo-backend/internal/model"
	"github.com/cupoapp/cupo-backend/internal/policy"
	"github.com/cupoapp/cupo-backend/internal/repository"
)

func newOfferEngine(t *testing.T, deletion DeletionPolicy) (*OfferService, *fakeStore, *fakeNotifier) {
	t.Helper()
	store := newFakeStore()
	notifier := &fakeNotifier{}
	return NewOfferService(store, store, notifier, deletion), store, notifier
}

func validInput() OfferInput {
	return OfferInput{
		Destination:   model.ZoneCentro,
		MeetingPoint:  "north parking lot",
		TotalSeats:    4,
		DepartureTime: time.Now().UTC().Add(3 * time.Hour),
		PriceCents:    2500,
	}
}

func TestParseDeletionPolicy(t *testing.T) {
	assert.Equal(t, HardDelete, ParseDeletionPolicy("hard"))
	assert.Equal(t, HardDelete, ParseDeletionPolicy(" HARD "))
	assert.Equal(t, SoftDelete, ParseDeletionPolicy("soft"))
	assert.Equal(t, SoftDelete, ParseDeletionPolicy(""))
	assert.Equal(t, SoftDelete, ParseDeletionPolicy("anything"))
}

func TestCreateOffer(t *testing.T) {
	ctx := context.Background()
	svc, _, notifier := newOfferEngine(t, SoftDelete)

	o, err := svc.CreateOffer(ctx, driverID, validInput())
	require.NoError(t, err)

	assert.Equal(t, model.OfferAvailable, o.Status)
	assert.True(t, o.Active)
	assert.Equal(t, uint8(4), o.AvailableSeats)
	assert.True(t, notifier.sentTo(driverID, model.NotifyOfferCreated))
}

func TestCreateOfferValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newOfferEngine(t, SoftDelete)

	in := validInput()
	in.Destination = "MOON"
	_, err := svc.CreateOffer(ctx, driverID, in)
	assert.ErrorIs(t, err, repository.ErrInvalidZone)

	in = validInput()
	in.TotalSeats = 0
	_, err = svc.CreateOffer(ctx, driverID, in)
	assert.ErrorIs(t, err, repository.ErrConflict)

	in = validInput()
	in.TotalSeats = 9
	_, err = svc.CreateOffer(ctx, driverID, in)
	assert.ErrorIs(t, err, repository.ErrConflict)

	in = validInput()
	in.AvailableSeats = 5
	_, err = svc.CreateOffer(ctx, driverID, in)
	assert.ErrorIs(t, err, repository.ErrSeatsExceedCap)

	in = validInput()
	in.DepartureTime = time.Now().UTC().Add(-time.Hour)
	_, err = svc.CreateOffer(ctx, driverID, in)
	assert.ErrorIs(t, err, repository.ErrPastDeparture)
}

func TestUpdateOfferSeatRules(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newOfferEngine(t, SoftDelete)

	o, err := svc.CreateOffer(ctx, driverID, validInput())
	require.NoError(t, err)

	// Two seats held by a confirmed booking.
	store.mu.Lock()
	store.offers[o.ID].AvailableSeats = 2
	store.nextID++
	store.bookings[store.nextID] = &model.Booking{
		ID: store.nextID, OfferID: o.ID, RequesterID: passengerID,
		Seats: 2, Status: model.BookingConfirmed,
	}
	store.mu.Unlock()

	// Shrinking total shifts available by the same delta.
	three := uint8(3)
	got, err := svc.UpdateOffer(ctx, driverActor(), o.ID, OfferUpdate{TotalSeats: &three})
	require.NoError(t, err)
	assert.Equal(t, uint8(3), got.TotalSeats)
	assert.Equal(t, uint8(1), got.AvailableSeats)

	// Shrinking below the held seats is rejected.
	one := uint8(1)
	_, err = svc.UpdateOffer(ctx, driverActor(), o.ID, OfferUpdate{TotalSeats: &one})
	assert.ErrorIs(t, err, repository.ErrSeatsOverbooked)

	// Both fields given must stay consistent.
	five, six := uint8(5), uint8(6)
	_, err = svc.UpdateOffer(ctx, driverActor(), o.ID, OfferUpdate{TotalSeats: &five, AvailableSeats: &six})
	assert.ErrorIs(t, err, repository.ErrSeatsExceedCap)
}

func TestUpdateOfferNotifiesDiff(t *testing.T) {
	ctx := context.Background()
	svc, store, notifier := newOfferEngine(t, SoftDelete)

	o, err := svc.CreateOffer(ctx, driverID, validInput())
	require.NoError(t, err)
	store.mu.Lock()
	store.nextID++
	store.bookings[store.nextID] = &model.Booking{
		ID: store.nextID, OfferID: o.ID, RequesterID: passengerID,
		Seats: 1, Status: model.BookingPending,
	}
	store.mu.Unlock()

	price := uint32(3000)
	dest := model.ZoneSur
	_, err = svc.UpdateOffer(ctx, driverActor(), o.ID, OfferUpdate{PriceCents: &price, Destination: &dest})
	require.NoError(t, err)

	last, ok := notifier.lastFor(driverID)
	require.True(t, ok)
	assert.Equal(t, model.NotifyOfferModified, last.Type)
	assert.Contains(t, last.Message, "price")
	assert.Contains(t, last.Message, "destination")
	assert.True(t, notifier.sentTo(passengerID, model.NotifyOfferModified))
}

func TestUpdateOfferNoChangesNoNotification(t *testing.T) {
	ctx := context.Background()
	svc, _, notifier := newOfferEngine(t, SoftDelete)

	o, err := svc.CreateOffer(ctx, driverID, validInput())
	require.NoError(t, err)
	before := len(notifier.events)

	_, err = svc.UpdateOffer(ctx, driverActor(), o.ID, OfferUpdate{})
	require.NoError(t, err)
	assert.Len(t, notifier.events, before)
}

func TestUpdateOfferOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newOfferEngine(t, SoftDelete)

	o, err := svc.CreateOffer(ctx, driverID, validInput())
	require.NoError(t, err)

	price := uint32(100)
	_, err = svc.UpdateOffer(ctx, policy.Actor{UserID: 77, Role: model.RoleDriver}, o.ID, OfferUpdate{PriceCents: &price})
	assert.ErrorIs(t, err, repository.ErrForbidden)

	_, err = svc.UpdateOffer(ctx, policy.Actor{UserID: 99, Role: model.RoleAdmin}, o.ID, OfferUpdate{PriceCents: &price})
	assert.NoError(t, err)
}

func TestUpdateOfferPastDeparture(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newOfferEngine(t, SoftDelete)

	o, err := svc.CreateOffer(ctx, driverID, validInput())
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Minute)
	_, err = svc.UpdateOffer(ctx, driverActor(), o.ID, OfferUpdate{DepartureTime: &past})
	assert.ErrorIs(t, err, repository.ErrPastDeparture)
}

func TestCancelOffer(t *testing.T) {
	ctx := context.Background()
	svc, store, notifier := newOfferEngine(t, SoftDelete)

	o, err := svc.CreateOffer(ctx, driverID, validInput())
	require.NoError(t, err)
	store.mu.Lock()
	store.nextID++
	store.bookings[store.nextID] = &model.Booking{
		ID: store.nextID, OfferID: o.ID, RequesterID: passengerID,
		Seats: 1, Status: model.BookingConfirmed,
	}
	store.mu.Unlock()

	require.NoError(t, svc.CancelOffer(ctx, driverActor(), o.ID))

	got, err := store.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OfferCancelled, got.Status)
	assert.False(t, got.Active)
	assert.True(t, notifier.sentTo(passengerID, model.NotifyOfferCancelled))

	// A second cancel is a conflict, not a no-op.
	err = svc.CancelOffer(ctx, driverActor(), o.ID)
	assert.ErrorIs(t, err, repository.ErrStateConflict)

	// A cancelled cupo can no longer be edited.
	price := uint32(9000)
	_, err = svc.UpdateOffer(ctx, driverActor(), o.ID, OfferUpdate{PriceCents: &price})
	assert.ErrorIs(t, err, repository.ErrStateConflict)
}

func TestDeleteOfferPolicies(t *testing.T) {
	ctx := context.Background()

	t.Run("hard delete removes the row", func(t *testing.T) {
		svc, store, _ := newOfferEngine(t, HardDelete)
		o, err := svc.CreateOffer(ctx, driverID, validInput())
		require.NoError(t, err)
		require.NoError(t, svc.DeleteOffer(ctx, driverActor(), o.ID))
		_, err = store.GetByID(ctx, o.ID)
		assert.ErrorIs(t, err, repository.ErrOfferNotFound)
	})

	t.Run("soft delete hides the row", func(t *testing.T) {
		svc, store, _ := newOfferEngine(t, SoftDelete)
		o, err := svc.CreateOffer(ctx, driverID, validInput())
		require.NoError(t, err)
		require.NoError(t, svc.DeleteOffer(ctx, driverActor(), o.ID))
		got, err := store.GetByID(ctx, o.ID)
		require.NoError(t, err)
		assert.False(t, got.Active)
	})

	t.Run("only the driver or an admin may delete", func(t *testing.T) {
		svc, _, _ := newOfferEngine(t, SoftDelete)
		o, err := svc.CreateOffer(ctx, driverID, validInput())
		require.NoError(t, err)
		err = svc.DeleteOffer(ctx, policy.Actor{UserID: 77, Role: model.RoleDriver}, o.ID)
		assert.ErrorIs(t, err, repository.ErrForbidden)
	})
}
