package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupoapp/cupo-backend/internal/model"
	"github.com/cupoapp/cupo-backend/internal/policy"
	"github.com/cupoapp/cupo-backend/internal/repository"
)

const (
	driverID    = uint64(1)
	passengerID = uint64(2)
)

func driverActor() policy.Actor    { return policy.Actor{UserID: driverID, Role: model.RoleDriver} }
func passengerActor() policy.Actor { return policy.Actor{UserID: passengerID, Role: model.RolePassenger} }

func newTestEngine(t *testing.T, totalSeats uint8, priceCents uint32) (*ReservationService, *fakeStore, *fakeNotifier, *model.Offer) {
	t.Helper()
	store := newFakeStore()
	notifier := &fakeNotifier{}
	offer := store.addOffer(model.Offer{
		DriverID:       driverID,
		Destination:    model.ZoneNorte,
		MeetingPoint:   "main gate",
		TotalSeats:     totalSeats,
		AvailableSeats: totalSeats,
		DepartureTime:  time.Now().UTC().Add(2 * time.Hour),
		PriceCents:     priceCents,
		Status:         model.OfferAvailable,
		Active:         true,
	})
	return NewReservationService(store, notifier), store, notifier, offer
}

func TestCreateBookingHoldsSeatsAndFreezesPrice(t *testing.T) {
	svc, store, notifier, offer := newTestEngine(t, 4, 1500)

	b, err := svc.CreateBooking(context.Background(), passengerID, offer.ID, 2)
	require.NoError(t, err)

	assert.Equal(t, model.BookingPending, b.Status)
	assert.Equal(t, uint64(3000), b.TotalCents)
	assert.Equal(t, uint8(2), store.availableSeats(offer.ID))
	assert.True(t, notifier.sentTo(passengerID, model.NotifyBookingCreated))
	assert.True(t, notifier.sentTo(driverID, model.NotifyBookingCreated))
}

func TestCreateBookingPreconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate booking", func(t *testing.T) {
		svc, _, _, offer := newTestEngine(t, 4, 1000)
		_, err := svc.CreateBooking(ctx, passengerID, offer.ID, 1)
		require.NoError(t, err)
		_, err = svc.CreateBooking(ctx, passengerID, offer.ID, 1)
		assert.ErrorIs(t, err, repository.ErrDuplicateBooking)
	})

	t.Run("cancelled cupo", func(t *testing.T) {
		svc, store, _, offer := newTestEngine(t, 4, 1000)
		require.NoError(t, store.Cancel(ctx, offer.ID))
		_, err := svc.CreateBooking(ctx, passengerID, offer.ID, 1)
		assert.ErrorIs(t, err, repository.ErrOfferNotBookable)
	})

	t.Run("departed cupo", func(t *testing.T) {
		svc, _, _, offer := newTestEngine(t, 4, 1000)
		svc.now = func() time.Time { return offer.DepartureTime.Add(time.Minute) }
		_, err := svc.CreateBooking(ctx, passengerID, offer.ID, 1)
		assert.ErrorIs(t, err, repository.ErrOfferDeparted)
	})

	t.Run("not enough seats", func(t *testing.T) {
		svc, _, _, offer := newTestEngine(t, 2, 1000)
		_, err := svc.CreateBooking(ctx, passengerID, offer.ID, 3)
		assert.ErrorIs(t, err, repository.ErrSeatsUnavailable)
	})

	t.Run("own cupo", func(t *testing.T) {
		svc, _, _, offer := newTestEngine(t, 4, 1000)
		_, err := svc.CreateBooking(ctx, driverID, offer.ID, 1)
		assert.ErrorIs(t, err, repository.ErrOwnOffer)
	})

	t.Run("unknown cupo", func(t *testing.T) {
		svc, _, _, _ := newTestEngine(t, 4, 1000)
		_, err := svc.CreateBooking(ctx, passengerID, 999, 1)
		assert.ErrorIs(t, err, repository.ErrOfferNotFound)
	})
}

func TestConcurrentBookingsNeverOverbook(t *testing.T) {
	const seats = 5
	const attempts = 40
	svc, store, _, offer := newTestEngine(t, seats, 1000)

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Distinct requesters so only seat contention is exercised.
			_, errs[i] = svc.CreateBooking(context.Background(), uint64(100+i), offer.ID, 1)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, repository.ErrSeatsUnavailable)
		}
	}
	assert.Equal(t, seats, succeeded)
	assert.Equal(t, uint8(0), store.availableSeats(offer.ID))
	assert.Equal(t, seats, store.seatsHeld(offer.ID))
}

func TestConservationAcrossLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, store, _, offer := newTestEngine(t, 6, 1000)

	check := func() {
		t.Helper()
		held := store.seatsHeld(offer.ID)
		avail := int(store.availableSeats(offer.ID))
		assert.Equal(t, int(offer.TotalSeats), avail+held)
	}

	b1, err := svc.CreateBooking(ctx, 20, offer.ID, 2)
	require.NoError(t, err)
	check()

	b2, err := svc.CreateBooking(ctx, 21, offer.ID, 3)
	require.NoError(t, err)
	check()

	_, err = svc.ConfirmBooking(ctx, driverActor(), b1.ID)
	require.NoError(t, err)
	check()

	_, err = svc.RejectBooking(ctx, driverActor(), b2.ID)
	require.NoError(t, err)
	check()

	_, err = svc.CancelBooking(ctx, policy.Actor{UserID: 20, Role: model.RolePassenger}, b1.ID)
	require.NoError(t, err)
	check()

	assert.Equal(t, uint8(6), store.availableSeats(offer.ID))
}

func TestTerminalTransitionsAreNotRepeatable(t *testing.T) {
	ctx := context.Background()

	t.Run("confirm twice", func(t *testing.T) {
		svc, _, _, offer := newTestEngine(t, 4, 1000)
		b, err := svc.CreateBooking(ctx, passengerID, offer.ID, 1)
		require.NoError(t, err)
		_, err = svc.ConfirmBooking(ctx, driverActor(), b.ID)
		require.NoError(t, err)
		_, err = svc.ConfirmBooking(ctx, driverActor(), b.ID)
		assert.ErrorIs(t, err, repository.ErrStateConflict)
	})

	t.Run("reject after reject does not double-restore", func(t *testing.T) {
		svc, store, _, offer := newTestEngine(t, 4, 1000)
		b, err := svc.CreateBooking(ctx, passengerID, offer.ID, 2)
		require.NoError(t, err)
		_, err = svc.RejectBooking(ctx, driverActor(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, uint8(4), store.availableSeats(offer.ID))
		_, err = svc.RejectBooking(ctx, driverActor(), b.ID)
		assert.ErrorIs(t, err, repository.ErrStateConflict)
		assert.Equal(t, uint8(4), store.availableSeats(offer.ID))
	})

	t.Run("cancel after cancel is a conflict", func(t *testing.T) {
		svc, store, _, offer := newTestEngine(t, 4, 1000)
		b, err := svc.CreateBooking(ctx, passengerID, offer.ID, 2)
		require.NoError(t, err)
		_, err = svc.CancelBooking(ctx, passengerActor(), b.ID)
		require.NoError(t, err)
		_, err = svc.CancelBooking(ctx, passengerActor(), b.ID)
		assert.ErrorIs(t, err, repository.ErrStateConflict)
		assert.Equal(t, uint8(4), store.availableSeats(offer.ID))
	})
}

func TestRejectRestoresSeats(t *testing.T) {
	ctx := context.Background()
	svc, store, _, offer := newTestEngine(t, 4, 1000)

	b, err := svc.CreateBooking(ctx, passengerID, offer.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, uint8(2), store.availableSeats(offer.ID))

	_, err = svc.RejectBooking(ctx, driverActor(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, uint8(4), store.availableSeats(offer.ID))
}

func TestOwnershipGates(t *testing.T) {
	ctx := context.Background()
	svc, _, _, offer := newTestEngine(t, 4, 1000)

	b, err := svc.CreateBooking(ctx, passengerID, offer.ID, 1)
	require.NoError(t, err)

	stranger := policy.Actor{UserID: 77, Role: model.RoleDriver}
	_, err = svc.ConfirmBooking(ctx, stranger, b.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	_, err = svc.RejectBooking(ctx, stranger, b.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	// The requester cannot decide on their own booking.
	_, err = svc.ConfirmBooking(ctx, passengerActor(), b.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	// The driver cannot cancel on the requester's behalf.
	_, err = svc.CancelBooking(ctx, driverActor(), b.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	// An admin can do both.
	admin := policy.Actor{UserID: 99, Role: model.RoleAdmin}
	_, err = svc.ConfirmBooking(ctx, admin, b.ID)
	assert.NoError(t, err)
	_, err = svc.CancelBooking(ctx, admin, b.ID)
	assert.NoError(t, err)
}

func TestCompleteBooking(t *testing.T) {
	ctx := context.Background()
	svc, _, notifier, offer := newTestEngine(t, 4, 1000)

	b, err := svc.CreateBooking(ctx, passengerID, offer.ID, 1)
	require.NoError(t, err)
	_, err = svc.ConfirmBooking(ctx, driverActor(), b.ID)
	require.NoError(t, err)

	// Before departure completion is refused.
	_, err = svc.CompleteBooking(ctx, driverActor(), b.ID)
	assert.ErrorIs(t, err, repository.ErrConflict)

	svc.now = func() time.Time { return offer.DepartureTime.Add(time.Hour) }
	done, err := svc.CompleteBooking(ctx, driverActor(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCompleted, done.Status)
	assert.True(t, notifier.sentTo(passengerID, model.NotifyBookingCompleted))

	_, err = svc.CompleteBooking(ctx, driverActor(), b.ID)
	assert.ErrorIs(t, err, repository.ErrStateConflict)
}

func TestBookingScenario(t *testing.T) {
	// U1 posts a cupo with 3 seats at 1000 cents. U2 books 2 seats,
	// U1 confirms, U2 cancels. Seats go 3 -> 1 -> 1 -> 3.
	ctx := context.Background()
	svc, store, _, offer := newTestEngine(t, 3, 1000)

	b, err := svc.CreateBooking(ctx, passengerID, offer.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, b.Status)
	assert.Equal(t, uint64(2000), b.TotalCents)
	assert.Equal(t, uint8(1), store.availableSeats(offer.ID))

	confirmed, err := svc.ConfirmBooking(ctx, driverActor(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, confirmed.Status)
	assert.Equal(t, uint8(1), store.availableSeats(offer.ID))

	cancelled, err := svc.CancelBooking(ctx, passengerActor(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, cancelled.Status)
	assert.Equal(t, uint8(3), store.availableSeats(offer.ID))
}

func TestNotFoundBeatsForbidden(t *testing.T) {
	svc, _, _, _ := newTestEngine(t, 4, 1000)
	_, err := svc.ConfirmBooking(context.Background(), driverActor(), 12345)
	assert.True(t, errors.Is(err, repository.ErrBookingNotFound))
}
