package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatusTransitions(t *testing.T) {
	assert.True(t, BookingPending.CanTransitionTo(BookingConfirmed))
	assert.True(t, BookingPending.CanTransitionTo(BookingRejected))
	assert.True(t, BookingPending.CanTransitionTo(BookingCancelled))
	assert.False(t, BookingPending.CanTransitionTo(BookingCompleted))

	assert.True(t, BookingConfirmed.CanTransitionTo(BookingCancelled))
	assert.True(t, BookingConfirmed.CanTransitionTo(BookingCompleted))
	assert.False(t, BookingConfirmed.CanTransitionTo(BookingRejected))

	for _, s := range []BookingStatus{BookingRejected, BookingCancelled, BookingCompleted} {
		assert.True(t, s.Terminal(), "%s should be terminal", s)
		for _, next := range []BookingStatus{BookingPending, BookingConfirmed, BookingRejected, BookingCancelled, BookingCompleted} {
			assert.False(t, s.CanTransitionTo(next), "%s -> %s should be rejected", s, next)
		}
	}
}

func TestBookingStatusHoldsSeats(t *testing.T) {
	assert.True(t, BookingPending.HoldsSeats())
	assert.True(t, BookingConfirmed.HoldsSeats())
	assert.False(t, BookingRejected.HoldsSeats())
	assert.False(t, BookingCancelled.HoldsSeats())
	assert.False(t, BookingCompleted.HoldsSeats())
}

func TestOfferStatusTransitions(t *testing.T) {
	assert.True(t, OfferAvailable.CanTransitionTo(OfferInProgress))
	assert.True(t, OfferAvailable.CanTransitionTo(OfferCancelled))
	assert.False(t, OfferAvailable.CanTransitionTo(OfferCompleted))

	assert.True(t, OfferInProgress.CanTransitionTo(OfferCompleted))
	assert.True(t, OfferInProgress.CanTransitionTo(OfferCancelled))

	assert.True(t, OfferCompleted.Terminal())
	assert.True(t, OfferCancelled.Terminal())
	assert.False(t, OfferCancelled.CanTransitionTo(OfferAvailable))
}

func TestOfferBookable(t *testing.T) {
	now := time.Now().UTC()
	offer := Offer{
		Status:        OfferAvailable,
		Active:        true,
		DepartureTime: now.Add(time.Hour),
	}
	assert.True(t, offer.Bookable(now))

	departed := offer
	departed.DepartureTime = now.Add(-time.Minute)
	assert.False(t, departed.Bookable(now))

	inactive := offer
	inactive.Active = false
	assert.False(t, inactive.Bookable(now))

	cancelled := offer
	cancelled.Status = OfferCancelled
	assert.False(t, cancelled.Bookable(now))
}

func TestValidZone(t *testing.T) {
	assert.True(t, ValidZone(ZoneCentro))
	assert.True(t, ValidZone(ZoneUniversidad))
	assert.False(t, ValidZone("MORDOR"))
	assert.False(t, ValidZone(""))
}
