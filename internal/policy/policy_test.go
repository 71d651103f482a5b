package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cupoapp/cupo-backend/internal/model"
)

func TestCanManageOffer(t *testing.T) {
	offer := &model.Offer{ID: 1, DriverID: 10}

	assert.True(t, CanManageOffer(Actor{UserID: 10, Role: model.RoleDriver}, offer))
	assert.False(t, CanManageOffer(Actor{UserID: 11, Role: model.RoleDriver}, offer))
	assert.True(t, CanManageOffer(Actor{UserID: 99, Role: model.RoleAdmin}, offer))
}

func TestCanDecideBooking(t *testing.T) {
	offer := &model.Offer{ID: 1, DriverID: 10}
	booking := &model.Booking{ID: 5, OfferID: 1, RequesterID: 20}

	assert.True(t, CanDecideBooking(Actor{UserID: 10, Role: model.RoleDriver}, offer, booking))
	assert.False(t, CanDecideBooking(Actor{UserID: 20, Role: model.RolePassenger}, offer, booking))
	assert.False(t, CanDecideBooking(Actor{UserID: 30, Role: model.RoleDriver}, offer, booking))
	assert.True(t, CanDecideBooking(Actor{UserID: 99, Role: model.RoleAdmin}, offer, booking))

	// A driver requesting a seat on their own cupo must not be able to
	// self-approve.
	selfBooking := &model.Booking{ID: 6, OfferID: 1, RequesterID: 10}
	assert.False(t, CanDecideBooking(Actor{UserID: 10, Role: model.RoleDriver}, offer, selfBooking))
}

func TestCanCancelBooking(t *testing.T) {
	booking := &model.Booking{ID: 5, OfferID: 1, RequesterID: 20}

	assert.True(t, CanCancelBooking(Actor{UserID: 20, Role: model.RolePassenger}, booking))
	assert.False(t, CanCancelBooking(Actor{UserID: 10, Role: model.RoleDriver}, booking))
	assert.True(t, CanCancelBooking(Actor{UserID: 99, Role: model.RoleAdmin}, booking))
}

func TestCanRate(t *testing.T) {
	offer := &model.Offer{ID: 1, DriverID: 10}
	booking := &model.Booking{ID: 5, OfferID: 1, RequesterID: 20}

	ratee, ok := CanRate(Actor{UserID: 20}, offer, booking)
	assert.True(t, ok)
	assert.Equal(t, uint64(10), ratee)

	ratee, ok = CanRate(Actor{UserID: 10}, offer, booking)
	assert.True(t, ok)
	assert.Equal(t, uint64(20), ratee)

	_, ok = CanRate(Actor{UserID: 30}, offer, booking)
	assert.False(t, ok)
}
