// Package policy centralizes the ownership and role checks that gate
// mutating operations. Handlers build an Actor from the JWT claims and
// services ask the policy questions instead of comparing IDs inline.
package policy

import "github.com/cupoapp/cupo-backend/internal/model"

// Actor identifies the authenticated caller of an operation.
type Actor struct {
	UserID uint64
	Role   string
}

// Admin reports whether the actor carries the ADMIN role.
func (a Actor) Admin() bool { return a.Role == model.RoleAdmin }

// CanManageOffer reports whether the actor may modify, cancel or delete
// the cupo. Only the posting driver or an admin may.
func CanManageOffer(a Actor, o *model.Offer) bool {
	return a.Admin() || a.UserID == o.DriverID
}

// CanDecideBooking reports whether the actor may confirm or reject the
// booking. The decision belongs to the driver of the cupo the booking
// targets; a requester can never decide on their own booking even if
// they also drive.
func CanDecideBooking(a Actor, o *model.Offer, b *model.Booking) bool {
	if a.Admin() {
		return true
	}
	return a.UserID == o.DriverID && a.UserID != b.RequesterID
}

// CanCancelBooking reports whether the actor may cancel the booking.
// Only the requester who placed it or an admin may.
func CanCancelBooking(a Actor, b *model.Booking) bool {
	return a.Admin() || a.UserID == b.RequesterID
}

// CanCompleteBooking reports whether the actor may mark the booking
// completed after the trip. Same rule as deciding: the driver, never
// the requester.
func CanCompleteBooking(a Actor, o *model.Offer, b *model.Booking) bool {
	return CanDecideBooking(a, o, b)
}

// CanRate reports whether the actor took part in the trip behind the
// booking, as either requester or driver, and names the counterpart to
// be rated. The second return is false when the actor was not a
// participant.
func CanRate(a Actor, o *model.Offer, b *model.Booking) (rateeID uint64, ok bool) {
	switch a.UserID {
	case b.RequesterID:
		return o.DriverID, true
	case o.DriverID:
		return b.RequesterID, true
	}
	return 0, false
}
