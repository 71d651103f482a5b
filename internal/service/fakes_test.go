package service

import (
	"context"
	"sync"
	"time"

	"github.com/cupoapp/cupo-backend/internal/model"
	"github.com/cupoapp/cupo-backend/internal/repository"
)

// fakeStore is an in-memory stand-in for the SQL-backed stores. It
// mirrors their semantics under a single mutex: the seat decrement is
// conditional and atomic with the booking insert, and transitions guard
// on the current status exactly like the UPDATE ... WHERE status = ?
// statements do.
type fakeStore struct {
	mu       sync.Mutex
	offers   map[uint64]*model.Offer
	bookings map[uint64]*model.Booking
	nextID   uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		offers:   make(map[uint64]*model.Offer),
		bookings: make(map[uint64]*model.Booking),
	}
}

func (f *fakeStore) addOffer(o model.Offer) *model.Offer {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	o.ID = f.nextID
	f.offers[o.ID] = &o
	return &o
}

func (f *fakeStore) GetOffer(_ context.Context, offerID uint64) (*model.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[offerID]
	if !ok {
		return nil, repository.ErrOfferNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) GetBooking(_ context.Context, bookingID uint64) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeStore) HasActiveBooking(_ context.Context, offerID, requesterID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.OfferID == offerID && b.RequesterID == requesterID && b.Status.HoldsSeats() {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateWithSeatHold(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[b.OfferID]
	if !ok {
		return repository.ErrOfferNotFound
	}
	if !o.Active || o.Status != model.OfferAvailable || o.AvailableSeats < b.Seats {
		return repository.ErrSeatsUnavailable
	}
	o.AvailableSeats -= b.Seats
	f.nextID++
	b.ID = f.nextID
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	f.bookings[b.ID] = &cp
	return nil
}

func (f *fakeStore) Transition(_ context.Context, bookingID uint64, from, to model.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[bookingID]
	if !ok {
		return repository.ErrBookingNotFound
	}
	if b.Status != from {
		return repository.ErrStateConflict
	}
	b.Status = to
	if from.HoldsSeats() && !to.HoldsSeats() {
		if o, ok := f.offers[b.OfferID]; ok {
			o.AvailableSeats += b.Seats
		}
	}
	return nil
}

// OfferStore implementation for the offer engine tests.

func (f *fakeStore) Create(_ context.Context, o *model.Offer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	o.ID = f.nextID
	o.CreatedAt = time.Now().UTC()
	o.UpdatedAt = o.CreatedAt
	cp := *o
	f.offers[o.ID] = &cp
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uint64) (*model.Offer, error) {
	return f.GetOffer(ctx, id)
}

func (f *fakeStore) Update(_ context.Context, o *model.Offer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.offers[o.ID]; !ok {
		return repository.ErrOfferNotFound
	}
	cp := *o
	f.offers[o.ID] = &cp
	return nil
}

func (f *fakeStore) Cancel(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[id]
	if !ok || o.Status == model.OfferCancelled {
		return repository.ErrStateConflict
	}
	o.Status = model.OfferCancelled
	o.Active = false
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.offers[id]; !ok {
		return repository.ErrOfferNotFound
	}
	delete(f.offers, id)
	return nil
}

func (f *fakeStore) Deactivate(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[id]
	if !ok {
		return repository.ErrOfferNotFound
	}
	o.Active = false
	return nil
}

func (f *fakeStore) ActiveRequesters(_ context.Context, offerID uint64) ([]uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[uint64]bool)
	ids := make([]uint64, 0)
	for _, b := range f.bookings {
		if b.OfferID == offerID && b.Status.HoldsSeats() && !seen[b.RequesterID] {
			seen[b.RequesterID] = true
			ids = append(ids, b.RequesterID)
		}
	}
	return ids, nil
}

// seatsHeld sums the seats of PENDING and CONFIRMED bookings on the
// offer, for checking the conservation invariant.
func (f *fakeStore) seatsHeld(offerID uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	held := 0
	for _, b := range f.bookings {
		if b.OfferID == offerID && b.Status.HoldsSeats() {
			held += int(b.Seats)
		}
	}
	return held
}

func (f *fakeStore) availableSeats(offerID uint64) uint8 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.offers[offerID].AvailableSeats
}

type emitted struct {
	UserID  uint64
	Type    model.NotificationType
	Message string
}

// fakeNotifier records every emission for assertions.
type fakeNotifier struct {
	mu     sync.Mutex
	events []emitted
}

func (n *fakeNotifier) Emit(_ context.Context, userID uint64, typ model.NotificationType, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, emitted{UserID: userID, Type: typ, Message: msg})
}

func (n *fakeNotifier) sentTo(userID uint64, typ model.NotificationType) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e.UserID == userID && e.Type == typ {
			return true
		}
	}
	return false
}

func (n *fakeNotifier) lastFor(userID uint64) (emitted, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.events) - 1; i >= 0; i-- {
		if n.events[i].UserID == userID {
			return n.events[i], true
		}
	}
	return emitted{}, false
}
