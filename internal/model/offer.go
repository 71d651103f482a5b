package model

import "time"

// OfferStatus is the lifecycle state of a cupo. AVAILABLE offers accept
// bookings. IN_PROGRESS and COMPLETED are declared for the trip lifecycle
// but no operation drives them yet; CANCELLED is terminal.
type OfferStatus string

const (
	OfferAvailable  OfferStatus = "AVAILABLE"
	OfferInProgress OfferStatus = "IN_PROGRESS"
	OfferCompleted  OfferStatus = "COMPLETED"
	OfferCancelled  OfferStatus = "CANCELLED"
)

// CanTransitionTo reports whether the offer status machine permits
// moving from s to next. COMPLETED and CANCELLED are terminal.
func (s OfferStatus) CanTransitionTo(next OfferStatus) bool {
	switch s {
	case OfferAvailable:
		return next == OfferInProgress || next == OfferCancelled
	case OfferInProgress:
		return next == OfferCompleted || next == OfferCancelled
	default:
		return false
	}
}

// Terminal reports whether no further transition is permitted from s.
func (s OfferStatus) Terminal() bool {
	return s == OfferCompleted || s == OfferCancelled
}

// Zones form the fixed catalog of destinations a cupo may serve.
// The catalog mirrors the neighborhoods the service operates in.
const (
	ZoneCentro      = "CENTRO"
	ZoneNorte       = "NORTE"
	ZoneSur         = "SUR"
	ZoneOriente     = "ORIENTE"
	ZoneOccidente   = "OCCIDENTE"
	ZoneTerminal    = "TERMINAL"
	ZoneUniversidad = "UNIVERSIDAD"
)

var zoneCatalog = map[string]bool{
	ZoneCentro:      true,
	ZoneNorte:       true,
	ZoneSur:         true,
	ZoneOriente:     true,
	ZoneOccidente:   true,
	ZoneTerminal:    true,
	ZoneUniversidad: true,
}

// ValidZone reports whether z belongs to the destination catalog.
func ValidZone(z string) bool { return zoneCatalog[z] }

// Seat capacity bounds for a cupo. A private car offer carries at
// least one and at most eight passenger seats.
const (
	MinTotalSeats = 1
	MaxTotalSeats = 8
)

// Offer is a driver-posted ride (a "cupo") with a seat capacity,
// destination, per-seat price and departure time. AvailableSeats always
// equals TotalSeats minus the seats held by PENDING and CONFIRMED
// bookings; the repository enforces this with conditional updates
// inside the booking transactions.
//
// Fields:
//  ID             – primary key identifier.
//  DriverID       – user who posted the offer; immutable.
//  Destination    – zone from the fixed catalog.
//  Description    – optional free text shown to passengers.
//  MeetingPoint   – where passengers board.
//  TotalSeats     – capacity, 1..8.
//  AvailableSeats – seats not held by an active booking, 0..TotalSeats.
//  DepartureTime  – UTC departure; strictly future at creation.
//  PriceCents     – per-seat price in cents.
//  Status         – AVAILABLE, IN_PROGRESS, COMPLETED or CANCELLED.
//  Active         – soft-delete flag; false hides the offer everywhere.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Offer struct {
	ID             uint64      // cupos.id
	DriverID       uint64      // cupos.driver_id
	Destination    string      // cupos.destination
	Description    string      // cupos.description
	MeetingPoint   string      // cupos.meeting_point
	TotalSeats     uint8       // cupos.total_seats
	AvailableSeats uint8       // cupos.available_seats
	DepartureTime  time.Time   // cupos.departure_time (UTC)
	PriceCents     uint32      // cupos.price_cents
	Status         OfferStatus // cupos.status
	Active         bool        // cupos.active
	CreatedAt      time.Time   // cupos.created_at
	UpdatedAt      time.Time   // cupos.updated_at
}

// Bookable reports whether the offer accepts new bookings at the given
// instant: it must be active, AVAILABLE and depart strictly in the
// future. Seat sufficiency is checked separately.
func (o *Offer) Bookable(now time.Time) bool {
	return o.Active && o.Status == OfferAvailable && o.DepartureTime.After(now)
}
