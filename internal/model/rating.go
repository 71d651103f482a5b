package model

import "time"

// Rating bounds for the 1..5 star scale.
const (
	MinStars = 1
	MaxStars = 5
)

// Rating is one participant's score for the counterpart of a completed
// booking: the passenger rates the driver or the driver rates the
// passenger. The (BookingID, RaterID) pair is unique, so each side may
// rate at most once per trip.
//
// Fields:
//  ID        – primary key identifier.
//  BookingID – completed booking being rated.
//  RaterID   – user who scores.
//  RateeID   – user being scored (the counterpart).
//  Stars     – 1..5.
//  Comment   – optional free text.
//  CreatedAt – creation timestamp.
type Rating struct {
	ID        uint64    // ratings.id
	BookingID uint64    // ratings.booking_id
	RaterID   uint64    // ratings.rater_id
	RateeID   uint64    // ratings.ratee_id
	Stars     uint8     // ratings.stars
	Comment   string    // ratings.comment
	CreatedAt time.Time // ratings.created_at
}
