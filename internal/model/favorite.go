package model

import "time"

// Favorite bookmarks an offer for a user. The (UserID, OfferID) pair
// is unique; adding an existing favorite is a conflict.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – user who bookmarked the offer.
//  OfferID   – bookmarked cupo.
//  CreatedAt – creation timestamp.
type Favorite struct {
	ID        uint64    // favorites.id
	UserID    uint64    // favorites.user_id
	OfferID   uint64    // favorites.cupo_id
	CreatedAt time.Time // favorites.created_at
}
