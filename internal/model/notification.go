package model

import "time"

// NotificationType tags a notification with the domain event that
// produced it. The set mirrors the events emitted by the booking and
// offer engines.
type NotificationType string

const (
	NotifyBookingCreated   NotificationType = "BOOKING_CREATED"
	NotifyBookingConfirmed NotificationType = "BOOKING_CONFIRMED"
	NotifyBookingCancelled NotificationType = "BOOKING_CANCELLED"
	NotifyBookingCompleted NotificationType = "BOOKING_COMPLETED"
	NotifyOfferCreated     NotificationType = "CUPO_CREATED"
	NotifyOfferModified    NotificationType = "CUPO_MODIFIED"
	NotifyOfferCancelled   NotificationType = "CUPO_CANCELLED"
)

// Notification is a persisted message for a single user. Rows are
// written by the emitter as a side effect of engine operations and
// served back through the notifications endpoints; delivery over the
// WebSocket channel or the broker is best-effort and does not affect
// the stored row.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – recipient.
//  Type      – domain event tag.
//  Message   – human-readable text.
//  Read      – whether the user has seen it.
//  CreatedAt – creation timestamp.
type Notification struct {
	ID        uint64           // notifications.id
	UserID    uint64           // notifications.user_id
	Type      NotificationType // notifications.type
	Message   string           // notifications.message
	Read      bool             // notifications.is_read
	CreatedAt time.Time        // notifications.created_at
}
