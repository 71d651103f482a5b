// Package queue carries notification events over the message broker.
// The emitter publishes one event per persisted notification; an
// independent consumer drains the queue, so delivery never couples to
// the request that produced the event.
package queue

// NotificationCreatedEvent is published to the notification.created
// queue whenever the emitter persists a notification row. EventID is a
// fresh UUID so downstream consumers can deduplicate redeliveries.
type NotificationCreatedEvent struct {
	EventID        string `json:"event_id"`
	NotificationID uint64 `json:"notification_id"`
	UserID         uint64 `json:"user_id"`
	Type           string `json:"type"`
	Message        string `json:"message"`
	CreatedAt      string `json:"created_at"`
}
