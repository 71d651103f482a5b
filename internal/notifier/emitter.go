// Package notifier implements the notification emitter: persist a row,
// push it over the WebSocket hub, publish it to the broker. Every step
// after the database write is best-effort; the engines never learn
// about delivery failures.
package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cupoapp/cupo-backend/internal/model"
	"github.com/cupoapp/cupo-backend/internal/observability"
	"github.com/cupoapp/cupo-backend/internal/queue"
)

// NotificationStore persists notification rows; implemented by
// repository.NotificationRepo.
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
}

// Pusher delivers a payload to a user's live sessions; implemented by
// ws.Hub.
type Pusher interface {
	Push(userID uint64, v any)
}

// Emitter fans one notification out to the three channels. It
// satisfies the engines' Notifier port.
type Emitter struct {
	store NotificationStore
	hub   Pusher
	log   *slog.Logger

	// publish is swapped out in tests; the default publishes to the
	// notification.created queue.
	publish func(ctx context.Context, log *slog.Logger, ev queue.NotificationCreatedEvent) error
}

// New builds an emitter over the store and hub.
func New(store NotificationStore, hub Pusher, log *slog.Logger) *Emitter {
	return &Emitter{
		store:   store,
		hub:     hub,
		log:     log,
		publish: queue.PublishNotificationCreated,
	}
}

// wirePayload is the JSON shape pushed over the WebSocket channel.
type wirePayload struct {
	ID        uint64 `json:"id"`
	Type      string `json:"type"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// Emit persists the notification and then pushes and publishes it.
// A failed database write drops the notification entirely (logged);
// push and publish failures leave the stored row authoritative, so the
// user still sees the notification on their next list request.
func (e *Emitter) Emit(ctx context.Context, userID uint64, typ model.NotificationType, message string) {
	n := &model.Notification{UserID: userID, Type: typ, Message: message}
	if err := e.store.Create(ctx, n); err != nil {
		e.log.Warn("notification persist failed",
			"user_id", userID, "type", string(typ), "error", err)
		return
	}
	observability.NotificationsEmitted.Inc()

	createdAt := n.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	e.hub.Push(userID, wirePayload{
		ID:        n.ID,
		Type:      string(typ),
		Message:   message,
		CreatedAt: createdAt.Format(time.RFC3339),
	})

	ev := queue.NotificationCreatedEvent{
		EventID:        uuid.NewString(),
		NotificationID: n.ID,
		UserID:         userID,
		Type:           string(typ),
		Message:        message,
		CreatedAt:      createdAt.Format(time.RFC3339),
	}
	// Detached from the request context: the broker round-trip must not
	// be cancelled by the client disconnecting.
	go func() {
		_ = e.publish(context.WithoutCancel(ctx), e.log, ev)
	}()
}
