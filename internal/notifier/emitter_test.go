package notifier

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cupoapp/cupo-backend/internal/model"
	"github.com/cupoapp/cupo-backend/internal/queue"
)

type memStore struct {
	mu   sync.Mutex
	rows []*model.Notification
	fail bool
}

func (s *memStore) Create(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return assert.AnError
	}
	n.ID = uint64(len(s.rows) + 1)
	n.CreatedAt = time.Now().UTC()
	s.rows = append(s.rows, n)
	return nil
}

type memPusher struct {
	mu     sync.Mutex
	pushed []uint64
}

func (p *memPusher) Push(userID uint64, _ any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed = append(p.pushed, userID)
}

func newTestEmitter(store *memStore, pusher *memPusher) (*Emitter, chan queue.NotificationCreatedEvent) {
	e := New(store, pusher, slog.New(slog.DiscardHandler))
	events := make(chan queue.NotificationCreatedEvent, 1)
	e.publish = func(_ context.Context, _ *slog.Logger, ev queue.NotificationCreatedEvent) error {
		events <- ev
		return nil
	}
	return e, events
}

func TestEmitPersistsPushesAndPublishes(t *testing.T) {
	store, pusher := &memStore{}, &memPusher{}
	e, events := newTestEmitter(store, pusher)

	e.Emit(context.Background(), 7, model.NotifyBookingCreated, "new booking")

	require.Len(t, store.rows, 1)
	assert.Equal(t, uint64(7), store.rows[0].UserID)
	assert.Equal(t, model.NotifyBookingCreated, store.rows[0].Type)
	assert.Equal(t, []uint64{7}, pusher.pushed)

	select {
	case ev := <-events:
		assert.NotEmpty(t, ev.EventID)
		assert.Equal(t, uint64(1), ev.NotificationID)
		assert.Equal(t, "BOOKING_CREATED", ev.Type)
	case <-time.After(time.Second):
		t.Fatal("event was not published")
	}
}

func TestEmitSwallowsStoreFailure(t *testing.T) {
	store, pusher := &memStore{fail: true}, &memPusher{}
	e, events := newTestEmitter(store, pusher)

	// Must not panic and must not push or publish a phantom row.
	e.Emit(context.Background(), 7, model.NotifyBookingCreated, "new booking")

	assert.Empty(t, pusher.pushed)
	select {
	case <-events:
		t.Fatal("published despite failed persist")
	case <-time.After(50 * time.Millisecond):
	}
}
