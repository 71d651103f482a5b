package ws

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
	closed bool
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return assert.AnError
	}
	c.frames = append(c.frames, data)
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func TestPushFansOutToAllSessions(t *testing.T) {
	h := NewHub()
	c1, c2 := &fakeConn{}, &fakeConn{}
	h.register(7, c1)
	h.register(7, c2)
	h.register(8, &fakeConn{})

	h.Push(7, map[string]string{"message": "hi"})

	require.Len(t, c1.frames, 1)
	require.Len(t, c2.frames, 1)
	assert.JSONEq(t, `{"message":"hi"}`, string(c1.frames[0]))
	assert.Equal(t, 2, h.Online(7))
}

func TestPushToOfflineUserIsNoop(t *testing.T) {
	h := NewHub()
	h.Push(42, "anything")
	assert.Equal(t, 0, h.Online(42))
}

func TestFailedWriteDropsSession(t *testing.T) {
	h := NewHub()
	good, bad := &fakeConn{}, &fakeConn{fail: true}
	h.register(7, good)
	h.register(7, bad)

	h.Push(7, "ping")

	assert.Equal(t, 1, h.Online(7))
	assert.True(t, bad.closed)
	assert.Len(t, good.frames, 1)
}

func TestUnregisterClosesAndForgets(t *testing.T) {
	h := NewHub()
	c := &fakeConn{}
	s := h.register(7, c)

	h.Unregister(7, s)

	assert.Equal(t, 0, h.Online(7))
	assert.True(t, c.closed)
}

func TestConcurrentRegisterAndPush(t *testing.T) {
	h := NewHub()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s := h.register(uint64(i%3), &fakeConn{})
			h.Unregister(uint64(i%3), s)
		}(i)
		go func(i int) {
			defer wg.Done()
			h.Push(uint64(i%3), "tick")
		}(i)
	}
	wg.Wait()
}
