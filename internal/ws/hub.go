// Package ws maintains the live WebSocket sessions used to push
// notifications to connected users. A user may hold several sessions
// at once (one per device or tab); pushes fan out to all of them.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeTimeout = 5 * time.Second

// conn is the subset of *websocket.Conn the hub writes through.
type conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Session is one live connection of one user. Writes are serialized by
// the session mutex because gorilla connections allow only a single
// concurrent writer.
type Session struct {
	conn conn
	mu   sync.Mutex
}

func (s *Session) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub is the registry of live sessions keyed by user ID.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uint64]map[*Session]bool
}

// NewHub returns an empty session registry.
func NewHub() *Hub {
	return &Hub{sessions: make(map[uint64]map[*Session]bool)}
}

// Register adds a connection for the user and returns its session
// handle, which the caller must pass to Unregister when the connection
// closes.
func (h *Hub) Register(userID uint64, c *websocket.Conn) *Session {
	return h.register(userID, c)
}

func (h *Hub) register(userID uint64, c conn) *Session {
	s := &Session{conn: c}
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sessions[userID]
	if !ok {
		set = make(map[*Session]bool)
		h.sessions[userID] = set
	}
	set[s] = true
	return s
}

// Unregister removes the session and closes its connection.
func (h *Hub) Unregister(userID uint64, s *Session) {
	h.mu.Lock()
	if set, ok := h.sessions[userID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(h.sessions, userID)
		}
	}
	h.mu.Unlock()
	_ = s.conn.Close()
}

// Push marshals v to JSON and writes it to every live session of the
// user. Sessions whose write fails are dropped; the error is not
// reported because pushes are best-effort.
func (h *Hub) Push(userID uint64, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	h.mu.RLock()
	targets := make([]*Session, 0, len(h.sessions[userID]))
	for s := range h.sessions[userID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		if err := s.write(data); err != nil {
			h.Unregister(userID, s)
		}
	}
}

// Online reports the number of live sessions for the user.
func (h *Hub) Online(userID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID])
}
