// Package hub keeps track of the open realtime connection of each user.
package hub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/coder/websocket"
)

// ErrNoConnection is returned when a user has no registered connection.
var ErrNoConnection = errors.New("no connection")

// Conn is the part of a realtime connection the hub needs.
type Conn interface {
	SendJSON(ctx context.Context, v interface{}) error
	Close(code websocket.StatusCode, reason string) error
}

// Hub maps user names to their live connection. One user has at most one
// connection; registering a second one closes the first.
type Hub struct {
	mu    sync.Mutex
	conns map[string]Conn
}

// New returns an empty hub.
func New() *Hub {
	return &Hub{conns: make(map[string]Conn)}
}

// Register makes c the connection of user. It reports whether an older
// connection was replaced; that connection is closed with going-away.
func (h *Hub) Register(user string, c Conn) bool {
	h.mu.Lock()
	old, ok := h.conns[user]
	h.conns[user] = c
	h.mu.Unlock()

	if ok && old != c {
		_ = old.Close(websocket.StatusGoingAway, "superseded by a new session")
		return true
	}
	return false
}

// Unregister removes user only if c is still its registered connection,
// so a superseded session cannot evict its successor.
func (h *Hub) Unregister(user string, c Conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.conns[user]; ok && cur == c {
		delete(h.conns, user)
		return true
	}
	return false
}

// Get returns the connection of user.
func (h *Hub) Get(user string) (Conn, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.conns[user]
	return c, ok
}

// Count returns the number of registered users.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// Send writes v as JSON to the connection of user.
func (h *Hub) Send(ctx context.Context, user string, v interface{}) error {
	c, ok := h.Get(user)
	if !ok {
		return fmt.Errorf("sending to %s: %w", user, ErrNoConnection)
	}
	if err := c.SendJSON(ctx, v); err != nil {
		return fmt.Errorf("sending to %s: %w", user, err)
	}
	return nil
}

// CloseAll closes every registered connection and empties the hub.
func (h *Hub) CloseAll(code websocket.StatusCode, reason string) {
	conns := h.snapshot()

	h.mu.Lock()
	h.conns = make(map[string]Conn)
	h.mu.Unlock()

	var wg sync.WaitGroup
	for _, c := range conns {
		wg.Add(1)
		go func(c Conn) {
			defer wg.Done()
			_ = c.Close(code, reason)
		}(c)
	}
	wg.Wait()
}

func (h *Hub) snapshot() map[string]Conn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make(map[string]Conn, len(h.conns))
	for user, c := range h.conns {
		out[user] = c
	}
	return out
}
