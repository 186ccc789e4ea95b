// Package ws implements the real-time delivery layer: a process-wide
// registry of live WebSocket connections keyed by user identity, and the
// per-connection read/write pumps.
package ws

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/duochat/internal/logging"
	"github.com/dmitrijs2005/duochat/internal/server/services"
)

// Hub is the in-process connection registry. A user may hold zero, one or
// multiple live connections at a time (multiple devices or tabs). Nothing is
// persisted: the registry is lost and rebuilt on process restart, and
// presence means reachable from this process only.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
	logger  logging.Logger
}

func NewHub(logger logging.Logger) *Hub {
	return &Hub{
		clients: make(map[int64]map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds an authenticated connection under its user's key.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}

	h.logger.Debug(context.Background(), "connection registered",
		"user_id", c.userID, "connections", len(set))
}

// Unregister removes exactly that connection. The user's entry disappears
// entirely with its last connection; no dangling empty sets remain.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}

	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}

	h.logger.Debug(context.Background(), "connection unregistered",
		"user_id", c.userID, "connections", len(set))
}

// Lookup returns the live connections for a user, possibly none.
func (h *Hub) Lookup(userID int64) []services.Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()

	set := h.clients[userID]
	if len(set) == 0 {
		return nil
	}

	conns := make([]services.Connection, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	return conns
}

// Online reports whether the user has at least one live connection.
func (h *Hub) Online(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}
