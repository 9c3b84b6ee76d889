// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import (
	"sync"

	"github.com/samber/lo"
)

// conn is one open event stream.
type conn struct {
	ch     chan string
	userID string
}

// Hub fans events out to open streams.
// A browser is identified by its client ID; all of its tabs share it.
// A signed-in user may be connected from several browsers.
type Hub struct {
	conns       map[string][]conn
	userClients map[string][]string
	mu          sync.RWMutex
}

// NewHub creates a new SSE hub.
func NewHub() *Hub {
	return &Hub{
		conns:       make(map[string][]conn),
		userClients: make(map[string][]string),
	}
}

// Register adds a stream for the given browser. userID is empty for
// anonymous visitors. Returns the channel to receive events on.
func (h *Hub) Register(clientID, userID string) chan string {
	ch := make(chan string, 10) // buffered to prevent blocking

	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[clientID] = append(h.conns[clientID], conn{ch: ch, userID: userID})

	if userID != "" && !lo.Contains(h.userClients[userID], clientID) {
		h.userClients[userID] = append(h.userClients[userID], clientID)
	}

	return ch
}

// Unregister removes a stream and closes its channel.
func (h *Hub) Unregister(clientID, userID string, ch chan string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[clientID] = lo.Filter(h.conns[clientID], func(c conn, _ int) bool {
		return c.ch != ch
	})

	if len(h.conns[clientID]) == 0 {
		delete(h.conns, clientID)

		if userID != "" {
			h.userClients[userID] = lo.Without(h.userClients[userID], clientID)
			if len(h.userClients[userID]) == 0 {
				delete(h.userClients, userID)
			}
		}
	}

	close(ch)
}

// SendToClient sends a message to every stream of one browser.
func (h *Hub) SendToClient(clientID string, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.conns[clientID] {
		select {
		case c.ch <- message:
		default:
			// Channel full, skip (prevents blocking)
		}
	}
}

// SendToUser sends a message to all browsers of the given user.
func (h *Hub) SendToUser(userID string, message string) {
	h.mu.RLock()
	clientIDs := append([]string(nil), h.userClients[userID]...)
	h.mu.RUnlock()

	for _, clientID := range clientIDs {
		h.SendToClient(clientID, message)
	}
}

// Broadcast sends a message to all connected streams.
func (h *Hub) Broadcast(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conns := range h.conns {
		for _, c := range conns {
			select {
			case c.ch <- message:
			default:
				// Channel full, skip
			}
		}
	}
}

// ConnectionCount returns the number of open streams.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return lo.SumBy(lo.Values(h.conns), func(conns []conn) int {
		return len(conns)
	})
}

// ClientCount returns the number of browsers with open streams.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.conns)
}

// UserCount returns the number of signed-in users with open streams.
func (h *Hub) UserCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.userClients)
}
