// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package toast

import (
	"encoding/json"
	"sync"
	"time"

	"codeberg.org/dailygrind/web/internal/sse"
)

// SSE event names.
const (
	EventAdd    = "toast-add"
	EventRemove = "toast-remove"
)

// Formatter renders a toast as event data.
type Formatter func(t Toast) string

// JSONFormatter encodes a toast as JSON.
func JSONFormatter(t Toast) string {
	b, _ := json.Marshal(t)
	return string(b)
}

// Registry keeps one queue per browser and streams changes to it.
type Registry struct {
	hub      *sse.Hub
	format   Formatter
	queues   map[string]*Queue
	duration time.Duration
	mu       sync.Mutex
}

// NewRegistry creates a registry. A nil format uses JSONFormatter.
func NewRegistry(hub *sse.Hub, duration time.Duration, format Formatter) *Registry {
	if format == nil {
		format = JSONFormatter
	}
	return &Registry{
		hub:      hub,
		format:   format,
		duration: duration,
		queues:   make(map[string]*Queue),
	}
}

// Push adds a toast for the given browser.
func (r *Registry) Push(clientID string, kind Kind, message string) Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.queueLocked(clientID).Push(kind, message)
}

// Dismiss removes a toast of the given browser.
func (r *Registry) Dismiss(clientID, id string) bool {
	r.mu.Lock()
	q, ok := r.queues[clientID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	return q.Dismiss(id)
}

// List returns the toasts of the given browser.
func (r *Registry) List(clientID string) []Toast {
	r.mu.Lock()
	q, ok := r.queues[clientID]
	r.mu.Unlock()
	if !ok {
		return nil
	}
	return q.List()
}

// Notifier returns a notifier that pushes toasts to one browser.
func (r *Registry) Notifier(clientID string) *Notifier {
	return &Notifier{registry: r, clientID: clientID}
}

// Len returns the number of browsers with pending toasts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queues)
}

// Close stops all timers.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, q := range r.queues {
		q.Close()
		delete(r.queues, id)
	}
}

func (r *Registry) queueLocked(clientID string) *Queue {
	q, ok := r.queues[clientID]
	if !ok {
		l := &publisher{registry: r, clientID: clientID}
		q = NewQueue(r.duration, l)
		l.queue = q
		r.queues[clientID] = q
	}
	return q
}

// prune drops a queue once it is empty.
func (r *Registry) prune(clientID string, q *Queue) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.queues[clientID] == q && q.Len() == 0 {
		delete(r.queues, clientID)
	}
}

type publisher struct {
	registry *Registry
	queue    *Queue
	clientID string
}

func (p *publisher) ToastAdded(t Toast) {
	if p.registry.hub != nil {
		p.registry.hub.SendToClient(p.clientID, sse.FormatEvent(EventAdd, p.registry.format(t)))
	}
}

func (p *publisher) ToastRemoved(id string) {
	if p.registry.hub != nil {
		p.registry.hub.SendToClient(p.clientID, sse.FormatEvent(EventRemove, id))
	}
	p.registry.prune(p.clientID, p.queue)
}

// Notifier pushes success and error toasts to one browser.
type Notifier struct {
	registry *Registry
	clientID string
}

func (n *Notifier) Success(message string) {
	n.registry.Push(n.clientID, KindSuccess, message)
}

func (n *Notifier) Error(message string) {
	n.registry.Push(n.clientID, KindError, message)
}

// List returns the pending toasts of the browser. Safe on a nil notifier.
func (n *Notifier) List() []Toast {
	if n == nil {
		return nil
	}
	return n.registry.List(n.clientID)
}
