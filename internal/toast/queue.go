// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package toast keeps short-lived user notifications.
package toast

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind is the severity of a toast.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

// Toast is a single notification.
type Toast struct {
	CreatedAt time.Time `json:"createdAt"`
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
}

// Listener is told about queue changes. Calls happen outside the queue lock.
type Listener interface {
	ToastAdded(t Toast)
	ToastRemoved(id string)
}

type entry struct {
	timer *time.Timer
	toast Toast
}

// Queue holds toasts that remove themselves after a fixed duration.
// Each entry owns its timer; removing an entry early stops it.
type Queue struct {
	listener Listener
	entries  []*entry
	duration time.Duration
	mu       sync.Mutex
	closed   bool
}

// NewQueue creates a queue. A duration <= 0 keeps toasts until dismissed.
// listener may be nil.
func NewQueue(duration time.Duration, listener Listener) *Queue {
	return &Queue{duration: duration, listener: listener}
}

// Push adds a toast and schedules its expiry.
func (q *Queue) Push(kind Kind, message string) Toast {
	t := Toast{
		ID:        uuid.NewString(),
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now(),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return t
	}
	e := &entry{toast: t}
	if q.duration > 0 {
		id := t.ID
		e.timer = time.AfterFunc(q.duration, func() { q.Dismiss(id) })
	}
	q.entries = append(q.entries, e)
	q.mu.Unlock()

	if q.listener != nil {
		q.listener.ToastAdded(t)
	}
	return t
}

// Success pushes a success toast.
func (q *Queue) Success(message string) {
	q.Push(KindSuccess, message)
}

// Error pushes an error toast.
func (q *Queue) Error(message string) {
	q.Push(KindError, message)
}

// Dismiss removes a toast and cancels its timer. It reports whether the
// toast was still present.
func (q *Queue) Dismiss(id string) bool {
	q.mu.Lock()
	idx := slices.IndexFunc(q.entries, func(e *entry) bool { return e.toast.ID == id })
	if idx < 0 {
		q.mu.Unlock()
		return false
	}
	e := q.entries[idx]
	q.entries = slices.Delete(q.entries, idx, idx+1)
	q.mu.Unlock()

	if e.timer != nil {
		e.timer.Stop()
	}
	if q.listener != nil {
		q.listener.ToastRemoved(id)
	}
	return true
}

// List returns the current toasts, oldest first.
func (q *Queue) List() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Toast, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.toast
	}
	return out
}

// Len returns the number of current toasts.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Close stops all timers and drops all toasts. Later pushes are ignored.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, e := range q.entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
	q.entries = nil
	q.closed = true
}
