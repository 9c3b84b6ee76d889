// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	// Register a stream
	ch := hub.Register("client1", "u1")
	assert.NotNil(t, ch)
	assert.Equal(t, 1, hub.ConnectionCount())
	assert.Equal(t, 1, hub.ClientCount())
	assert.Equal(t, 1, hub.UserCount())

	// Register another stream for the same browser (second tab)
	ch2 := hub.Register("client1", "u1")
	assert.Equal(t, 2, hub.ConnectionCount())
	assert.Equal(t, 1, hub.ClientCount()) // Still one browser

	// Unregister first client
	hub.Unregister("client1", "u1", ch)
	assert.Equal(t, 1, hub.ConnectionCount())
	assert.Equal(t, 1, hub.ClientCount())

	// Unregister second client
	hub.Unregister("client1", "u1", ch2)
	assert.Equal(t, 0, hub.ConnectionCount())
	assert.Equal(t, 0, hub.ClientCount())
	assert.Equal(t, 0, hub.UserCount())
}

func TestHub_MultipleClientsPerUser(t *testing.T) {
	hub := NewHub()

	// User 1 connects from two different browsers
	ch1 := hub.Register("client1", "u1")
	ch2 := hub.Register("client2", "u1")

	assert.Equal(t, 2, hub.ConnectionCount())
	assert.Equal(t, 2, hub.ClientCount())
	assert.Equal(t, 1, hub.UserCount()) // Still one user

	hub.Unregister("client1", "u1", ch1)
	hub.Unregister("client2", "u1", ch2)
}

//nolint:dupl // Test functions intentionally have similar structure for clarity
func TestHub_SendToClient(t *testing.T) {
	hub := NewHub()

	ch1 := hub.Register("client1", "u1")
	ch2 := hub.Register("client1", "u1") // Same browser, different tab
	ch3 := hub.Register("client2", "u2") // Different browser

	hub.SendToClient("client1", "hello")

	// Both tabs of client1 should receive the message
	select {
	case msg := <-ch1:
		assert.Equal(t, "hello", msg)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("ch1 should have received message")
	}

	select {
	case msg := <-ch2:
		assert.Equal(t, "hello", msg)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("ch2 should have received message")
	}

	// client2 should not receive the message
	select {
	case <-ch3:
		t.Fatal("ch3 should not have received message")
	case <-time.After(50 * time.Millisecond):
		// Expected
	}

	hub.Unregister("client1", "u1", ch1)
	hub.Unregister("client1", "u1", ch2)
	hub.Unregister("client2", "u2", ch3)
}

//nolint:dupl // Test functions intentionally have similar structure for clarity
func TestHub_SendToUser(t *testing.T) {
	hub := NewHub()

	// User 1 has two browsers
	ch1 := hub.Register("client1", "u1")
	ch2 := hub.Register("client2", "u1")
	// User 2 has one browser
	ch3 := hub.Register("client3", "u2")

	hub.SendToUser("u1", "user1-message")

	// Both browsers of user 1 should receive the message
	select {
	case msg := <-ch1:
		assert.Equal(t, "user1-message", msg)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("ch1 should have received message")
	}

	select {
	case msg := <-ch2:
		assert.Equal(t, "user1-message", msg)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("ch2 should have received message")
	}

	// User 2 should not receive the message
	select {
	case <-ch3:
		t.Fatal("ch3 should not have received message")
	case <-time.After(50 * time.Millisecond):
		// Expected
	}

	hub.Unregister("client1", "u1", ch1)
	hub.Unregister("client2", "u1", ch2)
	hub.Unregister("client3", "u2", ch3)
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()

	ch1 := hub.Register("client1", "u1")
	ch2 := hub.Register("client2", "u2")

	hub.Broadcast("broadcast-message")

	// All clients should receive the message
	select {
	case msg := <-ch1:
		assert.Equal(t, "broadcast-message", msg)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("ch1 should have received message")
	}

	select {
	case msg := <-ch2:
		assert.Equal(t, "broadcast-message", msg)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("ch2 should have received message")
	}

	hub.Unregister("client1", "u1", ch1)
	hub.Unregister("client2", "u2", ch2)
}

func TestHub_NonBlockingSend(t *testing.T) {
	hub := NewHub()

	ch := hub.Register("client1", "u1")

	// Fill the channel buffer (size 10)
	for range 10 {
		hub.SendToClient("client1", "msg")
	}

	// This should not block even though buffer is full
	done := make(chan bool)
	go func() {
		hub.SendToClient("client1", "overflow")
		done <- true
	}()

	select {
	case <-done:
		// Expected - send should not block
	case <-time.After(100 * time.Millisecond):
		t.Fatal("SendToClient blocked on full channel")
	}

	hub.Unregister("client1", "u1", ch)
}

func TestHub_ConcurrentAccess(t *testing.T) {
	hub := NewHub()

	var wg sync.WaitGroup
	const numGoroutines = 100

	// Concurrent registrations
	channels := make([]chan string, numGoroutines)
	for i := range numGoroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			channels[idx] = hub.Register("client", "u1")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, numGoroutines, hub.ConnectionCount())

	// Concurrent sends
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.SendToClient("client", "concurrent")
		}()
	}
	wg.Wait()

	// Concurrent unregistrations
	for i := range numGoroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			hub.Unregister("client", "u1", channels[idx])
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_AnonymousClientsAreNotTrackedAsUsers(t *testing.T) {
	hub := NewHub()

	ch := hub.Register("client1", "")

	assert.Equal(t, 1, hub.ClientCount())
	assert.Equal(t, 0, hub.UserCount())

	hub.SendToClient("client1", "toast")
	assert.Equal(t, "toast", <-ch)

	hub.Unregister("client1", "", ch)
	assert.Equal(t, 0, hub.ConnectionCount())
}
