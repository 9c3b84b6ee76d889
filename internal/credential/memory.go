// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package credential

import (
	"context"
	"sync"
)

// MemoryPersister keeps the credential in process memory.
type MemoryPersister struct {
	token string
	mu    sync.Mutex
}

// NewMemoryPersister returns a persister preloaded with token.
func NewMemoryPersister(token string) *MemoryPersister {
	return &MemoryPersister{token: token}
}

func (m *MemoryPersister) Load(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryPersister) Save(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryPersister) Delete(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}
