// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package credential keeps the bearer token that authenticates API calls.
//
// A Store pairs durable storage (a Persister) with the transport's default
// headers so that both always agree on the current credential.
package credential

import (
	"context"
	"log/slog"
)

// StorageKey is the fixed key the credential is persisted under.
const StorageKey = "auth_token"

const headerAuthorization = "Authorization"

// Persister stores a single credential string durably.
// Load returns "" and a nil error when nothing is stored.
type Persister interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// HeaderSetter is the part of the API transport that carries default headers.
type HeaderSetter interface {
	SetHeader(key, value string)
	DelHeader(key string)
}

// Store is the single source of truth for the credential.
type Store struct {
	persister Persister
	headers   HeaderSetter
}

// NewStore creates a store and re-attaches a previously persisted credential
// to the transport headers.
func NewStore(ctx context.Context, p Persister, h HeaderSetter) *Store {
	s := &Store{persister: p, headers: h}
	if token := s.Read(ctx); token != "" {
		h.SetHeader(headerAuthorization, bearer(token))
	}
	return s
}

// Set stores a credential, or removes it when token is empty.
// Storage failures are logged and otherwise ignored.
func (s *Store) Set(ctx context.Context, token string) {
	if token == "" {
		s.headers.DelHeader(headerAuthorization)
		if err := s.persister.Delete(ctx); err != nil {
			slog.Warn("credential_delete_failed", "error", err)
		}
		return
	}

	s.headers.SetHeader(headerAuthorization, bearer(token))
	if err := s.persister.Save(ctx, token); err != nil {
		slog.Warn("credential_save_failed", "error", err)
	}
}

// Read returns the stored credential, or "" if there is none or it cannot be read.
func (s *Store) Read(ctx context.Context) string {
	token, err := s.persister.Load(ctx)
	if err != nil {
		slog.Debug("credential_read_failed", "error", err)
		return ""
	}
	return token
}

func bearer(token string) string {
	return "Bearer " + token
}
