// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package credential

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"codeberg.org/dailygrind/web/internal/config"
	"github.com/gorilla/securecookie"
)

// CookieCodec signs (and optionally encrypts) the credential cookie.
type CookieCodec struct {
	codec  *securecookie.SecureCookie
	name   string
	maxAge int
	secure bool
}

// NewCookieCodec creates a codec from the session configuration.
// An empty hash key is replaced by a random one, which invalidates all
// cookies on restart.
func NewCookieCodec(cfg *config.SessionConfig, secure bool) (*CookieCodec, error) {
	hashKey, err := decodeKey(cfg.HashKey, "hash")
	if err != nil {
		return nil, err
	}
	if hashKey == nil {
		slog.Warn("session hash key not configured, generating a temporary key")
		hashKey = securecookie.GenerateRandomKey(32)
	}

	blockKey, err := decodeKey(cfg.BlockKey, "block")
	if err != nil {
		return nil, err
	}

	codec := securecookie.New(hashKey, blockKey)
	codec.MaxAge(cfg.MaxAge)

	return &CookieCodec{
		codec:  codec,
		name:   cfg.CookieName,
		maxAge: cfg.MaxAge,
		secure: secure,
	}, nil
}

func decodeKey(value, kind string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("invalid session %s key: %w", kind, err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("invalid session %s key: must be 32 bytes, got %d", kind, len(key))
	}
	return key, nil
}

// Encode returns a cookie carrying token.
func (c *CookieCodec) Encode(token string) (*http.Cookie, error) {
	value, err := c.codec.Encode(c.name, token)
	if err != nil {
		return nil, fmt.Errorf("encode credential cookie: %w", err)
	}
	return c.cookie(value, c.maxAge), nil
}

// Decode reads the token from the request cookie.
// A missing cookie yields "" and http.ErrNoCookie.
func (c *CookieCodec) Decode(r *http.Request) (string, error) {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return "", err
	}
	var token string
	if err := c.codec.Decode(c.name, cookie.Value, &token); err != nil {
		return "", fmt.Errorf("decode credential cookie: %w", err)
	}
	return token, nil
}

// Clear returns a cookie that removes the credential from the browser.
func (c *CookieCodec) Clear() *http.Cookie {
	return c.cookie("", -1)
}

func (c *CookieCodec) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     c.name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// CookiePersister stores the credential in the browser of a single request.
// Writes are visible to later reads within the same request.
type CookiePersister struct {
	codec   *CookieCodec
	req     *http.Request
	w       http.ResponseWriter
	token   string
	mu      sync.Mutex
	written bool
}

// NewCookiePersister binds a codec to one request/response pair.
func (c *CookieCodec) NewCookiePersister(w http.ResponseWriter, r *http.Request) *CookiePersister {
	return &CookiePersister{codec: c, req: r, w: w}
}

func (p *CookiePersister) Load(context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.written {
		return p.token, nil
	}
	token, err := p.codec.Decode(p.req)
	if errors.Is(err, http.ErrNoCookie) {
		return "", nil
	}
	return token, err
}

func (p *CookiePersister) Save(_ context.Context, token string) error {
	cookie, err := p.codec.Encode(token)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	http.SetCookie(p.w, cookie)
	p.token = token
	p.written = true
	return nil
}

func (p *CookiePersister) Delete(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	http.SetCookie(p.w, p.codec.Clear())
	p.token = ""
	p.written = true
	return nil
}
