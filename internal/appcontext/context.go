// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package appcontext provides the custom Echo context and context keys.
package appcontext

import (
	"codeberg.org/dailygrind/web/internal/apiclient"
	"codeberg.org/dailygrind/web/internal/htmx"
	"codeberg.org/dailygrind/web/internal/models"
	"codeberg.org/dailygrind/web/internal/session"
	"codeberg.org/dailygrind/web/internal/toast"
	"github.com/labstack/echo/v4"
)

// Context keys for storing values in context.Context.
type (
	// CSRFToken is the context key for the CSRF token.
	CSRFToken struct{}
	// CSSPath is the context key for the CSS path.
	CSSPath struct{}
	// JSPath is the context key for the JS path.
	JSPath struct{}
	// ClientID is the context key for the browser client ID.
	ClientID struct{}
)

// Assets holds paths to static assets.
type Assets struct {
	CSSPath string
	JSPath  string
}

// Context is a custom Echo context with typed fields for htmx, assets and
// the per-request session.
type Context struct {
	echo.Context
	Htmx     *htmx.Request
	Assets   *Assets
	Session  *session.Controller // nil outside session-aware routes
	API      *apiclient.Client   // carries this request's credential
	Toasts   *toast.Notifier
	ClientID string
}

// GetUser returns the authenticated user, or nil if not authenticated.
func (c *Context) GetUser() *models.User {
	if c.Session == nil {
		return nil
	}
	return c.Session.User()
}

// From returns the custom context wrapped around c, or nil.
func From(c echo.Context) *Context {
	cc, _ := c.(*Context)
	return cc
}
