// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"log/slog"

	"codeberg.org/dailygrind/web/internal/appcontext"
	"codeberg.org/dailygrind/web/internal/assets"
	"codeberg.org/dailygrind/web/internal/htmx"
	"codeberg.org/dailygrind/web/internal/middleware"
	"codeberg.org/dailygrind/web/internal/toast"
	"github.com/labstack/echo/v4"
)

// findAssets returns asset paths from the embedded files.
func findAssets() *appcontext.Assets {
	a := &appcontext.Assets{
		CSSPath: assets.CSSPath(),
		JSPath:  assets.JSPath(),
	}
	slog.Debug("assets loaded", "css", a.CSSPath, "js", a.JSPath)
	return a
}

// customContext wraps the Echo context with appcontext.Context.
// It also populates request.Context with asset paths for template access.
// Must run after middleware.ClientID.
func customContext(a *appcontext.Assets, toasts *toast.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Add asset paths to request context (for templates)
			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, appcontext.CSSPath{}, a.CSSPath)
			ctx = context.WithValue(ctx, appcontext.JSPath{}, a.JSPath)
			c.SetRequest(c.Request().WithContext(ctx))

			// Wrap with custom context (for handlers)
			cc := &appcontext.Context{
				Context:  c,
				Htmx:     htmx.ParseRequest(c.Request()),
				Assets:   a,
				ClientID: middleware.GetClientID(c),
			}
			if toasts != nil && cc.ClientID != "" {
				cc.Toasts = toasts.Notifier(cc.ClientID)
			}
			return next(cc)
		}
	}
}
