// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware

import (
	"net/http"

	"codeberg.org/dailygrind/web/internal/appcontext"
	"codeberg.org/dailygrind/web/internal/guard"
	"codeberg.org/dailygrind/web/internal/htmx"
	"codeberg.org/dailygrind/web/internal/session"
	"codeberg.org/dailygrind/web/internal/templates"
	"github.com/labstack/echo/v4"
)

// RequireAuth redirects anonymous users to the login page.
func RequireAuth() echo.MiddlewareFunc {
	return requireMode(guard.Protected)
}

// RequireGuest redirects signed-in users to the dashboard.
func RequireGuest() echo.MiddlewareFunc {
	return requireMode(guard.PublicOnly)
}

func requireMode(mode guard.Mode) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var state session.State
			if cc := appcontext.From(c); cc != nil && cc.Session != nil {
				state = cc.Session.State()
			}

			d := guard.Decide(state, mode)
			switch d.Action {
			case guard.Wait:
				c.Response().Header().Set("Refresh", "1")
				c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
				c.Response().WriteHeader(http.StatusOK)
				return templates.Waiting().Render(c.Request().Context(), c.Response())
			case guard.Redirect:
				htmx.Redirect(c.Response(), c.Request(), d.Location)
				return nil
			default:
				return next(c)
			}
		}
	}
}
