// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware

import (
	"log/slog"

	"codeberg.org/dailygrind/web/internal/apiclient"
	"codeberg.org/dailygrind/web/internal/appcontext"
	"codeberg.org/dailygrind/web/internal/authclient"
	"codeberg.org/dailygrind/web/internal/credential"
	"codeberg.org/dailygrind/web/internal/session"
	"github.com/labstack/echo/v4"
)

// LoadSession builds the per-request session: an API client carrying the
// browser's credential, the auth client on top of it and a session
// controller, resolved before the handler runs.
func LoadSession(base *apiclient.Client, codec *credential.CookieCodec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := appcontext.From(c)
			if cc == nil {
				cc = &appcontext.Context{Context: c}
			}

			ctx := c.Request().Context()
			api := base.Clone()
			store := credential.NewStore(ctx, codec.NewCookiePersister(c.Response(), c.Request()), api)
			ctrl := session.New(authclient.New(api, store))

			res := ctrl.Init(ctx)
			if res.Outcome == authclient.OutcomeFailed {
				slog.WarnContext(ctx, "session lookup failed", "error", res.Err)
			}

			cc.Session = ctrl
			cc.API = api
			c.SetRequest(c.Request().WithContext(session.WithController(ctx, ctrl)))
			return next(cc)
		}
	}
}
