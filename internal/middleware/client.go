// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package middleware contains the Echo middleware of the web client.
package middleware

import (
	"context"
	"net/http"

	"codeberg.org/dailygrind/web/internal/appcontext"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ClientCookieName is the cookie identifying a browser across requests.
const ClientCookieName = "dg_client"

const clientCookieMaxAge = 365 * 24 * 60 * 60

// ClientID assigns every browser a random id used to address its toasts and
// event stream. The id is stored in the request context and in the echo
// context under "client_id".
func ClientID(secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := ""
			if cookie, err := c.Cookie(ClientCookieName); err == nil {
				if parsed, err := uuid.Parse(cookie.Value); err == nil {
					id = parsed.String()
				}
			}
			if id == "" {
				id = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     ClientCookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   clientCookieMaxAge,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set("client_id", id)
			ctx := context.WithValue(c.Request().Context(), appcontext.ClientID{}, id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetClientID returns the id assigned by ClientID.
func GetClientID(c echo.Context) string {
	id, _ := c.Get("client_id").(string)
	return id
}
