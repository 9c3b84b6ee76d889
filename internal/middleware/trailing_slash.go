// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// StripTrailingSlash redirects requests with trailing slashes to the canonical
// URL without. Register it with Echo.Pre so it runs before routing.
func StripTrailingSlash() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if path == "/" || !strings.HasSuffix(path, "/") {
				return next(c)
			}
			// Collapse leading slashes so the target never becomes a
			// protocol-relative URL.
			target := "/" + strings.Trim(path, "/")
			if q := c.Request().URL.RawQuery; q != "" {
				target += "?" + q
			}
			return c.Redirect(http.StatusMovedPermanently, target)
		}
	}
}
