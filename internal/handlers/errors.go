// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"codeberg.org/dailygrind/web/internal/i18n"
	"codeberg.org/dailygrind/web/internal/templates"
	"github.com/labstack/echo/v4"
)

// NotFound renders the 404 error page.
func NotFound(c echo.Context) error {
	ctx := c.Request().Context()
	return RenderError(c, http.StatusNotFound, i18n.T(ctx, "error_not_found"))
}

// RenderError renders a generic error page with the given status code and message.
func RenderError(c echo.Context, code int, message string) error {
	title := http.StatusText(code)
	if title == "" {
		title = i18n.T(c.Request().Context(), "error_title")
	}
	return Render(c, code, templates.Error(code, title, message))
}

// ErrorHandler is the echo HTTPErrorHandler. Browsers get an error page,
// API style requests (JSON accept header, /health) get JSON.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := ""
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}

	if code >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request failed", "error", err, "path", c.Request().URL.Path)
		message = ""
	}

	if wantsJSON(c) {
		if message == "" {
			message = http.StatusText(code)
		}
		_ = c.JSON(code, map[string]string{"error": message})
		return
	}

	if code == http.StatusNotFound {
		_ = NotFound(c)
		return
	}
	if renderErr := RenderError(c, code, message); renderErr != nil {
		slog.Error("failed to render error page", "error", renderErr)
		_ = c.String(code, http.StatusText(code))
	}
}

func wantsJSON(c echo.Context) bool {
	if c.Request().URL.Path == "/health" {
		return true
	}
	accept := c.Request().Header.Get(echo.HeaderAccept)
	return strings.Contains(accept, echo.MIMEApplicationJSON) && !strings.Contains(accept, echo.MIMETextHTML)
}
