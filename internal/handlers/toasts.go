// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"

	"codeberg.org/dailygrind/web/internal/appcontext"
	"codeberg.org/dailygrind/web/internal/i18n"
	"github.com/labstack/echo/v4"
)

// DismissToast removes a toast of the requesting browser before it expires.
func (h *Handlers) DismissToast(c echo.Context) error {
	clientID := ""
	if cc := appcontext.From(c); cc != nil {
		clientID = cc.ClientID
	}
	if clientID == "" || h.toasts == nil || !h.toasts.Dismiss(clientID, c.Param("id")) {
		return echo.NewHTTPError(http.StatusNotFound, i18n.T(c.Request().Context(), "toast_not_found"))
	}
	return c.NoContent(http.StatusNoContent)
}
