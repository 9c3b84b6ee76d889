// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"log/slog"
	"net/http"

	"codeberg.org/dailygrind/web/internal/i18n"
	"codeberg.org/dailygrind/web/internal/support"
	"codeberg.org/dailygrind/web/internal/templates"
	"github.com/labstack/echo/v4"
)

// SupportPage renders the support form. Signed-in users get their address
// prefilled.
func (h *Handlers) SupportPage(c echo.Context) error {
	form := templates.SupportForm{}
	if user := templates.GetUser(c.Request().Context()); user != nil {
		form.Email = user.Email
	}
	return Render(c, http.StatusOK, templates.Support(form))
}

// SubmitSupport sends the support request by mail.
func (h *Handlers) SubmitSupport(c echo.Context) error {
	ctx := c.Request().Context()
	req := support.Request{Email: formValue(c, "email"), Message: formValue(c, "message")}
	form := templates.SupportForm{Email: req.Email, Message: req.Message}

	if h.support == nil {
		form.Error = i18n.T(ctx, "support_unavailable")
		return Render(c, http.StatusServiceUnavailable, templates.Support(form))
	}
	if err := req.Validate(); err != nil {
		form.Error = i18n.T(ctx, "support_invalid")
		return Render(c, http.StatusUnprocessableEntity, templates.Support(form))
	}
	if err := h.support.Send(ctx, req); err != nil {
		slog.ErrorContext(ctx, "support_request_failed", "error", err)
		form.Error = i18n.T(ctx, "support_failed")
		return Render(c, http.StatusBadGateway, templates.Support(form))
	}

	slog.InfoContext(ctx, "support_request_sent")
	success(c, i18n.T(ctx, "support_sent"))
	return Render(c, http.StatusOK, templates.Support(templates.SupportForm{Sent: true}))
}
