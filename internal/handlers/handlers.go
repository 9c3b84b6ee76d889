// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"context"
	"net/http"

	"codeberg.org/dailygrind/web/internal/models"
	"codeberg.org/dailygrind/web/internal/sse"
	"codeberg.org/dailygrind/web/internal/support"
	"codeberg.org/dailygrind/web/internal/templates"
	"codeberg.org/dailygrind/web/internal/toast"
	"github.com/labstack/echo/v4"
)

// SupportSender delivers support requests.
type SupportSender interface {
	Send(ctx context.Context, req support.Request) error
}

// Handlers contains all HTTP handlers.
type Handlers struct {
	support SupportSender
	toasts  *toast.Registry
	hub     *sse.Hub
}

// New creates a new Handlers instance. A nil support sender disables the
// support form. A nil hub disables live update events.
func New(supportSender SupportSender, toasts *toast.Registry, hub *sse.Hub) *Handlers {
	return &Handlers{support: supportSender, toasts: toasts, hub: hub}
}

// ticketsChanged tells every open browser that the ticket list is stale.
func (h *Handlers) ticketsChanged(id models.ID) {
	if h.hub != nil {
		h.hub.Broadcast(sse.FormatEvent(sse.EventTicketsChanged, id.String()))
	}
}

// profileUpdated pushes the new display name to every browser of the user.
func (h *Handlers) profileUpdated(user *models.User) {
	if h.hub != nil && user != nil {
		h.hub.SendToUser(user.ID.String(), sse.FormatEvent(sse.EventProfileUpdated, user.DisplayName))
	}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Home renders the home page.
func (h *Handlers) Home(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Home())
}

func (h *Handlers) About(c echo.Context) error {
	return Render(c, http.StatusOK, templates.About())
}

func (h *Handlers) Features(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Features())
}

func (h *Handlers) Pricing(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Pricing())
}

func (h *Handlers) Blog(c echo.Context) error {
	return Render(c, http.StatusOK, templates.Blog())
}
