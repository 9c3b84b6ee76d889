// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"time"

	"codeberg.org/dailygrind/web/internal/appcontext"
	"codeberg.org/dailygrind/web/internal/sse"
	"github.com/labstack/echo/v4"
)

// SSEHandler handles Server-Sent Events connections.
type SSEHandler struct {
	hub       *sse.Hub
	heartbeat time.Duration
}

// NewSSEHandler creates a new SSE handler.
func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{
		hub:       hub,
		heartbeat: 30 * time.Second,
	}
}

// Events streams the events addressed to the requesting browser.
func (h *SSEHandler) Events(c echo.Context) error {
	cc := appcontext.From(c)
	if cc == nil || cc.ClientID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing client id")
	}
	userID := ""
	if user := cc.GetUser(); user != nil {
		userID = user.ID.String()
	}

	ctx := c.Request().Context()
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	w.WriteHeader(http.StatusOK)

	ch := h.hub.Register(cc.ClientID, userID)
	defer h.hub.Unregister(cc.ClientID, userID, ch)

	if _, err := w.Write([]byte(sse.FormatEvent(sse.EventConnected, "ok"))); err != nil {
		return nil
	}
	w.Flush()

	// Heartbeats keep the connection alive through proxies
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := w.Write([]byte(sse.Heartbeat)); err != nil {
				return nil
			}
			w.Flush()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if _, err := w.Write([]byte(msg)); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}
