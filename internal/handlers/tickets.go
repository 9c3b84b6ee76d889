// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"codeberg.org/dailygrind/web/internal/appcontext"
	"codeberg.org/dailygrind/web/internal/i18n"
	"codeberg.org/dailygrind/web/internal/models"
	"codeberg.org/dailygrind/web/internal/templates"
	"codeberg.org/dailygrind/web/internal/tickets"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

const ticketsPath = "/tickets"

var errNoAPI = errors.New("route has no API client")

func ticketContext(c echo.Context) (*appcontext.Context, error) {
	cc := appcontext.From(c)
	if cc == nil || cc.API == nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError).SetInternal(errNoAPI)
	}
	return cc, nil
}

// Tickets lists tickets, optionally filtered by state name and assignee.
func (h *Handlers) Tickets(c echo.Context) error {
	return h.renderTickets(c, http.StatusOK, models.TicketInput{}, "")
}

func (h *Handlers) renderTickets(c echo.Context, status int, form models.TicketInput, formErr string) error {
	cc, err := ticketContext(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	data := templates.TicketsData{
		State: c.QueryParam("state"),
		Mine:  c.QueryParam("mine") == "1",
		Form:  form,
		Error: formErr,
	}

	vm, err := tickets.Load(ctx, cc.API)
	if err != nil {
		slog.WarnContext(ctx, "tickets_load_failed", "error", err)
		if data.Error == "" {
			data.Error = i18n.T(ctx, "dashboard_unavailable")
		}
		return Render(c, status, templates.Tickets(data))
	}

	list := vm.Tickets()
	if data.State != "" {
		list = vm.FilterByState(data.State)
	}
	if user := cc.GetUser(); data.Mine && user != nil {
		list = lo.Filter(list, func(t models.Ticket, _ int) bool {
			return t.AssigneeID == user.ID
		})
	}

	data.Catalog = vm.Catalog()
	data.Rows = vm.Rows(list)
	return Render(c, status, templates.Tickets(data))
}

func ticketInput(c echo.Context) models.TicketInput {
	return models.TicketInput{
		Title:       formValue(c, "title"),
		Description: formValue(c, "description"),
		TypeID:      models.IDFrom(formValue(c, "type_id")),
		StateID:     models.IDFrom(formValue(c, "state_id")),
		PriorityID:  models.IDFrom(formValue(c, "priority_id")),
		AssigneeID:  models.IDFrom(formValue(c, "assignee_id")),
	}
}

// CreateTicket creates a ticket. The outcome is reported as a toast; a
// failed create re-renders the form with the entered values.
func (h *Handlers) CreateTicket(c echo.Context) error {
	cc, err := ticketContext(c)
	if err != nil {
		return err
	}

	in := ticketInput(c)
	svc := tickets.NewService(cc.API, cc.Toasts)
	ticket, err := svc.Create(c.Request().Context(), in)
	if err != nil {
		return h.renderTickets(c, http.StatusUnprocessableEntity, in, err.Error())
	}
	h.ticketsChanged(lo.FromPtr(ticket).ID)
	return redirect(c, ticketsPath)
}

// UpdateTicket replaces a ticket's writable fields.
func (h *Handlers) UpdateTicket(c echo.Context) error {
	cc, err := ticketContext(c)
	if err != nil {
		return err
	}

	svc := tickets.NewService(cc.API, cc.Toasts)
	id := models.IDFrom(c.Param("id"))
	if _, err := svc.Update(c.Request().Context(), id, ticketInput(c)); err == nil {
		h.ticketsChanged(id)
	}
	return redirect(c, ticketsPath)
}

// DeleteTicket deletes a ticket.
func (h *Handlers) DeleteTicket(c echo.Context) error {
	cc, err := ticketContext(c)
	if err != nil {
		return err
	}

	svc := tickets.NewService(cc.API, cc.Toasts)
	id := models.IDFrom(c.Param("id"))
	if err := svc.Delete(c.Request().Context(), id); err == nil {
		h.ticketsChanged(id)
	}
	return redirect(c, ticketsPath)
}

// Dashboard shows ticket statistics and the tickets assigned to the user.
func (h *Handlers) Dashboard(c echo.Context) error {
	cc, err := ticketContext(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	vm, err := tickets.Load(ctx, cc.API)
	if err != nil {
		slog.WarnContext(ctx, "dashboard_load_failed", "error", err)
		data := templates.DashboardData{Error: i18n.T(ctx, "dashboard_unavailable")}
		return Render(c, http.StatusOK, templates.Dashboard(data))
	}

	data := templates.DashboardData{Stats: vm.Statistics()}
	if user := cc.GetUser(); user != nil {
		data.Mine = vm.Rows(vm.TicketsForUser(user.ID))
	}
	return Render(c, http.StatusOK, templates.Dashboard(data))
}
