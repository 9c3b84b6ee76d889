// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package apiclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"codeberg.org/dailygrind/web/internal/models"
	"golang.org/x/sync/errgroup"
)

// Tickets lists all tickets visible to the current credential.
func (c *Client) Tickets(ctx context.Context) ([]models.Ticket, error) {
	var tickets []models.Ticket
	if err := c.Do(ctx, http.MethodGet, "/tickets", nil, &tickets); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}

// Catalog loads ticket types, states, priorities and users.
func (c *Client) Catalog(ctx context.Context) (*models.Catalog, error) {
	var cat models.Catalog

	tables := []struct {
		dst  any
		path string
	}{
		{&cat.Types, "/tickets/types"},
		{&cat.States, "/tickets/states"},
		{&cat.Priorities, "/tickets/priorities"},
		{&cat.Users, "/users"},
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, table := range tables {
		g.Go(func() error {
			if err := c.Do(gctx, http.MethodGet, table.path, nil, table.dst); err != nil {
				return fmt.Errorf("load %s: %w", table.path, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &cat, nil
}

// CreateTicket creates a ticket. Failures are reported in the result, not as an error.
func (c *Client) CreateTicket(ctx context.Context, in models.TicketInput) models.MutationResult {
	var ticket models.Ticket
	err := c.Do(ctx, http.MethodPost, "/tickets", in, &ticket)
	return mutationResult(err, &ticket, "Failed to create ticket")
}

// UpdateTicket replaces the writable fields of a ticket.
func (c *Client) UpdateTicket(ctx context.Context, id models.ID, in models.TicketInput) models.MutationResult {
	var ticket models.Ticket
	err := c.Do(ctx, http.MethodPut, "/tickets/"+url.PathEscape(id.String()), in, &ticket)
	return mutationResult(err, &ticket, "Failed to update ticket")
}

// DeleteTicket deletes a ticket.
func (c *Client) DeleteTicket(ctx context.Context, id models.ID) models.MutationResult {
	err := c.Do(ctx, http.MethodDelete, "/tickets/"+url.PathEscape(id.String()), nil, nil)
	return mutationResult(err, nil, "Failed to delete ticket")
}

func mutationResult(err error, ticket *models.Ticket, fallback string) models.MutationResult {
	if err != nil {
		slog.Warn("ticket_mutation_failed", "error", err)
		msg := Message(err)
		if msg == "" {
			msg = fallback
		}
		return models.MutationResult{Success: false, Error: msg}
	}
	return models.MutationResult{Success: true, Ticket: ticket}
}
