// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package tickets

import (
	"context"
	"fmt"
	"log/slog"

	"codeberg.org/dailygrind/web/internal/models"
	"golang.org/x/sync/errgroup"
)

// Source loads tickets and the tables they refer to.
type Source interface {
	Tickets(ctx context.Context) ([]models.Ticket, error)
	Catalog(ctx context.Context) (*models.Catalog, error)
}

// Store persists ticket writes. Failures are reported in the result.
type Store interface {
	CreateTicket(ctx context.Context, in models.TicketInput) models.MutationResult
	UpdateTicket(ctx context.Context, id models.ID, in models.TicketInput) models.MutationResult
	DeleteTicket(ctx context.Context, id models.ID) models.MutationResult
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Notification texts.
const (
	msgCreated = "Ticket created successfully"
	msgUpdated = "Ticket updated successfully"
	msgDeleted = "Ticket deleted successfully"
)

// MutationError is a rejected ticket write.
type MutationError struct {
	Op      string
	Message string
}

func (e *MutationError) Error() string {
	return e.Message
}

// Load fetches tickets and catalog concurrently and builds a view-model.
func Load(ctx context.Context, src Source) (*ViewModel, error) {
	var (
		list []models.Ticket
		cat  *models.Catalog
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = src.Tickets(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		cat, err = src.Catalog(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load tickets: %w", err)
	}

	return NewViewModel(list, cat), nil
}

// Service performs ticket writes and reports their outcome through a Notifier.
type Service struct {
	store    Store
	notifier Notifier
}

// NewService creates a service. Inputs are forwarded as given; escaping is
// the renderer's job.
func NewService(store Store, notifier Notifier) *Service {
	return &Service{store: store, notifier: notifier}
}

// Create creates a ticket.
func (s *Service) Create(ctx context.Context, in models.TicketInput) (*models.Ticket, error) {
	res := s.store.CreateTicket(ctx, in)
	return s.finish("create", res, msgCreated)
}

// Update updates a ticket.
func (s *Service) Update(ctx context.Context, id models.ID, in models.TicketInput) (*models.Ticket, error) {
	res := s.store.UpdateTicket(ctx, id, in)
	return s.finish("update", res, msgUpdated)
}

// Delete deletes a ticket.
func (s *Service) Delete(ctx context.Context, id models.ID) error {
	res := s.store.DeleteTicket(ctx, id)
	_, err := s.finish("delete", res, msgDeleted)
	return err
}

func (s *Service) finish(op string, res models.MutationResult, success string) (*models.Ticket, error) {
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = fmt.Sprintf("Failed to %s ticket", op)
		}
		slog.Info("ticket_"+op+"_failed", "error", msg)
		s.notifier.Error(msg)
		return nil, &MutationError{Op: op, Message: msg}
	}

	s.notifier.Success(success)
	return res.Ticket, nil
}
