// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package tickets_test

import (
	"context"
	"errors"
	"testing"

	"codeberg.org/dailygrind/web/internal/models"
	"codeberg.org/dailygrind/web/internal/tickets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) { n.successes = append(n.successes, msg) }
func (n *recordingNotifier) Error(msg string)   { n.errors = append(n.errors, msg) }

type fakeStore struct {
	result models.MutationResult
	input  models.TicketInput
	id     models.ID
}

func (f *fakeStore) CreateTicket(_ context.Context, in models.TicketInput) models.MutationResult {
	f.input = in
	return f.result
}

func (f *fakeStore) UpdateTicket(_ context.Context, id models.ID, in models.TicketInput) models.MutationResult {
	f.id, f.input = id, in
	return f.result
}

func (f *fakeStore) DeleteTicket(_ context.Context, id models.ID) models.MutationResult {
	f.id = id
	return f.result
}

func TestCreate_Success(t *testing.T) {
	store := &fakeStore{result: models.MutationResult{Success: true, Ticket: &models.Ticket{ID: "5"}}}
	notifier := &recordingNotifier{}
	svc := tickets.NewService(store, notifier)

	ticket, err := svc.Create(context.Background(), models.TicketInput{
		Title:       "Broken login",
		Description: "Steps",
	})

	require.NoError(t, err)
	assert.Equal(t, models.ID("5"), ticket.ID)
	assert.Equal(t, "Broken login", store.input.Title)
	assert.Equal(t, "Steps", store.input.Description)
	assert.Equal(t, []string{"Ticket created successfully"}, notifier.successes)
	assert.Empty(t, notifier.errors)
}

func TestCreate_ForwardsTextVerbatim(t *testing.T) {
	titles := []string{
		"Handle a<b and c>d",
		"Fix <div> alignment on pricing",
		"Render <script> tags literally",
		"Tom &amp; Jerry",
	}
	for _, title := range titles {
		t.Run(title, func(t *testing.T) {
			store := &fakeStore{result: models.MutationResult{Success: true, Ticket: &models.Ticket{ID: "1"}}}
			svc := tickets.NewService(store, &recordingNotifier{})

			_, err := svc.Create(context.Background(), models.TicketInput{Title: title, Description: " " + title + " "})

			require.NoError(t, err)
			assert.Equal(t, title, store.input.Title)
			assert.Equal(t, " "+title+" ", store.input.Description)
		})
	}
}

func TestUpdate_ForwardsTextVerbatim(t *testing.T) {
	store := &fakeStore{result: models.MutationResult{Success: true, Ticket: &models.Ticket{ID: "5"}}}
	svc := tickets.NewService(store, &recordingNotifier{})

	_, err := svc.Update(context.Background(), "5", models.TicketInput{Title: "x < y", Description: "<i>why</i>"})

	require.NoError(t, err)
	assert.Equal(t, "x < y", store.input.Title)
	assert.Equal(t, "<i>why</i>", store.input.Description)
}

func TestUpdate_FailureCarriesServerMessage(t *testing.T) {
	store := &fakeStore{result: models.MutationResult{Success: false, Error: "Title is required"}}
	notifier := &recordingNotifier{}
	svc := tickets.NewService(store, notifier)

	ticket, err := svc.Update(context.Background(), "5", models.TicketInput{})

	assert.Nil(t, ticket)
	var mutErr *tickets.MutationError
	require.True(t, errors.As(err, &mutErr))
	assert.Equal(t, "Title is required", mutErr.Message)
	assert.Equal(t, "update", mutErr.Op)
	assert.Equal(t, models.ID("5"), store.id)
	assert.Equal(t, []string{"Title is required"}, notifier.errors)
	assert.Empty(t, notifier.successes)
}

func TestDelete(t *testing.T) {
	store := &fakeStore{result: models.MutationResult{Success: true}}
	notifier := &recordingNotifier{}
	svc := tickets.NewService(store, notifier)

	err := svc.Delete(context.Background(), "7")

	require.NoError(t, err)
	assert.Equal(t, models.ID("7"), store.id)
	assert.Equal(t, []string{"Ticket deleted successfully"}, notifier.successes)
}

func TestDelete_FailureWithoutMessage(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := tickets.NewService(&fakeStore{}, notifier)

	err := svc.Delete(context.Background(), "7")

	require.Error(t, err)
	assert.Equal(t, "Failed to delete ticket", err.Error())
	assert.Equal(t, []string{"Failed to delete ticket"}, notifier.errors)
}

type fakeSource struct {
	err error
}

func (f fakeSource) Tickets(context.Context) ([]models.Ticket, error) {
	return []models.Ticket{{ID: "1", StateID: "1"}}, nil
}

func (f fakeSource) Catalog(context.Context) (*models.Catalog, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Catalog{States: []models.Named{{ID: "1", Name: "Closed"}}}, nil
}

func TestLoad(t *testing.T) {
	vm, err := tickets.Load(context.Background(), fakeSource{})

	require.NoError(t, err)
	assert.Equal(t, 100, vm.Statistics().CompletionRate)
}

func TestLoad_Error(t *testing.T) {
	_, err := tickets.Load(context.Background(), fakeSource{err: errors.New("down")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "down")
}
