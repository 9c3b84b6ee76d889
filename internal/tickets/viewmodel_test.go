// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package tickets_test

import (
	"encoding/json"
	"testing"

	"codeberg.org/dailygrind/web/internal/models"
	"codeberg.org/dailygrind/web/internal/tickets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catalogJSON uses numeric ids the way the API sends them.
const catalogJSON = `{
	"types": [{"id": 1, "name": "Bug"}, {"id": 2, "name": "Feature"}],
	"states": [{"id": 1, "name": "Todo"}, {"id": 2, "name": "In Progress"}, {"id": 3, "name": "Closed"}],
	"priorities": [{"id": 1, "name": "High"}, {"id": 2, "name": "Medium"}, {"id": 3, "name": "Low"}],
	"users": [{"id": 10, "email": "a@b.com", "displayName": "Alice"}, {"id": "11", "email": "bob@b.com"}]
}`

func testCatalog(t *testing.T) *models.Catalog {
	t.Helper()
	var cat models.Catalog
	require.NoError(t, json.Unmarshal([]byte(catalogJSON), &cat))
	return &cat
}

func testTickets() []models.Ticket {
	return []models.Ticket{
		{ID: "1", Title: "a", TypeID: "1", StateID: "3", PriorityID: "1", AssigneeID: "10"},
		{ID: "2", Title: "b", TypeID: "2", StateID: "2", PriorityID: "2", AssigneeID: "11"},
		{ID: "3", Title: "c", TypeID: "1", StateID: "3", PriorityID: "3"},
		{ID: "4", Title: "d", TypeID: "9", StateID: "1", AssigneeID: "10"},
	}
}

func TestTypeName_MatchesNumberAndString(t *testing.T) {
	vm := tickets.NewViewModel(nil, testCatalog(t))

	assert.Equal(t, "Feature", vm.TypeName(models.IDFrom(2)))
	assert.Equal(t, "Feature", vm.TypeName(models.IDFrom("2")))
	assert.Equal(t, "Feature", vm.TypeName(models.IDFrom(2.0)))
	assert.Equal(t, "Unknown", vm.TypeName(models.IDFrom(7)))
}

func TestStateName_Fallback(t *testing.T) {
	vm := tickets.NewViewModel(nil, testCatalog(t))

	assert.Equal(t, "In Progress", vm.StateName("2"))
	assert.Equal(t, "Unknown", vm.StateName(""))
	assert.Equal(t, "Unknown", vm.StateName("99"))
}

func TestPriorityName(t *testing.T) {
	vm := tickets.NewViewModel(nil, &models.Catalog{
		Priorities: []models.Named{{ID: models.IDFrom(1), Name: "High"}},
	})

	assert.Equal(t, "Medium", vm.PriorityName(models.IDFrom(nil)))
	assert.Equal(t, "High", vm.PriorityName(models.IDFrom(1)))
	assert.Equal(t, "High", vm.PriorityName(models.IDFrom("1")))
	assert.Equal(t, "Medium", vm.PriorityName(models.IDFrom(5)))
}

func TestUserDisplayName(t *testing.T) {
	vm := tickets.NewViewModel(nil, testCatalog(t))

	assert.Equal(t, "Alice", vm.UserDisplayName(models.IDFrom(10)))
	assert.Equal(t, "bob@b.com", vm.UserDisplayName(models.IDFrom(11)))
	assert.Equal(t, "Unassigned", vm.UserDisplayName(""))
	assert.Equal(t, "Unassigned", vm.UserDisplayName("404"))
}

func TestFilterByState_IgnoresCaseAndWhitespace(t *testing.T) {
	vm := tickets.NewViewModel(testTickets(), testCatalog(t))

	spaced := vm.FilterByState("In Progress")
	compact := vm.FilterByState("inprogress")

	assert.Equal(t, spaced, compact)
	require.Len(t, spaced, 1)
	assert.Equal(t, models.ID("2"), spaced[0].ID)
	assert.Len(t, vm.FilterByState(" CLOSED "), 2)
	assert.Empty(t, vm.FilterByState("archived"))
}

func TestTicketsForUser(t *testing.T) {
	vm := tickets.NewViewModel(testTickets(), testCatalog(t))

	got := vm.TicketsForUser(models.IDFrom(10))

	require.Len(t, got, 2)
	assert.Equal(t, models.ID("1"), got[0].ID)
	assert.Equal(t, models.ID("4"), got[1].ID)
	assert.Empty(t, vm.TicketsForUser("12"))
}

func TestStatistics(t *testing.T) {
	vm := tickets.NewViewModel(testTickets(), testCatalog(t))

	stats := vm.Statistics()

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Closed)
	assert.Equal(t, 1, stats.InProgress)
	assert.Equal(t, 1, stats.Todo)
	assert.Equal(t, 50, stats.CompletionRate)
	assert.Equal(t, tickets.PriorityCounts{High: 1, Medium: 2, Low: 1}, stats.Priorities)
}

func TestStatistics_Empty(t *testing.T) {
	vm := tickets.NewViewModel(nil, nil)

	stats := vm.Statistics()

	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, 0, stats.CompletionRate)
	assert.NotNil(t, vm.Catalog())
}

func TestStatistics_RoundsCompletionRate(t *testing.T) {
	cat := &models.Catalog{States: []models.Named{{ID: "1", Name: "Closed"}, {ID: "2", Name: "Todo"}}}
	vm := tickets.NewViewModel([]models.Ticket{
		{ID: "1", StateID: "1"},
		{ID: "2", StateID: "1"},
		{ID: "3", StateID: "2"},
	}, cat)

	assert.Equal(t, 67, vm.Statistics().CompletionRate)
}

func TestRows(t *testing.T) {
	vm := tickets.NewViewModel(testTickets(), testCatalog(t))

	rows := vm.Rows(vm.Tickets())

	require.Len(t, rows, 4)
	assert.Equal(t, tickets.Row{
		Ticket:   testTickets()[0],
		Type:     "Bug",
		State:    "Closed",
		Priority: "High",
		Assignee: "Alice",
	}, rows[0])
	assert.Equal(t, "Unknown", rows[3].Type)
	assert.Equal(t, "Medium", rows[3].Priority)
}
