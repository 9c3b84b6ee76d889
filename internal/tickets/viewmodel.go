// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package tickets derives presentation data from tickets and their lookup
// tables and wraps ticket writes with user notifications.
package tickets

import (
	"math"
	"strings"
	"unicode"

	"codeberg.org/dailygrind/web/internal/models"
)

// Fallback labels for unresolved references.
const (
	UnknownLabel    = "Unknown"
	DefaultPriority = "Medium"
	UnassignedLabel = "Unassigned"
)

// Canonical state names used by Statistics.
const (
	stateClosed     = "closed"
	stateInProgress = "inprogress"
	stateTodo       = "todo"
)

// ViewModel answers presentation questions about a fixed ticket collection.
type ViewModel struct {
	catalog    *models.Catalog
	types      Lookup
	states     Lookup
	priorities Lookup
	users      map[models.ID]models.User
	tickets    []models.Ticket
}

// NewViewModel indexes the catalog once. A nil catalog yields empty lookups.
func NewViewModel(tickets []models.Ticket, cat *models.Catalog) *ViewModel {
	if cat == nil {
		cat = &models.Catalog{}
	}
	users := make(map[models.ID]models.User, len(cat.Users))
	for _, u := range cat.Users {
		users[models.IDFrom(u.ID)] = u
	}
	return &ViewModel{
		catalog:    cat,
		tickets:    tickets,
		types:      NewLookup(cat.Types),
		states:     NewLookup(cat.States),
		priorities: NewLookup(cat.Priorities),
		users:      users,
	}
}

// Catalog returns the lookup tables the view-model was built from.
func (vm *ViewModel) Catalog() *models.Catalog {
	return vm.catalog
}

// Tickets returns the underlying collection.
func (vm *ViewModel) Tickets() []models.Ticket {
	return vm.tickets
}

func (vm *ViewModel) TypeName(id models.ID) string {
	return vm.types.Name(id, UnknownLabel)
}

func (vm *ViewModel) StateName(id models.ID) string {
	return vm.states.Name(id, UnknownLabel)
}

// PriorityName resolves a priority. Tickets without one count as Medium.
func (vm *ViewModel) PriorityName(id models.ID) string {
	if id.IsZero() {
		return DefaultPriority
	}
	return vm.priorities.Name(id, DefaultPriority)
}

// UserDisplayName resolves an assignee to its display name (or email).
func (vm *ViewModel) UserDisplayName(id models.ID) string {
	if id.IsZero() {
		return UnassignedLabel
	}
	u, ok := vm.users[models.IDFrom(id)]
	if !ok {
		return UnassignedLabel
	}
	if name := u.Name(); name != "" {
		return name
	}
	return UnassignedLabel
}

// FilterByState returns the tickets whose state name matches name, ignoring
// case and whitespace ("In Progress" matches "inprogress").
func (vm *ViewModel) FilterByState(name string) []models.Ticket {
	want := normalize(name)
	var out []models.Ticket
	for _, t := range vm.tickets {
		if normalize(vm.StateName(t.StateID)) == want {
			out = append(out, t)
		}
	}
	return out
}

// TicketsForUser returns the tickets assigned to userID.
func (vm *ViewModel) TicketsForUser(userID models.ID) []models.Ticket {
	var out []models.Ticket
	for _, t := range vm.tickets {
		if t.AssigneeID.String() == userID.String() {
			out = append(out, t)
		}
	}
	return out
}

// PriorityCounts is a histogram over the three priority levels.
type PriorityCounts struct {
	High   int
	Medium int
	Low    int
}

// Stats summarizes the collection.
type Stats struct {
	Priorities     PriorityCounts
	Total          int
	Closed         int
	InProgress     int
	Todo           int
	CompletionRate int // percent of closed tickets, rounded
}

// Statistics counts tickets by canonical state and priority.
func (vm *ViewModel) Statistics() Stats {
	s := Stats{Total: len(vm.tickets)}

	for _, t := range vm.tickets {
		switch normalize(vm.StateName(t.StateID)) {
		case stateClosed:
			s.Closed++
		case stateInProgress:
			s.InProgress++
		case stateTodo:
			s.Todo++
		}

		priority := vm.PriorityName(t.PriorityID)
		switch {
		case strings.EqualFold(priority, "high"):
			s.Priorities.High++
		case strings.EqualFold(priority, "medium"):
			s.Priorities.Medium++
		case strings.EqualFold(priority, "low"):
			s.Priorities.Low++
		}
	}

	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Closed) * 100 / float64(s.Total)))
	}
	return s
}

// Row is a ticket with its references resolved for display.
type Row struct {
	Ticket   models.Ticket
	Type     string
	State    string
	Priority string
	Assignee string
}

// Rows resolves tickets for display, in order.
func (vm *ViewModel) Rows(tickets []models.Ticket) []Row {
	rows := make([]Row, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, Row{
			Ticket:   t,
			Type:     vm.TypeName(t.TypeID),
			State:    vm.StateName(t.StateID),
			Priority: vm.PriorityName(t.PriorityID),
			Assignee: vm.UserDisplayName(t.AssigneeID),
		})
	}
	return rows
}

func normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}
