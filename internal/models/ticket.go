// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// Ticket is a work item tracked by the API.
type Ticket struct { //nolint:govet // fieldalignment not critical for models
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
	ID          ID        `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	TypeID      ID        `json:"typeId"`
	StateID     ID        `json:"stateId"`
	PriorityID  ID        `json:"priorityId,omitempty"`
	AssigneeID  ID        `json:"assigneeId,omitempty"`
}

// Named is an entry of an id-keyed lookup table (ticket types, states, priorities).
type Named struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// TicketInput is the writable subset of a ticket.
type TicketInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	TypeID      ID     `json:"typeId,omitempty"`
	StateID     ID     `json:"stateId,omitempty"`
	PriorityID  ID     `json:"priorityId,omitempty"`
	AssigneeID  ID     `json:"assigneeId,omitempty"`
}

// MutationResult is the outcome of a ticket write as reported by the ticket store.
type MutationResult struct {
	Ticket  *Ticket `json:"ticket,omitempty"`
	Error   string  `json:"error,omitempty"`
	Success bool    `json:"success"`
}

// Catalog holds the lookup tables tickets refer to.
type Catalog struct {
	Types      []Named `json:"types"`
	States     []Named `json:"states"`
	Priorities []Named `json:"priorities"`
	Users      []User  `json:"users"`
}
