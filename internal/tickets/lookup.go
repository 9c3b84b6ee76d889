// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package tickets

import "codeberg.org/dailygrind/web/internal/models"

// Lookup maps normalized ids to names.
type Lookup map[models.ID]string

// NewLookup indexes entries by id. Later duplicates win.
func NewLookup(entries []models.Named) Lookup {
	l := make(Lookup, len(entries))
	for _, e := range entries {
		l[models.IDFrom(e.ID)] = e.Name
	}
	return l
}

// Name returns the name for id, or fallback when id is unknown.
func (l Lookup) Name(id models.ID, fallback string) string {
	if name, ok := l[models.IDFrom(id)]; ok {
		return name
	}
	return fallback
}
