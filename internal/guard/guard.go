// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package guard decides whether a view may render for a given session state.
package guard

import "codeberg.org/dailygrind/web/internal/session"

// Mode selects which sessions a view accepts.
type Mode int

const (
	// Protected views require a signed-in user.
	Protected Mode = iota
	// PublicOnly views are for anonymous visitors only.
	PublicOnly
)

// Default redirect targets.
const (
	LoginPath     = "/auth/login"
	DashboardPath = "/dashboard"
)

// Action is what the caller should do.
type Action int

const (
	Render Action = iota
	Wait
	Redirect
)

func (a Action) String() string {
	switch a {
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	default:
		return "render"
	}
}

// Decision is the outcome of Decide.
type Decision struct {
	Location string // set for Redirect
	Action   Action
}

// Decide applies mode to state. While the session is still loading the
// answer is always Wait, never a redirect.
func Decide(state session.State, mode Mode) Decision {
	if state.Loading {
		return Decision{Action: Wait}
	}

	switch mode {
	case Protected:
		if !state.Authenticated() {
			return Decision{Action: Redirect, Location: LoginPath}
		}
	case PublicOnly:
		if state.Authenticated() {
			return Decision{Action: Redirect, Location: DashboardPath}
		}
	}
	return Decision{Action: Render}
}
