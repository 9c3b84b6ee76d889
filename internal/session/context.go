// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package session

import "context"

type contextKey struct{}

// WithController returns a context carrying c.
func WithController(ctx context.Context, c *Controller) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the controller stored in ctx, or nil.
func FromContext(ctx context.Context) *Controller {
	c, _ := ctx.Value(contextKey{}).(*Controller)
	return c
}
