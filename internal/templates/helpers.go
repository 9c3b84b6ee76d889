// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package templates

import (
	"context"

	"codeberg.org/dailygrind/web/internal/appcontext"
	"codeberg.org/dailygrind/web/internal/i18n"
	"codeberg.org/dailygrind/web/internal/models"
	"codeberg.org/dailygrind/web/internal/session"
	"codeberg.org/dailygrind/web/internal/toast"
)

type (
	toastsKey  struct{}
	partialKey struct{}
)

// CSRFToken returns the CSRF token from the context.
func CSRFToken(ctx context.Context) string {
	if token, ok := ctx.Value(appcontext.CSRFToken{}).(string); ok {
		return token
	}
	return ""
}

// T translates a message by ID.
func T(ctx context.Context, messageID string) string {
	return i18n.T(ctx, messageID)
}

// TData translates a message with template data.
func TData(ctx context.Context, messageID string, data map[string]any) string {
	return i18n.TData(ctx, messageID, data)
}

// TPlural translates a message with plural forms.
func TPlural(ctx context.Context, messageID string, count int) string {
	return i18n.TPlural(ctx, messageID, count)
}

// Locale returns the current locale.
func Locale(ctx context.Context) string {
	return i18n.GetLocale(ctx)
}

// CSSPath returns the path to the hashed CSS file.
func CSSPath(ctx context.Context) string {
	if path, ok := ctx.Value(appcontext.CSSPath{}).(string); ok {
		return path
	}
	return "/static/css/styles.css"
}

// JSPath returns the path to the hashed JS file.
func JSPath(ctx context.Context) string {
	if path, ok := ctx.Value(appcontext.JSPath{}).(string); ok {
		return path
	}
	return "/static/js/app.js"
}

// GetUser returns the authenticated user from context, or nil if not logged in.
func GetUser(ctx context.Context) *models.User {
	if c := session.FromContext(ctx); c != nil {
		return c.User()
	}
	return nil
}

// WithPartial marks ctx so pages render without the surrounding layout.
func WithPartial(ctx context.Context) context.Context {
	return context.WithValue(ctx, partialKey{}, true)
}

// IsPartial reports whether WithPartial was applied to ctx.
func IsPartial(ctx context.Context) bool {
	partial, _ := ctx.Value(partialKey{}).(bool)
	return partial
}

// WithToasts returns a context carrying the toasts rendered by the layout.
func WithToasts(ctx context.Context, toasts []toast.Toast) context.Context {
	return context.WithValue(ctx, toastsKey{}, toasts)
}

// Toasts returns the toasts stored by WithToasts.
func Toasts(ctx context.Context) []toast.Toast {
	toasts, _ := ctx.Value(toastsKey{}).([]toast.Toast)
	return toasts
}
