// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package authclient

import (
	"errors"

	"codeberg.org/dailygrind/web/internal/apiclient"
)

// AuthError is a failed auth operation with a message fit for display.
type AuthError struct {
	Err     error
	Op      string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// newAuthError prefers the API's message over fallback.
func newAuthError(op string, err error, fallback string) *AuthError {
	msg := apiclient.Message(err)
	if msg == "" {
		msg = fallback
	}
	return &AuthError{Op: op, Message: msg, Err: err}
}

// ErrorMessage returns the display message of an auth failure, or err.Error().
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	return err.Error()
}
