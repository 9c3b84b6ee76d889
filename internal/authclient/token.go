// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package authclient

import (
	"encoding/json"
	"errors"
	"fmt"

	"codeberg.org/dailygrind/web/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSubject is returned for tokens without a subject claim.
var ErrNoSubject = errors.New("token has no subject")

// Numeric subjects are kept as json.Number so ids above 2^53 stay exact.
var tokenParser = jwt.NewParser(jwt.WithJSONNumber())

// SubjectFromToken extracts the sub claim of a JWT without verifying its
// signature. The result identifies which user record to fetch and grants nothing.
func SubjectFromToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	if _, _, err := tokenParser.ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}

	switch sub := claims["sub"].(type) {
	case string:
		if sub != "" {
			return sub, nil
		}
	case json.Number:
		// Some issuers put a numeric user id in sub.
		return models.IDFrom(sub).String(), nil
	}
	return "", ErrNoSubject
}
