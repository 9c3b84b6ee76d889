// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package models defines the records exchanged with the Daily Grind API.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ID is an identifier normalized to its string form.
// The API is inconsistent about sending ids as numbers or strings, so both decode to the same ID.
type ID string

// IDFrom normalizes a Go value into an ID.
// Numbers and numeric strings share one form, so 3, 3.0, "3.0" and "003"
// all become "3". Other strings are only trimmed; nil becomes the empty ID.
func IDFrom(v any) ID {
	switch id := v.(type) {
	case nil:
		return ""
	case ID:
		return stringID(string(id))
	case string:
		return stringID(id)
	case int:
		return ID(strconv.Itoa(id))
	case int32:
		return ID(strconv.FormatInt(int64(id), 10))
	case int64:
		return ID(strconv.FormatInt(id, 10))
	case uint:
		return ID(strconv.FormatUint(uint64(id), 10))
	case uint32:
		return ID(strconv.FormatUint(uint64(id), 10))
	case uint64:
		return ID(strconv.FormatUint(id, 10))
	case float32:
		return floatID(float64(id))
	case float64:
		return floatID(id)
	case json.Number:
		return stringID(id.String())
	case fmt.Stringer:
		return ID(strings.TrimSpace(id.String()))
	default:
		return ID(fmt.Sprint(v))
	}
}

func floatID(f float64) ID {
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return ID(strconv.FormatInt(int64(f), 10))
	}
	return ID(strconv.FormatFloat(f, 'f', -1, 64))
}

func stringID(s string) ID {
	s = strings.TrimSpace(s)
	if digits, ok := integerLiteral(s); ok {
		return ID(digits)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return floatID(f)
	}
	return ID(s)
}

// integerLiteral canonicalizes a decimal integer of any length ("+007" is
// "7", "-0" is "0") without going through a fixed-size integer.
func integerLiteral(s string) (string, bool) {
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimLeft(s, "+-")
	if digits == "" || len(s)-len(digits) > 1 {
		return "", false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		return "0", true
	}
	if neg {
		return "-" + digits, true
	}
	return digits, true
}

// String returns the normalized identifier.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the id is absent.
func (id ID) IsZero() bool {
	return id == ""
}

// UnmarshalJSON accepts JSON strings, numbers and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = IDFrom(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = IDFrom(n)
	return nil
}
