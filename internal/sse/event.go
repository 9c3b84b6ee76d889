// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package sse

import "strings"

// Event names understood by the browser script.
const (
	EventConnected      = "connected"
	EventTicketsChanged = "tickets-changed"
	EventProfileUpdated = "profile-updated"
)

// Heartbeat is an SSE comment line; clients ignore it, proxies see traffic.
const Heartbeat = ": heartbeat\n\n"

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// FormatEvent frames data as one SSE event. eventName may be empty for the
// default "message" event. Every line of data gets its own data: field, so
// a lone CR in user supplied text cannot split the event.
func FormatEvent(eventName, data string) string {
	var sb strings.Builder
	if eventName != "" {
		sb.WriteString("event: ")
		sb.WriteString(eventName)
		sb.WriteByte('\n')
	}
	for _, line := range strings.Split(newlines.Replace(data), "\n") {
		sb.WriteString("data: ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	return sb.String()
}
