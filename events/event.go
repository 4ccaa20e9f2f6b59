// Package events fans server-sent events out to connected admin clients.
package events

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Event is a single server-sent event.
type Event struct {
	ID   string
	Type string
	Data string
}

// NewEvent marshals payload as the event data.
func NewEvent(eventType string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s event: %w", eventType, err)
	}
	return Event{Type: eventType, Data: string(raw)}, nil
}

// WriteTo writes the event in text/event-stream framing.
func (e Event) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	if e.ID != "" {
		fmt.Fprintf(&sb, "id: %s\n", e.ID)
	}
	if e.Type != "" {
		fmt.Fprintf(&sb, "event: %s\n", e.Type)
	}
	// Multi-line data needs one data field per line.
	for _, line := range strings.Split(e.Data, "\n") {
		fmt.Fprintf(&sb, "data: %s\n", line)
	}
	sb.WriteString("\n")

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}
