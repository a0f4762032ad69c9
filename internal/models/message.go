package models

import (
	"fmt"
	"strings"
	"time"
)

// EventMessage is the wire form of a dispatched hub event, published to the
// event feed and written to the audit store.
type EventMessage struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	OrderID   int64      `json:"order_id"`
	Table     int        `json:"table_number"`
	Origin    string     `json:"origin,omitempty"`
	Excluded  string     `json:"excluded,omitempty"`
	Target    string     `json:"target,omitempty"`
	Info      string     `json:"info,omitempty"`
	Total     int        `json:"total_amount"`
	Items     []ItemView `json:"items"`
	Timestamp time.Time  `json:"timestamp"`
}

// Summary renders a one-line description of the message.
func (m *EventMessage) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s order %d (table %d)", m.Kind, m.OrderID, m.Table)
	switch {
	case m.Target != "":
		fmt.Fprintf(&b, " for %s", m.Target)
	case m.Origin != "":
		fmt.Fprintf(&b, " from %s", m.Origin)
	case m.Excluded != "":
		fmt.Fprintf(&b, " claimed by %s", m.Excluded)
	}
	if m.Info != "" {
		fmt.Fprintf(&b, ": %s", m.Info)
	}
	return b.String()
}

// GenerateRoutingKey generates the routing key / subject suffix for an event kind.
func GenerateRoutingKey(kind string) string {
	return fmt.Sprintf("restaurant.%s", strings.ToLower(kind))
}
