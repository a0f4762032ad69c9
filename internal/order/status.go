package order

import (
	"errors"
	"fmt"
)

// Status is a step of the order lifecycle.
type Status string

const (
	StatusBuilding            Status = "building"
	StatusSubmitted           Status = "submitted"
	StatusAwaitingFulfillment Status = "awaiting_fulfillment"
	StatusReady               Status = "ready"
	StatusServed              Status = "served"
	StatusRejected            Status = "rejected"
	// StatusPaid is reported once every item has been paid; it is never
	// entered through Advance.
	StatusPaid Status = "paid"
)

var ErrInvalidTransition = errors.New("invalid order transition")

var transitions = map[Status][]Status{
	StatusBuilding:            {StatusSubmitted, StatusRejected},
	StatusSubmitted:           {StatusAwaitingFulfillment},
	StatusAwaitingFulfillment: {StatusReady},
	StatusReady:               {StatusServed},
}

// CanTransition reports whether from -> to is an allowed lifecycle step.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func transitionError(from, to Status) error {
	return fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
}
