package event

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"restaurant-hub/internal/order"
)

// Kind is the closed set of event kinds carried by the hub.
type Kind string

const (
	KindOrder            Kind = "ORDER"
	KindRemoveOrder      Kind = "REMOVE_ORDER"
	KindOrderReady       Kind = "ORDER_READY"
	KindUnableToComplete Kind = "UNABLE_TO_COMPLETE"
	KindServe            Kind = "SERVE"
)

// Kinds lists every kind in a stable order.
var Kinds = []Kind{KindOrder, KindRemoveOrder, KindOrderReady, KindUnableToComplete, KindServe}

// ErrMalformed is returned when an event lacks a field its kind requires.
var ErrMalformed = errors.New("malformed event")

func (k Kind) Valid() bool {
	switch k {
	case KindOrder, KindRemoveOrder, KindOrderReady, KindUnableToComplete, KindServe:
		return true
	}
	return false
}

// Event is one notification. Only the constructors below can build one, so
// every event carries the fields of its kind. Apart from the handled flag an
// event never changes after construction.
type Event struct {
	kind     Kind
	order    *order.Order
	origin   string
	excluded string
	target   string
	info     string
	at       time.Time
	handled  atomic.Bool
}

// NewOrder announces a submitted order.
func NewOrder(o *order.Order, origin string) (*Event, error) {
	return build(&Event{kind: KindOrder, order: o, origin: origin})
}

// NewUnableToComplete announces an order that failed its feasibility check.
func NewUnableToComplete(o *order.Order, origin, info string) (*Event, error) {
	return build(&Event{kind: KindUnableToComplete, order: o, origin: origin, info: info})
}

// NewServe announces an order handed to its table.
func NewServe(o *order.Order, origin string) (*Event, error) {
	return build(&Event{kind: KindServe, order: o, origin: origin})
}

// NewRemoveOrder retracts an order from pending views. An empty excluded name
// removes it from everyone; otherwise the named actor keeps it.
func NewRemoveOrder(o *order.Order, excluded string) (*Event, error) {
	return build(&Event{kind: KindRemoveOrder, order: o, excluded: excluded})
}

// NewOrderReady tells target that its order is ready to serve.
func NewOrderReady(o *order.Order, target string) (*Event, error) {
	return build(&Event{kind: KindOrderReady, order: o, target: target})
}

func build(ev *Event) (*Event, error) {
	ev.at = time.Now().UTC()
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return ev, nil
}

// Validate checks the fields required by the event's kind.
func (e *Event) Validate() error {
	if e == nil {
		return fmt.Errorf("nil event: %w", ErrMalformed)
	}
	if !e.kind.Valid() {
		return fmt.Errorf("kind %q: %w", e.kind, ErrMalformed)
	}
	if e.order == nil {
		return fmt.Errorf("%s without order: %w", e.kind, ErrMalformed)
	}

	switch e.kind {
	case KindOrder, KindUnableToComplete, KindServe:
		if e.origin == "" {
			return fmt.Errorf("%s without origin: %w", e.kind, ErrMalformed)
		}
	case KindOrderReady:
		if e.target == "" {
			return fmt.Errorf("%s without target: %w", e.kind, ErrMalformed)
		}
	}
	return nil
}

func (e *Event) Kind() Kind              { return e.kind }
func (e *Event) Order() *order.Order     { return e.order }
func (e *Event) Origin() string          { return e.origin }
func (e *Event) Excluded() string        { return e.excluded }
func (e *Event) Target() string          { return e.target }
func (e *Event) Info() string            { return e.info }
func (e *Event) At() time.Time           { return e.at }
func (e *Event) Handled() bool           { return e.handled.Load() }
func (e *Event) MarkHandled()            { e.handled.Store(true) }
func (e *Event) Scoped() bool            { return e.excluded != "" }
func (e *Event) IsFrom(name string) bool { return e.origin == name }

// AppliesTo reports whether a REMOVE_ORDER should take effect for the named
// actor. Other kinds apply to everyone.
func (e *Event) AppliesTo(name string) bool {
	if e.kind != KindRemoveOrder {
		return true
	}
	return e.excluded != name
}

func (e *Event) String() string {
	return fmt.Sprintf("%s order=%d", e.kind, e.order.ID())
}
