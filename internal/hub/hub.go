package hub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"restaurant-hub/internal/event"
	"restaurant-hub/internal/logger"
	"restaurant-hub/internal/models"
	"restaurant-hub/internal/order"
	"restaurant-hub/internal/staff"
)

var (
	ErrDuplicateActor = errors.New("actor already registered")
	ErrUnknownActor   = errors.New("unknown actor")
	ErrClosed         = errors.New("hub is closed")
)

// Auditor records one line per dispatched event.
type Auditor interface {
	Audit(ctx context.Context, msg *models.EventMessage) error
}

// Feed mirrors dispatched events outside the process. Delivery to actors
// never depends on it.
type Feed interface {
	Publish(ctx context.Context, msg *models.EventMessage) error
}

// Hub is the single fan-out point of the restaurant. Each registered actor
// has a mailbox served by its own goroutine; Dispatch pushes an event into
// every mailbox in registration order and waits for each actor before moving
// on, so all actors observe events in the same order.
type Hub struct {
	dispatchMu sync.Mutex
	opMu       sync.Mutex

	mu     sync.RWMutex
	actors []staff.Actor
	boxes  map[string]*mailbox
	closed bool

	bills   *order.Bills
	auditor Auditor
	feed    Feed
	logger  *logger.Logger
}

var _ staff.Bus = (*Hub)(nil)

type Option func(*Hub)

func WithAuditor(a Auditor) Option {
	return func(h *Hub) { h.auditor = a }
}

func WithFeed(f Feed) Option {
	return func(h *Hub) { h.feed = f }
}

func WithLogger(l *logger.Logger) Option {
	return func(h *Hub) { h.logger = l }
}

// New creates a hub with one bill per table, numbered from 1.
func New(tables int, opts ...Option) *Hub {
	h := &Hub{
		boxes:  make(map[string]*mailbox),
		bills:  order.NewBills(order.NewSequence(0), tables),
		logger: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds an actor. Actors receive events in the order they registered.
func (h *Hub) Register(a staff.Actor) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrClosed
	}
	if _, exists := h.boxes[a.Name()]; exists {
		return fmt.Errorf("%s: %w", a.Name(), ErrDuplicateActor)
	}
	box := newMailbox(a)
	h.boxes[a.Name()] = box
	h.actors = append(h.actors, a)
	go box.run()

	h.logger.Info("actor_registered", fmt.Sprintf("Registered %s %s", a.Role(), a.Name()), "", map[string]interface{}{
		"actor": a.Name(),
		"role":  string(a.Role()),
	})
	return nil
}

// Actors lists registered actors with role, or every actor when role is empty.
func (h *Hub) Actors(role staff.Role) []staff.Actor {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var out []staff.Actor
	for _, a := range h.actors {
		if role == "" || a.Role() == role {
			out = append(out, a)
		}
	}
	return out
}

func (h *Hub) Actor(name string) (staff.Actor, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	box, ok := h.boxes[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownActor)
	}
	return box.actor, nil
}

// Dispatch delivers ev to every actor. A malformed event is rejected before
// anything happens. The first receiver error stops delivery and is returned
// as is. Once every actor has seen an ORDER, the order joins its table's bill.
func (h *Hub) Dispatch(ctx context.Context, ev *event.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	var bill *order.Bill
	if ev.Kind() == event.KindOrder {
		b, err := h.bills.For(ev.Order().Table())
		if err != nil {
			return fmt.Errorf("dispatch %s: %w", ev.Kind(), err)
		}
		bill = b
	}

	h.dispatchMu.Lock()
	defer h.dispatchMu.Unlock()

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrClosed
	}
	boxes := make([]*mailbox, 0, len(h.actors))
	for _, a := range h.actors {
		boxes = append(boxes, h.boxes[a.Name()])
	}
	h.mu.RUnlock()

	requestID := logger.RequestID(ctx)
	msg := ev.Message()

	if h.auditor != nil {
		if err := h.auditor.Audit(ctx, msg); err != nil {
			h.logger.Error("audit_failed", "Failed to write audit line", requestID, err, map[string]interface{}{
				"kind":     string(ev.Kind()),
				"order_id": msg.OrderID,
			})
		}
	}

	for _, box := range boxes {
		if err := box.deliver(ctx, ev); err != nil {
			h.logger.Error("event_handler_failed", fmt.Sprintf("%s failed to handle %s", box.actor.Name(), ev.Kind()), requestID, err, map[string]interface{}{
				"actor":    box.actor.Name(),
				"kind":     string(ev.Kind()),
				"order_id": msg.OrderID,
			})
			return err
		}
	}

	if bill != nil {
		bill.Add(ev.Order())
	}

	h.logger.Debug("event_dispatched", fmt.Sprintf("Dispatched %s for order %d", ev.Kind(), msg.OrderID), requestID, map[string]interface{}{
		"kind":      string(ev.Kind()),
		"order_id":  msg.OrderID,
		"receivers": len(boxes),
	})

	if h.feed != nil {
		if err := h.feed.Publish(ctx, msg); err != nil {
			h.logger.Error("feed_publish_failed", "Failed to mirror event to feed", requestID, err, map[string]interface{}{
				"kind":     string(ev.Kind()),
				"order_id": msg.OrderID,
			})
		}
	}
	return nil
}

// Atomically runs fn while no other business operation runs. fn may call
// Dispatch but must not call Atomically.
func (h *Hub) Atomically(fn func() error) error {
	h.opMu.Lock()
	defer h.opMu.Unlock()
	return fn()
}

func (h *Hub) Bill(table int) (*order.Bill, error) {
	return h.bills.For(table)
}

func (h *Hub) Bills() []*order.Bill {
	return h.bills.All()
}

func (h *Hub) Tables() int {
	return h.bills.Tables()
}

// Close stops every mailbox. Dispatch fails with ErrClosed afterwards.
func (h *Hub) Close() {
	h.dispatchMu.Lock()
	defer h.dispatchMu.Unlock()

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, box := range h.boxes {
		box.close()
	}
}
