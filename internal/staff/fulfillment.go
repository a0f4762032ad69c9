package staff

import (
	"context"
	"fmt"
	"sync"

	"restaurant-hub/internal/event"
	"restaurant-hub/internal/logger"
	"restaurant-hub/internal/order"
)

// Fulfillment prepares submitted orders. Every fulfillment actor sees every
// ORDER; claiming one hides it from the others.
type Fulfillment struct {
	employee

	mu      sync.Mutex
	pending orderList
	seen    orderList
	claimed map[int64]struct{}
}

func NewFulfillment(name string, deps Deps) *Fulfillment {
	return &Fulfillment{
		employee: newEmployee(name, RoleFulfillment, deps),
		claimed:  make(map[int64]struct{}),
	}
}

// Claim takes a pending order for this actor. Other fulfillment actors drop
// it from their pending lists; this one keeps it.
func (f *Fulfillment) Claim(ctx context.Context, id int64) error {
	return f.bus.Atomically(func() error {
		o, err := f.pendingOrder(id)
		if err != nil {
			return err
		}
		ev, err := event.NewRemoveOrder(o, f.name)
		if err != nil {
			return err
		}
		if err := f.bus.Dispatch(ctx, ev); err != nil {
			return err
		}

		f.mu.Lock()
		f.claimed[id] = struct{}{}
		f.mu.Unlock()

		f.logger.Info("order_claimed", fmt.Sprintf("%s claimed order %d", f.name, id), logger.RequestID(ctx), map[string]interface{}{
			"order_id":     id,
			"table_number": o.Table(),
		})
		return nil
	})
}

// MarkReady completes a pending order: ORDER_READY goes to the taker that
// submitted it, then an unscoped REMOVE_ORDER clears it everywhere.
func (f *Fulfillment) MarkReady(ctx context.Context, id int64) error {
	return f.bus.Atomically(func() error {
		o, err := f.pendingOrder(id)
		if err != nil {
			return err
		}
		if err := o.Advance(order.StatusReady); err != nil {
			return err
		}

		ready, err := event.NewOrderReady(o, o.Taker())
		if err != nil {
			return err
		}
		if err := f.bus.Dispatch(ctx, ready); err != nil {
			return err
		}
		remove, err := event.NewRemoveOrder(o, "")
		if err != nil {
			return err
		}
		if err := f.bus.Dispatch(ctx, remove); err != nil {
			return err
		}

		f.mu.Lock()
		delete(f.claimed, id)
		f.mu.Unlock()

		f.logger.Info("order_ready", fmt.Sprintf("Order %d is ready for %s", id, o.Taker()), logger.RequestID(ctx), map[string]interface{}{
			"order_id":     id,
			"table_number": o.Table(),
			"prepared_by":  f.name,
		})
		return nil
	})
}

// ConfirmSeen records that this actor has looked at a pending order.
func (f *Fulfillment) ConfirmSeen(id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.pending.find(id)
	if !ok {
		return fmt.Errorf("order %d: %w", id, ErrUnknownOrder)
	}
	f.seen = f.seen.with(o)
	return nil
}

func (f *Fulfillment) Pending() []*order.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending.clone()
}

func (f *Fulfillment) Seen() []*order.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.clone()
}

// Claimed lists the pending orders this actor has claimed.
func (f *Fulfillment) Claimed() []*order.Order {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*order.Order
	for _, o := range f.pending {
		if _, ok := f.claimed[o.ID()]; ok {
			out = append(out, o)
		}
	}
	return out
}

func (f *Fulfillment) pendingOrder(id int64) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	o, ok := f.pending.find(id)
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, ErrUnknownOrder)
	}
	return o, nil
}

func (f *Fulfillment) HandleEvent(ctx context.Context, ev *event.Event) error {
	switch ev.Kind() {
	case event.KindOrder:
		if err := ev.Order().Advance(order.StatusAwaitingFulfillment); err != nil {
			return err
		}
		f.mu.Lock()
		f.pending = f.pending.with(ev.Order())
		f.mu.Unlock()
		ev.MarkHandled()

	case event.KindRemoveOrder:
		if !ev.AppliesTo(f.name) {
			return nil
		}
		id := ev.Order().ID()
		f.mu.Lock()
		f.pending = f.pending.without(id)
		f.seen = f.seen.without(id)
		delete(f.claimed, id)
		f.mu.Unlock()
		ev.MarkHandled()
	}
	return nil
}
