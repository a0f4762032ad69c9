package staff

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"restaurant-hub/internal/event"
	"restaurant-hub/internal/inventory"
	"restaurant-hub/internal/logger"
	"restaurant-hub/internal/menu"
	"restaurant-hub/internal/order"
)

// Selection is one menu item to put on an order, with recipe changes:
// positive quantities add an ingredient, negative ones take it away.
type Selection struct {
	Item    string
	Changes map[string]int
}

// Taker builds orders for tables, checks them against stock and submits them.
// It keeps the orders that are ready to serve and those that were rejected.
type Taker struct {
	employee
	orders *order.Sequence
	tables int

	mu     sync.Mutex
	draft  *order.Order
	ready  orderList
	failed orderList
}

func NewTaker(name string, deps Deps) *Taker {
	seq := deps.Orders
	if seq == nil {
		seq = order.NewSequence(0)
	}
	return &Taker{
		employee: newEmployee(name, RoleTaker, deps),
		orders:   seq,
		tables:   deps.Tables,
	}
}

// StartOrder discards any draft and begins a new one for table.
func (t *Taker) StartOrder(table int) (*order.Order, error) {
	if table < 1 || (t.tables > 0 && table > t.tables) {
		return nil, fmt.Errorf("table %d: %w", table, order.ErrUnknownTable)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.draft = order.New(t.orders, table, t.name)
	return t.draft, nil
}

// AddItem puts a fresh copy of the named menu item on the draft.
func (t *Taker) AddItem(name string) (*menu.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.draft == nil {
		return nil, ErrNoDraft
	}
	item, err := t.catalog.Copy(name)
	if err != nil {
		return nil, err
	}
	t.draft.Add(item)
	return item.Copy(), nil
}

// Customize changes one recipe line of the draft item at index. A positive
// delta adds the ingredient, a negative one removes it.
func (t *Taker) Customize(index int, ingredient string, delta int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.draft == nil {
		return ErrNoDraft
	}
	return t.change(t.draft, index, ingredient, delta)
}

// change applies one recipe change to item index of o. The ingredient must be
// stocked; a zero delta is then a no-op.
func (t *Taker) change(o *order.Order, index int, ingredient string, delta int) error {
	if !t.ledger.Has(ingredient) {
		return fmt.Errorf("customize with %s: %w", ingredient, inventory.ErrUnknownIngredient)
	}
	if delta == 0 {
		return nil
	}
	return o.Customize(index, customize(ingredient, delta))
}

func customize(ingredient string, delta int) func(*menu.Item) {
	return func(item *menu.Item) {
		if delta >= 0 {
			item.AddIngredient(ingredient, delta)
		} else {
			item.RemoveIngredient(ingredient, -delta)
		}
	}
}

// DraftTotal is the cost of the order being built.
func (t *Taker) DraftTotal() (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.draft == nil {
		return 0, ErrNoDraft
	}
	return t.draft.Total(), nil
}

// Draft returns the order being built, or nil.
func (t *Taker) Draft() *order.Order {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.draft
}

// Finalize checks the draft against stock. A feasible order is announced with
// ORDER and its ingredients are taken out of the ledger, item by item. An
// infeasible one is announced with UNABLE_TO_COMPLETE, the ledger is left
// alone and ErrUnableToComplete is returned together with the order.
func (t *Taker) Finalize(ctx context.Context) (*order.Order, error) {
	t.mu.Lock()
	o := t.draft
	if o == nil {
		t.mu.Unlock()
		return nil, ErrNoDraft
	}
	if o.Size() == 0 {
		t.mu.Unlock()
		return nil, ErrEmptyOrder
	}
	t.draft = nil
	t.mu.Unlock()

	return t.finalize(ctx, o)
}

func (t *Taker) finalize(ctx context.Context, o *order.Order) (*order.Order, error) {
	requestID := logger.RequestID(ctx)

	err := t.bus.Atomically(func() error {
		req := o.Requirements()
		for _, ing := range slices.Sorted(maps.Keys(req)) {
			if !t.ledger.Has(ing) {
				return fmt.Errorf("order %d needs %s: %w", o.ID(), ing, inventory.ErrUnknownIngredient)
			}
		}

		ok, short := t.ledger.CanSupply(req)
		if !ok {
			return t.reject(ctx, o, short)
		}

		if err := o.Advance(order.StatusSubmitted); err != nil {
			return err
		}
		ev, err := event.NewOrder(o, t.name)
		if err != nil {
			return err
		}
		if err := t.bus.Dispatch(ctx, ev); err != nil {
			return err
		}

		for _, item := range o.UnpaidItems() {
			for _, ing := range slices.Sorted(maps.Keys(item.Recipe)) {
				if err := t.ledger.Remove(ctx, ing, item.Recipe[ing]); err != nil {
					// Stock was checked under the same lock, so this is a bug.
					t.logger.Error("stock_decrement_failed", "Failed to take ingredient for submitted order", requestID, err, map[string]interface{}{
						"order_id":   o.ID(),
						"ingredient": ing,
					})
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return o, err
	}

	t.logger.Info("order_submitted", fmt.Sprintf("%s submitted order %d for table %d", t.name, o.ID(), o.Table()), requestID, map[string]interface{}{
		"order_id":     o.ID(),
		"table_number": o.Table(),
		"total_amount": o.Total(),
	})
	return o, nil
}

func (t *Taker) reject(ctx context.Context, o *order.Order, short map[string]int) error {
	if err := o.Advance(order.StatusRejected); err != nil {
		return err
	}
	info := describeShortage(short)
	ev, err := event.NewUnableToComplete(o, t.name, info)
	if err != nil {
		return err
	}
	if err := t.bus.Dispatch(ctx, ev); err != nil {
		return err
	}

	t.logger.Warn("order_rejected", fmt.Sprintf("Order %d cannot be completed", o.ID()), logger.RequestID(ctx), map[string]interface{}{
		"order_id":     o.ID(),
		"table_number": o.Table(),
		"missing":      short,
	})
	return fmt.Errorf("order %d (%s): %w", o.ID(), info, ErrUnableToComplete)
}

// Submit builds and finalizes an order for table in one call, without
// touching the draft. If any selection is invalid nothing is dispatched.
func (t *Taker) Submit(ctx context.Context, table int, selections []Selection) (*order.Order, error) {
	if table < 1 || (t.tables > 0 && table > t.tables) {
		return nil, fmt.Errorf("table %d: %w", table, order.ErrUnknownTable)
	}
	if len(selections) == 0 {
		return nil, ErrEmptyOrder
	}

	o := order.New(t.orders, table, t.name)
	for i, sel := range selections {
		item, err := t.catalog.Copy(sel.Item)
		if err != nil {
			return nil, err
		}
		o.Add(item)
		for _, ing := range slices.Sorted(maps.Keys(sel.Changes)) {
			if err := t.change(o, i, ing, sel.Changes[ing]); err != nil {
				return nil, err
			}
		}
	}
	return t.finalize(ctx, o)
}

// Serve hands a ready order to its table. This is local to the taker and is
// not announced on the bus.
func (t *Taker) Serve(ctx context.Context, id int64) (*order.Order, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	o, ok := t.ready.find(id)
	if !ok {
		return nil, fmt.Errorf("order %d: %w", id, ErrUnknownOrder)
	}
	if err := o.Advance(order.StatusServed); err != nil {
		return nil, err
	}
	t.ready = t.ready.without(id)

	t.logger.Info("order_served", fmt.Sprintf("%s served order %d", t.name, id), logger.RequestID(ctx), map[string]interface{}{
		"order_id":     id,
		"table_number": o.Table(),
	})
	return o, nil
}

// Ready lists orders waiting to be served by this taker.
func (t *Taker) Ready() []*order.Order {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ready.clone()
}

// Failed lists this taker's orders that could not be completed.
func (t *Taker) Failed() []*order.Order {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failed.clone()
}

func (t *Taker) HandleEvent(ctx context.Context, ev *event.Event) error {
	switch ev.Kind() {
	case event.KindOrderReady:
		if ev.Target() != t.name {
			return nil
		}
		t.mu.Lock()
		t.ready = t.ready.with(ev.Order())
		t.mu.Unlock()
		ev.MarkHandled()

	case event.KindUnableToComplete:
		if !ev.IsFrom(t.name) {
			return nil
		}
		t.mu.Lock()
		t.failed = t.failed.with(ev.Order())
		t.mu.Unlock()
		ev.MarkHandled()
	}
	return nil
}

func describeShortage(short map[string]int) string {
	parts := make([]string, 0, len(short))
	for _, name := range slices.Sorted(maps.Keys(short)) {
		parts = append(parts, fmt.Sprintf("%s short by %d", name, short[name]))
	}
	return strings.Join(parts, ", ")
}
