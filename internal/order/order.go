package order

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"restaurant-hub/internal/inventory"
	"restaurant-hub/internal/menu"
)

var ErrItemIndex = errors.New("order item index out of range")

// Order is a set of menu item copies for one table, taken by one taker.
// Its id never changes; the total is always recomputed from the unpaid items.
type Order struct {
	mu     sync.RWMutex
	id     int64
	table  int
	taker  string
	items  []*menu.Item
	status Status
}

// New starts an order in the building state with an id from seq.
func New(seq *Sequence, table int, taker string) *Order {
	return &Order{
		id:     seq.Next(),
		table:  table,
		taker:  taker,
		status: StatusBuilding,
	}
}

func (o *Order) ID() int64     { return o.id }
func (o *Order) Table() int    { return o.table }
func (o *Order) Taker() string { return o.taker }

// Add appends an item. The caller hands over ownership of the copy.
func (o *Order) Add(item *menu.Item) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = append(o.items, item)
}

// Customize applies fn to the item at index while the order is locked.
func (o *Order) Customize(index int, fn func(*menu.Item)) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if index < 0 || index >= len(o.items) {
		return fmt.Errorf("item %d of order %d: %w", index, o.id, ErrItemIndex)
	}
	fn(o.items[index])
	return nil
}

// Items returns copies of every item, paid or not.
func (o *Order) Items() []menu.Item {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]menu.Item, len(o.items))
	for i, item := range o.items {
		out[i] = *item.Copy()
	}
	return out
}

// UnpaidItems returns copies of the items not yet paid.
func (o *Order) UnpaidItems() []menu.Item {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var out []menu.Item
	for _, item := range o.items {
		if !item.Paid {
			out = append(out, *item.Copy())
		}
	}
	return out
}

func (o *Order) Size() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.items)
}

// Total is the sum of the unpaid item prices.
func (o *Order) Total() int {
	o.mu.RLock()
	defer o.mu.RUnlock()

	total := 0
	for _, item := range o.items {
		if !item.Paid {
			total += item.Price
		}
	}
	return total
}

// Requirements aggregates the recipes of every unpaid item.
func (o *Order) Requirements() inventory.Requirements {
	o.mu.RLock()
	defer o.mu.RUnlock()

	req := inventory.Requirements{}
	for _, item := range o.items {
		if !item.Paid {
			req.Add(item.Recipe)
		}
	}
	return req
}

// Pay marks a single item paid and returns its price, or 0 if it was already
// paid. Other items are untouched.
func (o *Order) Pay(index int) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if index < 0 || index >= len(o.items) {
		return 0, fmt.Errorf("item %d of order %d: %w", index, o.id, ErrItemIndex)
	}
	item := o.items[index]
	if item.Paid {
		return 0, nil
	}
	item.Paid = true
	return item.Price, nil
}

// PayAll marks every item paid and returns the amount that was outstanding.
func (o *Order) PayAll() int {
	o.mu.Lock()
	defer o.mu.Unlock()

	paid := 0
	for _, item := range o.items {
		if !item.Paid {
			paid += item.Price
			item.Paid = true
		}
	}
	return paid
}

// Settled reports whether every item has been paid.
func (o *Order) Settled() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.settledLocked()
}

func (o *Order) settledLocked() bool {
	if len(o.items) == 0 {
		return false
	}
	for _, item := range o.items {
		if !item.Paid {
			return false
		}
	}
	return true
}

// Status returns the lifecycle state, or StatusPaid once fully paid.
func (o *Order) Status() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.settledLocked() {
		return StatusPaid
	}
	return o.status
}

// Stage returns the lifecycle state ignoring payment.
func (o *Order) Stage() Status {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

// Advance moves the order to the next lifecycle state. Advancing to the
// current state is a no-op.
func (o *Order) Advance(to Status) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.status == to {
		return nil
	}
	if !CanTransition(o.status, to) {
		return transitionError(o.status, to)
	}
	o.status = to
	return nil
}

// Lines describes the unpaid items, one line per item.
func (o *Order) Lines() []string {
	var lines []string
	for _, item := range o.UnpaidItems() {
		lines = append(lines, fmt.Sprintf("Item: %s. Cost: %d", item.Name, item.Price))
	}
	return lines
}

func (o *Order) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order number: %d, Table number: %d\n", o.id, o.table)
	for _, item := range o.Items() {
		fmt.Fprintf(&b, "%s\t+%d\n", item.Name, item.Price)
	}
	fmt.Fprintf(&b, "Total of this order: +%d", o.Total())
	return b.String()
}
