package order

import (
	"errors"
	"fmt"
	"sync"

	"restaurant-hub/internal/menu"
)

var (
	ErrUnknownTable = errors.New("unknown table")
	ErrUnknownOrder = errors.New("order not on bill")
)

// Bill is the running history of one table. Orders are appended, never removed,
// and the cost accumulates the total of each order at the time it was added.
type Bill struct {
	mu     sync.RWMutex
	id     int64
	table  int
	orders []*Order
	cost   int
}

func NewBill(seq *Sequence, table int) *Bill {
	return &Bill{id: seq.Next(), table: table}
}

func (b *Bill) ID() int64  { return b.id }
func (b *Bill) Table() int { return b.table }

func (b *Bill) Add(o *Order) {
	total := o.Total()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders = append(b.orders, o)
	b.cost += total
}

// Orders returns the appended orders in insertion order.
func (b *Bill) Orders() []*Order {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Order, len(b.orders))
	copy(out, b.orders)
	return out
}

// Cost is the running sum of every appended order's total.
func (b *Bill) Cost() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.cost
}

// Outstanding is what is still owed: the sum of unpaid items.
func (b *Bill) Outstanding() int {
	total := 0
	for _, o := range b.Orders() {
		total += o.Total()
	}
	return total
}

// UnpaidItems lists the unpaid items of every order on the bill.
func (b *Bill) UnpaidItems() []menu.Item {
	var items []menu.Item
	for _, o := range b.Orders() {
		items = append(items, o.UnpaidItems()...)
	}
	return items
}

// Order finds an order on this bill by id.
func (b *Bill) Order(id int64) (*Order, error) {
	for _, o := range b.Orders() {
		if o.ID() == id {
			return o, nil
		}
	}
	return nil, fmt.Errorf("order %d on table %d: %w", id, b.table, ErrUnknownOrder)
}

// Pay marks one item of one order paid and returns the amount settled.
func (b *Bill) Pay(orderID int64, index int) (int, error) {
	o, err := b.Order(orderID)
	if err != nil {
		return 0, err
	}
	return o.Pay(index)
}

// PayAll settles every unpaid item and returns the amount paid.
func (b *Bill) PayAll() int {
	paid := 0
	for _, o := range b.Orders() {
		paid += o.PayAll()
	}
	return paid
}

// Bills holds one bill per table, numbered from 1.
type Bills struct {
	bills []*Bill
}

func NewBills(seq *Sequence, tables int) *Bills {
	bs := &Bills{bills: make([]*Bill, tables)}
	for i := range bs.bills {
		bs.bills[i] = NewBill(seq, i+1)
	}
	return bs
}

func (bs *Bills) For(table int) (*Bill, error) {
	if table < 1 || table > len(bs.bills) {
		return nil, fmt.Errorf("table %d: %w", table, ErrUnknownTable)
	}
	return bs.bills[table-1], nil
}

func (bs *Bills) All() []*Bill {
	out := make([]*Bill, len(bs.bills))
	copy(out, bs.bills)
	return out
}

func (bs *Bills) Tables() int {
	return len(bs.bills)
}
