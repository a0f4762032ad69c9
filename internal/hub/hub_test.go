package hub

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"

	"restaurant-hub/internal/event"
	"restaurant-hub/internal/inventory"
	"restaurant-hub/internal/menu"
	"restaurant-hub/internal/models"
	"restaurant-hub/internal/order"
	"restaurant-hub/internal/staff"
)

type recordingAuditor struct {
	mu    sync.Mutex
	kinds []string
}

func (a *recordingAuditor) Audit(_ context.Context, msg *models.EventMessage) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.kinds = append(a.kinds, msg.Kind)
	return nil
}

type failingFeed struct{ calls int }

func (f *failingFeed) Publish(context.Context, *models.EventMessage) error {
	f.calls++
	return errors.New("broker unavailable")
}

// recorder is an actor that remembers the order ids it has seen.
type recorder struct {
	name string
	mu   sync.Mutex
	seen []string
	fail error
}

func (r *recorder) Name() string     { return r.name }
func (r *recorder) Role() staff.Role { return staff.RoleSupervisor }
func (r *recorder) HandleEvent(_ context.Context, ev *event.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, fmt.Sprintf("%s:%d", ev.Kind(), ev.Order().ID()))
	return r.fail
}

func (r *recorder) log() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.seen)
}

type restaurant struct {
	hub     *Hub
	ledger  *inventory.Ledger
	auditor *recordingAuditor
	deps    staff.Deps
}

func newRestaurant(t *testing.T, stock []inventory.Ingredient) *restaurant {
	t.Helper()
	auditor := &recordingAuditor{}
	h := New(20, WithAuditor(auditor))
	t.Cleanup(h.Close)

	ledger := inventory.NewLedger(stock, nil, nil)
	catalog := menu.NewCatalog([]menu.Item{
		{Name: "Burger", Price: 10, Recipe: map[string]int{"Buns": 1, "Patties": 1}},
		{Name: "Double", Price: 15, Recipe: map[string]int{"Buns": 1, "Patties": 2}},
	})
	return &restaurant{
		hub:     h,
		ledger:  ledger,
		auditor: auditor,
		deps: staff.Deps{
			Ledger:  ledger,
			Catalog: catalog,
			Bus:     h,
			Orders:  order.NewSequence(0),
			Tables:  20,
		},
	}
}

func (r *restaurant) register(t *testing.T, actors ...staff.Actor) {
	t.Helper()
	for _, a := range actors {
		if err := r.hub.Register(a); err != nil {
			t.Fatalf("Register(%s): %v", a.Name(), err)
		}
	}
}

func stock(patties int) []inventory.Ingredient {
	return []inventory.Ingredient{
		{Name: "Buns", Quantity: 50, Threshold: 5, RequestAmount: 20},
		{Name: "Patties", Quantity: patties, Threshold: 1, RequestAmount: 20},
	}
}

func TestRegister(t *testing.T) {
	r := newRestaurant(t, stock(10))
	carol := staff.NewTaker("Carol", r.deps)
	alice := staff.NewFulfillment("Alice", r.deps)
	r.register(t, carol, alice)

	if err := r.hub.Register(staff.NewTaker("Carol", r.deps)); !errors.Is(err, ErrDuplicateActor) {
		t.Fatalf("duplicate Register err = %v", err)
	}
	if got := r.hub.Actors(staff.RoleTaker); len(got) != 1 || got[0].Name() != "Carol" {
		t.Fatalf("Actors(taker) = %v", got)
	}
	if got := r.hub.Actors(""); len(got) != 2 {
		t.Fatalf("Actors() = %v", got)
	}
	if _, err := r.hub.Actor("Zed"); !errors.Is(err, ErrUnknownActor) {
		t.Fatalf("Actor(Zed) err = %v", err)
	}
}

func TestOrderJoinsBill(t *testing.T) {
	r := newRestaurant(t, stock(10))
	carol := staff.NewTaker("Carol", r.deps)
	r.register(t, carol, staff.NewFulfillment("Alice", r.deps))

	o, err := carol.Submit(context.Background(), 4, []staff.Selection{{Item: "Burger"}, {Item: "Double"}})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	bill, _ := r.hub.Bill(4)
	if orders := bill.Orders(); len(orders) != 1 || orders[0].ID() != o.ID() {
		t.Fatalf("bill orders = %v", orders)
	}
	if bill.Cost() != 25 {
		t.Fatalf("bill cost = %d, want 25", bill.Cost())
	}
	if len(r.auditor.kinds) != 1 || r.auditor.kinds[0] != "ORDER" {
		t.Fatalf("audit = %v", r.auditor.kinds)
	}
}

func TestRejectedOrderNeverBilled(t *testing.T) {
	r := newRestaurant(t, stock(3))
	carol := staff.NewTaker("Carol", r.deps)
	r.register(t, carol, staff.NewFulfillment("Alice", r.deps))

	_, err := carol.Submit(context.Background(), 3, []staff.Selection{{Item: "Double"}, {Item: "Double"}})
	if !errors.Is(err, staff.ErrUnableToComplete) {
		t.Fatalf("err = %v, want ErrUnableToComplete", err)
	}

	bill, _ := r.hub.Bill(3)
	if len(bill.Orders()) != 0 {
		t.Fatalf("rejected order on bill")
	}
	ing, _ := r.ledger.Ingredient("Patties")
	if ing.Quantity != 3 {
		t.Fatalf("Patties = %d, want 3", ing.Quantity)
	}
	if len(r.auditor.kinds) != 1 || r.auditor.kinds[0] != "UNABLE_TO_COMPLETE" {
		t.Fatalf("audit = %v", r.auditor.kinds)
	}
	if len(carol.Failed()) != 1 {
		t.Fatalf("failed list = %v", carol.Failed())
	}
}

func TestReadyReachesOnlyOriginatingTaker(t *testing.T) {
	r := newRestaurant(t, stock(10))
	carol := staff.NewTaker("Carol", r.deps)
	dave := staff.NewTaker("Dave", r.deps)
	alice := staff.NewFulfillment("Alice", r.deps)
	bob := staff.NewFulfillment("Bob", r.deps)
	erin := staff.NewSupervisor("Erin", r.deps)
	r.register(t, carol, dave, alice, bob, erin)

	ctx := context.Background()
	o, err := carol.Submit(ctx, 5, []staff.Selection{{Item: "Burger"}, {Item: "Double"}})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if o.Total() != 25 {
		t.Fatalf("total = %d", o.Total())
	}

	if err := alice.Claim(ctx, o.ID()); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if len(bob.Pending()) != 0 || len(alice.Pending()) != 1 {
		t.Fatalf("claim: alice=%d bob=%d", len(alice.Pending()), len(bob.Pending()))
	}
	if err := alice.MarkReady(ctx, o.ID()); err != nil {
		t.Fatalf("MarkReady: %v", err)
	}

	if len(carol.Ready()) != 1 || len(dave.Ready()) != 0 {
		t.Fatalf("ready: carol=%d dave=%d", len(carol.Ready()), len(dave.Ready()))
	}
	if len(alice.Pending()) != 0 || len(erin.Active()) != 0 {
		t.Fatalf("order still outstanding")
	}

	want := []string{"ORDER", "REMOVE_ORDER", "ORDER_READY", "REMOVE_ORDER"}
	if !slices.Equal(r.auditor.kinds, want) {
		t.Fatalf("audit = %v, want %v", r.auditor.kinds, want)
	}
}

func TestDispatchRejectsMalformed(t *testing.T) {
	r := newRestaurant(t, stock(10))
	rec := &recorder{name: "rec"}
	r.register(t, rec)

	if err := r.hub.Dispatch(context.Background(), &event.Event{}); !errors.Is(err, event.ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
	if len(rec.log()) != 0 || len(r.auditor.kinds) != 0 {
		t.Fatalf("malformed event was delivered")
	}
}

func TestDispatchUnknownTable(t *testing.T) {
	r := newRestaurant(t, stock(10))
	o := order.New(order.NewSequence(0), 99, "Carol")
	ev, _ := event.NewOrder(o, "Carol")

	if err := r.hub.Dispatch(context.Background(), ev); !errors.Is(err, order.ErrUnknownTable) {
		t.Fatalf("err = %v, want ErrUnknownTable", err)
	}
}

func TestReceiverErrorPropagates(t *testing.T) {
	r := newRestaurant(t, stock(10))
	boom := errors.New("boom")
	first := &recorder{name: "first"}
	broken := &recorder{name: "broken", fail: boom}
	last := &recorder{name: "last"}
	r.register(t, first, broken, last)

	o := order.New(order.NewSequence(0), 2, "Carol")
	ev, _ := event.NewOrder(o, "Carol")

	if err := r.hub.Dispatch(context.Background(), ev); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if len(first.log()) != 1 || len(last.log()) != 0 {
		t.Fatalf("delivery did not stop at failing receiver")
	}
	bill, _ := r.hub.Bill(2)
	if len(bill.Orders()) != 0 {
		t.Fatalf("order billed despite receiver failure")
	}
}

func TestFeedFailureDoesNotAffectDelivery(t *testing.T) {
	feed := &failingFeed{}
	h := New(5, WithFeed(feed))
	defer h.Close()
	rec := &recorder{name: "rec"}
	if err := h.Register(rec); err != nil {
		t.Fatalf("Register: %v", err)
	}

	o := order.New(order.NewSequence(0), 1, "Carol")
	ev, _ := event.NewOrder(o, "Carol")
	if err := h.Dispatch(context.Background(), ev); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if feed.calls != 1 || len(rec.log()) != 1 {
		t.Fatalf("feed calls=%d delivered=%d", feed.calls, len(rec.log()))
	}
}

func TestAllActorsSeeSameOrder(t *testing.T) {
	h := New(20)
	defer h.Close()

	recs := []*recorder{{name: "a"}, {name: "b"}, {name: "c"}}
	for _, rec := range recs {
		if err := h.Register(rec); err != nil {
			t.Fatalf("Register: %v", err)
		}
	}

	seq := order.NewSequence(0)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(table int) {
			defer wg.Done()
			o := order.New(seq, table, "Carol")
			ev, _ := event.NewOrder(o, "Carol")
			if err := h.Dispatch(context.Background(), ev); err != nil {
				t.Errorf("Dispatch: %v", err)
			}
		}(i%20 + 1)
	}
	wg.Wait()

	want := recs[0].log()
	if len(want) != 50 {
		t.Fatalf("delivered %d events, want 50", len(want))
	}
	for _, rec := range recs[1:] {
		if !slices.Equal(rec.log(), want) {
			t.Fatalf("%s saw a different order", rec.name)
		}
	}
}

func TestClose(t *testing.T) {
	h := New(1)
	rec := &recorder{name: "rec"}
	_ = h.Register(rec)
	h.Close()
	h.Close()

	o := order.New(order.NewSequence(0), 1, "Carol")
	ev, _ := event.NewOrder(o, "Carol")
	if err := h.Dispatch(context.Background(), ev); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
	if err := h.Register(&recorder{name: "late"}); !errors.Is(err, ErrClosed) {
		t.Fatalf("Register err = %v", err)
	}
}
