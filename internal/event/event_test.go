package event

import (
	"encoding/json"
	"errors"
	"testing"

	"restaurant-hub/internal/menu"
	"restaurant-hub/internal/order"
)

func testOrder() *order.Order {
	o := order.New(order.NewSequence(0), 5, "Carol")
	o.Add(&menu.Item{Name: "Burger", Price: 10, Recipe: map[string]int{"Buns": 1}})
	o.Add(&menu.Item{Name: "Pizza", Price: 15})
	return o
}

func TestConstructorsRequireFields(t *testing.T) {
	o := testOrder()

	tests := []struct {
		name    string
		build   func() (*Event, error)
		kind    Kind
		wantErr bool
	}{
		{"order", func() (*Event, error) { return NewOrder(o, "Carol") }, KindOrder, false},
		{"order without origin", func() (*Event, error) { return NewOrder(o, "") }, KindOrder, true},
		{"order without order", func() (*Event, error) { return NewOrder(nil, "Carol") }, KindOrder, true},
		{"unable", func() (*Event, error) { return NewUnableToComplete(o, "Carol", "Patties short") }, KindUnableToComplete, false},
		{"unable without origin", func() (*Event, error) { return NewUnableToComplete(o, "", "") }, KindUnableToComplete, true},
		{"serve", func() (*Event, error) { return NewServe(o, "Carol") }, KindServe, false},
		{"remove unscoped", func() (*Event, error) { return NewRemoveOrder(o, "") }, KindRemoveOrder, false},
		{"remove claim", func() (*Event, error) { return NewRemoveOrder(o, "Alice") }, KindRemoveOrder, false},
		{"remove without order", func() (*Event, error) { return NewRemoveOrder(nil, "Alice") }, KindRemoveOrder, true},
		{"ready", func() (*Event, error) { return NewOrderReady(o, "Carol") }, KindOrderReady, false},
		{"ready without target", func() (*Event, error) { return NewOrderReady(o, "") }, KindOrderReady, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := tt.build()
			if tt.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Fatalf("err = %v, want ErrMalformed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ev.Kind() != tt.kind {
				t.Fatalf("kind = %s, want %s", ev.Kind(), tt.kind)
			}
			if err := ev.Validate(); err != nil {
				t.Fatalf("Validate: %v", err)
			}
		})
	}
}

func TestValidateZeroEvent(t *testing.T) {
	var nilEvent *Event
	if err := nilEvent.Validate(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("nil event err = %v", err)
	}
	if err := (&Event{}).Validate(); !errors.Is(err, ErrMalformed) {
		t.Fatalf("zero event err = %v", err)
	}
}

func TestAppliesTo(t *testing.T) {
	o := testOrder()
	claim, _ := NewRemoveOrder(o, "Alice")
	done, _ := NewRemoveOrder(o, "")
	placed, _ := NewOrder(o, "Carol")

	tests := []struct {
		name  string
		ev    *Event
		actor string
		want  bool
	}{
		{"claim skips claimer", claim, "Alice", false},
		{"claim hits others", claim, "Bob", true},
		{"unscoped hits claimer", done, "Alice", true},
		{"unscoped hits others", done, "Bob", true},
		{"other kinds always apply", placed, "Carol", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.AppliesTo(tt.actor); got != tt.want {
				t.Fatalf("AppliesTo(%q) = %v, want %v", tt.actor, got, tt.want)
			}
		})
	}

	if !claim.Scoped() || done.Scoped() {
		t.Fatalf("Scoped() mismatch")
	}
}

func TestMarkHandled(t *testing.T) {
	ev, _ := NewOrder(testOrder(), "Carol")
	if ev.Handled() {
		t.Fatalf("new event already handled")
	}
	ev.MarkHandled()
	if !ev.Handled() {
		t.Fatalf("MarkHandled had no effect")
	}
}

func TestMessage(t *testing.T) {
	ev, _ := NewOrderReady(testOrder(), "Carol")
	msg := ev.Message()

	if msg.Kind != "ORDER_READY" || msg.Table != 5 || msg.Target != "Carol" || msg.Total != 25 {
		t.Fatalf("message = %+v", msg)
	}
	if len(msg.Items) != 2 || msg.ID == "" {
		t.Fatalf("message = %+v", msg)
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := decoded["origin"]; ok {
		t.Fatalf("empty origin should be omitted: %s", raw)
	}
}
