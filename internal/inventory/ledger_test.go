package inventory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
)

type memorySink struct {
	mu       sync.Mutex
	requests []Request
}

func (m *memorySink) Record(_ context.Context, req Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	return nil
}

func (m *memorySink) lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.requests))
	for i, r := range m.requests {
		out[i] = r.Line()
	}
	return out
}

func newTestLedger(sink RequestSink) *Ledger {
	return NewLedger([]Ingredient{
		{Name: "Buns", Quantity: 10, Threshold: 5, RequestAmount: 20},
		{Name: "Patties", Quantity: 3, Threshold: 1, RequestAmount: 10},
		{Name: "Cheese", Quantity: 8, Threshold: 2, RequestAmount: 12},
	}, sink, nil)
}

func TestRemoveRecordsSingleRequest(t *testing.T) {
	ctx := context.Background()
	sink := &memorySink{}
	l := newTestLedger(sink)

	if err := l.Remove(ctx, "Buns", 6); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	ing, _ := l.Ingredient("Buns")
	if ing.Quantity != 4 {
		t.Fatalf("quantity = %d, want 4", ing.Quantity)
	}
	if got := sink.lines(); !slices.Equal(got, []string{"Buns, 20"}) {
		t.Fatalf("requests = %v, want [Buns, 20]", got)
	}

	if err := l.Remove(ctx, "Buns", 1); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
	if got := sink.lines(); len(got) != 1 {
		t.Fatalf("duplicate request recorded: %v", got)
	}
	if got := l.Outstanding(); !slices.Equal(got, []string{"Buns"}) {
		t.Fatalf("outstanding = %v", got)
	}
}

func TestAddClearsOutstandingRequest(t *testing.T) {
	ctx := context.Background()
	sink := &memorySink{}
	l := newTestLedger(sink)

	_ = l.Remove(ctx, "Buns", 6)
	if err := l.Add(ctx, "Buns", 1); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := l.Outstanding(); len(got) != 0 {
		t.Fatalf("outstanding after Add = %v", got)
	}

	// Still at or below threshold, so the next removal asks again.
	_ = l.Remove(ctx, "Buns", 1)
	if got := sink.lines(); len(got) != 2 {
		t.Fatalf("requests = %v, want two", got)
	}
}

func TestRemoveInsufficientStock(t *testing.T) {
	ctx := context.Background()
	sink := &memorySink{}
	l := newTestLedger(sink)

	err := l.Remove(ctx, "Patties", 4)
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("err = %v, want ErrInsufficientStock", err)
	}
	ing, _ := l.Ingredient("Patties")
	if ing.Quantity != 3 {
		t.Fatalf("quantity changed to %d", ing.Quantity)
	}
	if len(sink.lines()) != 0 {
		t.Fatalf("rejected removal must not request resupply")
	}
}

func TestUnknownIngredient(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(nil)

	tests := []struct {
		name string
		fn   func() error
	}{
		{"remove", func() error { return l.Remove(ctx, "Truffle", 1) }},
		{"add", func() error { return l.Add(ctx, "Truffle", 1) }},
		{"threshold", func() error { return l.SetThreshold("Truffle", 1) }},
		{"request amount", func() error { return l.SetRequestAmount("Truffle", 1) }},
		{"lookup", func() error { _, err := l.Ingredient("Truffle"); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, ErrUnknownIngredient) {
				t.Errorf("err = %v, want ErrUnknownIngredient", err)
			}
		})
	}
}

func TestQuantityConservation(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(nil)

	ops := []struct {
		add bool
		qty int
	}{
		{false, 3}, {true, 5}, {false, 20}, {false, 7}, {true, 2}, {false, 1},
	}
	want := 10
	for _, op := range ops {
		if op.add {
			_ = l.Add(ctx, "Buns", op.qty)
			want += op.qty
			continue
		}
		if err := l.Remove(ctx, "Buns", op.qty); err == nil {
			want -= op.qty
		}
	}

	ing, _ := l.Ingredient("Buns")
	if ing.Quantity != want {
		t.Fatalf("quantity = %d, want %d", ing.Quantity, want)
	}
	if ing.Quantity < 0 {
		t.Fatalf("quantity went negative")
	}
}

func TestConcurrentRemoveNeverUnderflows(t *testing.T) {
	ctx := context.Background()
	sink := &memorySink{}
	l := NewLedger([]Ingredient{{Name: "Fries", Quantity: 100, Threshold: 50, RequestAmount: 80}}, sink, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	removed := 0
	for i := 0; i < 150; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Remove(ctx, "Fries", 1); err == nil {
				mu.Lock()
				removed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	ing, _ := l.Ingredient("Fries")
	if removed != 100 || ing.Quantity != 0 {
		t.Fatalf("removed=%d quantity=%d, want 100 and 0", removed, ing.Quantity)
	}
	if got := sink.lines(); len(got) != 1 {
		t.Fatalf("requests = %v, want exactly one", got)
	}
}

func TestLowStockRestartable(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(nil)

	collect := func() []string {
		var names []string
		for name := range l.LowStock() {
			names = append(names, name)
		}
		return names
	}

	if got := collect(); len(got) != 0 {
		t.Fatalf("low stock = %v, want none", got)
	}

	_ = l.Remove(ctx, "Cheese", 6)
	_ = l.Remove(ctx, "Buns", 5)
	if got := collect(); !slices.Equal(got, []string{"Buns", "Cheese"}) {
		t.Fatalf("low stock = %v", got)
	}
	if got := collect(); !slices.Equal(got, []string{"Buns", "Cheese"}) {
		t.Fatalf("second iteration = %v", got)
	}

	for name := range l.LowStock() {
		if name != "Buns" {
			t.Fatalf("first yielded %q", name)
		}
		break
	}
}

func TestSettersHaveNoSideEffects(t *testing.T) {
	sink := &memorySink{}
	l := newTestLedger(sink)

	if err := l.SetThreshold("Buns", 50); err != nil {
		t.Fatal(err)
	}
	if err := l.SetRequestAmount("Buns", 99); err != nil {
		t.Fatal(err)
	}
	ing, _ := l.Ingredient("Buns")
	if ing.Threshold != 50 || ing.RequestAmount != 99 || ing.Quantity != 10 {
		t.Fatalf("ingredient = %+v", ing)
	}
	if len(sink.lines()) != 0 || len(l.Outstanding()) != 0 {
		t.Fatalf("setter produced a request")
	}
}

func TestCanSupply(t *testing.T) {
	l := newTestLedger(nil)

	req := Requirements{}
	req.Add(map[string]int{"Patties": 2, "Buns": 1})
	req.Add(map[string]int{"Patties": 2, "Buns": 1})

	ok, short := l.CanSupply(req)
	if ok {
		t.Fatalf("expected shortage")
	}
	if short["Patties"] != 1 {
		t.Fatalf("short = %v, want Patties:1", short)
	}

	ok, _ = l.CanSupply(Requirements{"Patties": 3, "Cheese": 8})
	if !ok {
		t.Fatalf("exact stock must be enough")
	}

	ok, short = l.CanSupply(Requirements{"Saffron": 1})
	if ok || short["Saffron"] != 1 {
		t.Fatalf("unknown ingredient must be short, got %v", short)
	}
}

func TestRestock(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(nil)

	err := l.Restock(ctx, map[string]int{"Buns": 5, "Saffron": 1})
	if !errors.Is(err, ErrUnknownIngredient) {
		t.Fatalf("err = %v, want ErrUnknownIngredient", err)
	}
	ing, _ := l.Ingredient("Buns")
	if ing.Quantity != 15 {
		t.Fatalf("Buns = %d, want 15", ing.Quantity)
	}
}

func TestFileSinkAppends(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "requests.txt")
	l := newTestLedger(NewFileSink(path))

	_ = l.Remove(ctx, "Buns", 6)
	_ = l.Remove(ctx, "Patties", 2)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := strings.Split(strings.TrimSpace(string(data)), "\n")
	if !slices.Equal(got, []string{"Buns, 20", "Patties, 10"}) {
		t.Fatalf("file = %q", got)
	}
}

func TestResume(t *testing.T) {
	ctx := context.Background()
	sink := &memorySink{}
	l := newTestLedger(sink)
	l.Resume([]string{"Buns", "Unknown"})

	_ = l.Remove(ctx, "Buns", 6)
	if len(sink.lines()) != 0 {
		t.Fatalf("resumed request must suppress a new one")
	}
	if got := l.Outstanding(); !slices.Equal(got, []string{"Buns"}) {
		t.Fatalf("outstanding = %v", got)
	}
}
