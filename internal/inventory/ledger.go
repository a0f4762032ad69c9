package inventory

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"restaurant-hub/internal/logger"
)

var (
	ErrUnknownIngredient = errors.New("unknown ingredient")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must not be negative")
)

// Ingredient is a stocked ingredient. Quantity is never negative.
type Ingredient struct {
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	Threshold     int    `json:"restock_threshold"`
	RequestAmount int    `json:"request_amount"`
}

// Low reports whether the ingredient is at or below its restock threshold.
func (i Ingredient) Low() bool {
	return i.Quantity <= i.Threshold
}

// Ledger is the authoritative store of ingredient quantities. It also tracks
// outstanding resupply requests: at most one per ingredient until the next Add.
type Ledger struct {
	mu          sync.Mutex
	stock       map[string]*Ingredient
	outstanding map[string]struct{}
	sink        RequestSink
	logger      *logger.Logger
}

// NewLedger builds a ledger from seed data. A nil sink discards requests.
func NewLedger(seed []Ingredient, sink RequestSink, log *logger.Logger) *Ledger {
	if sink == nil {
		sink = DiscardSink{}
	}
	if log == nil {
		log = logger.NewNop()
	}

	l := &Ledger{
		stock:       make(map[string]*Ingredient, len(seed)),
		outstanding: make(map[string]struct{}),
		sink:        sink,
		logger:      log,
	}
	for _, ing := range seed {
		if _, dup := l.stock[ing.Name]; dup {
			log.Warn("ingredient_duplicate", fmt.Sprintf("Duplicate ingredient %s in seed, keeping the last one", ing.Name), "startup", nil)
		}
		copied := ing
		l.stock[ing.Name] = &copied
	}
	return l
}

// Remove takes qty units of name out of stock. If the ingredient drops to or
// below its threshold and no request is outstanding, exactly one resupply
// request is recorded.
func (l *Ledger) Remove(ctx context.Context, name string, qty int) error {
	if qty < 0 {
		return fmt.Errorf("remove %s: %w", name, ErrInvalidQuantity)
	}

	requestID := logger.RequestID(ctx)

	l.mu.Lock()
	ing, ok := l.stock[name]
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("remove %s: %w", name, ErrUnknownIngredient)
	}
	if qty > ing.Quantity {
		have := ing.Quantity
		l.mu.Unlock()
		l.logger.Warn("stock_remove_rejected", fmt.Sprintf("Not enough %s in stock", name), requestID, map[string]interface{}{
			"ingredient": name,
			"requested":  qty,
			"available":  have,
		})
		return fmt.Errorf("remove %d %s (have %d): %w", qty, name, have, ErrInsufficientStock)
	}
	ing.Quantity -= qty

	var req *Request
	if ing.Low() {
		if _, pending := l.outstanding[name]; pending {
			l.logger.Debug("restock_request_suppressed", fmt.Sprintf("Request for %s already outstanding", name), requestID, nil)
		} else {
			l.outstanding[name] = struct{}{}
			req = &Request{Ingredient: name, Amount: ing.RequestAmount, At: time.Now().UTC()}
		}
	}
	l.mu.Unlock()

	if req != nil {
		l.logger.Info("restock_requested", fmt.Sprintf("Requested %d %s", req.Amount, name), requestID, map[string]interface{}{
			"ingredient": name,
			"amount":     req.Amount,
		})
		if err := l.sink.Record(ctx, *req); err != nil {
			l.logger.Error("restock_request_persist_failed", "Failed to persist restock request", requestID, err, map[string]interface{}{
				"ingredient": name,
			})
		}
	}
	return nil
}

// Add puts qty units of name into stock and clears any outstanding request.
func (l *Ledger) Add(ctx context.Context, name string, qty int) error {
	if qty < 0 {
		return fmt.Errorf("add %s: %w", name, ErrInvalidQuantity)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ing, ok := l.stock[name]
	if !ok {
		return fmt.Errorf("add %s: %w", name, ErrUnknownIngredient)
	}
	ing.Quantity += qty
	delete(l.outstanding, name)
	return nil
}

// Restock adds every entry of delivery. Unknown names are reported after the
// known ones have been applied.
func (l *Ledger) Restock(ctx context.Context, delivery map[string]int) error {
	var errs []error
	for _, name := range sortedKeys(delivery) {
		if err := l.Add(ctx, name, delivery[name]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LowStock yields the names of ingredients at or below their threshold, in
// name order. Each iteration reads the current state.
func (l *Ledger) LowStock() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, ing := range l.Stock() {
			if ing.Low() && !yield(ing.Name) {
				return
			}
		}
	}
}

func (l *Ledger) SetThreshold(name string, threshold int) error {
	return l.update(name, func(ing *Ingredient) { ing.Threshold = threshold })
}

func (l *Ledger) SetRequestAmount(name string, amount int) error {
	return l.update(name, func(ing *Ingredient) { ing.RequestAmount = amount })
}

func (l *Ledger) update(name string, fn func(*Ingredient)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	ing, ok := l.stock[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownIngredient)
	}
	fn(ing)
	return nil
}

// Ingredient returns a copy of the named ingredient.
func (l *Ledger) Ingredient(name string) (Ingredient, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ing, ok := l.stock[name]
	if !ok {
		return Ingredient{}, fmt.Errorf("%s: %w", name, ErrUnknownIngredient)
	}
	return *ing, nil
}

// Has reports whether name is a stocked ingredient.
func (l *Ledger) Has(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.stock[name]
	return ok
}

// Stock returns a copy of every ingredient sorted by name.
func (l *Ledger) Stock() []Ingredient {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Ingredient, 0, len(l.stock))
	for _, ing := range l.stock {
		out = append(out, *ing)
	}
	slices.SortFunc(out, func(a, b Ingredient) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Outstanding returns the ingredients with a resupply request in flight.
func (l *Ledger) Outstanding() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	names := make([]string, 0, len(l.outstanding))
	for name := range l.outstanding {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CanSupply compares every aggregated requirement with the current stock.
// The returned map holds the missing amount per short ingredient; unknown
// ingredients count as fully missing.
func (l *Ledger) CanSupply(req Requirements) (bool, map[string]int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var short map[string]int
	for name, need := range req {
		have := 0
		if ing, ok := l.stock[name]; ok {
			have = ing.Quantity
		}
		if need > have {
			if short == nil {
				short = make(map[string]int)
			}
			short[name] = need - have
		}
	}
	return len(short) == 0, short
}

// Requirements is a consolidated ingredient -> quantity map.
type Requirements map[string]int

// Add sums a recipe into the requirements.
func (r Requirements) Add(recipe map[string]int) {
	for name, qty := range recipe {
		r[name] += qty
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Resume marks names as having a request in flight, used when restoring a
// snapshot taken while requests were still unanswered.
func (l *Ledger) Resume(outstanding []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, name := range outstanding {
		if _, ok := l.stock[name]; ok {
			l.outstanding[name] = struct{}{}
		}
	}
}
