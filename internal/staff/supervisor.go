package staff

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"restaurant-hub/internal/event"
	"restaurant-hub/internal/inventory"
	"restaurant-hub/internal/logger"
	"restaurant-hub/internal/menu"
	"restaurant-hub/internal/order"
)

// Supervisor watches every outstanding order and administers the ledger and
// the catalog.
type Supervisor struct {
	employee

	mu     sync.Mutex
	active orderList
	claims map[int64]string
}

func NewSupervisor(name string, deps Deps) *Supervisor {
	return &Supervisor{
		employee: newEmployee(name, RoleSupervisor, deps),
		claims:   make(map[int64]string),
	}
}

// Active lists submitted orders that have not been completed yet.
func (s *Supervisor) Active() []*order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active.clone()
}

// ClaimedBy returns the fulfillment actor that claimed an active order.
func (s *Supervisor) ClaimedBy(id int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name, ok := s.claims[id]
	return name, ok
}

func (s *Supervisor) Inventory() []inventory.Ingredient {
	return s.ledger.Stock()
}

// LowStock collects the ingredients currently at or below threshold.
func (s *Supervisor) LowStock() []string {
	return slices.Collect(s.ledger.LowStock())
}

// Requests lists ingredients with a resupply request outstanding.
func (s *Supervisor) Requests() []string {
	return s.ledger.Outstanding()
}

func (s *Supervisor) Menu() []menu.Item {
	return s.catalog.Items()
}

func (s *Supervisor) SetThreshold(ctx context.Context, ingredient string, threshold int) error {
	if threshold < 0 {
		return fmt.Errorf("threshold for %s: %w", ingredient, inventory.ErrInvalidQuantity)
	}
	if err := s.ledger.SetThreshold(ingredient, threshold); err != nil {
		return err
	}
	s.logger.Info("threshold_changed", fmt.Sprintf("%s set %s threshold to %d", s.name, ingredient, threshold), logger.RequestID(ctx), map[string]interface{}{
		"ingredient": ingredient,
		"threshold":  threshold,
	})
	return nil
}

func (s *Supervisor) SetRequestAmount(ctx context.Context, ingredient string, amount int) error {
	if amount < 0 {
		return fmt.Errorf("request amount for %s: %w", ingredient, inventory.ErrInvalidQuantity)
	}
	if err := s.ledger.SetRequestAmount(ingredient, amount); err != nil {
		return err
	}
	s.logger.Info("request_amount_changed", fmt.Sprintf("%s set %s request amount to %d", s.name, ingredient, amount), logger.RequestID(ctx), map[string]interface{}{
		"ingredient":     ingredient,
		"request_amount": amount,
	})
	return nil
}

// AddMenuItem adds an item whose recipe only uses stocked ingredients.
func (s *Supervisor) AddMenuItem(ctx context.Context, item menu.Item) error {
	for ing := range item.Recipe {
		if !s.ledger.Has(ing) {
			return fmt.Errorf("menu item %s: %s: %w", item.Name, ing, inventory.ErrUnknownIngredient)
		}
	}
	if err := s.catalog.Add(item); err != nil {
		return err
	}
	s.logger.Info("menu_item_added", fmt.Sprintf("%s added %s to the menu", s.name, item.Name), logger.RequestID(ctx), map[string]interface{}{
		"item":  item.Name,
		"price": item.Price,
	})
	return nil
}

func (s *Supervisor) AddRecipeLine(ctx context.Context, item, ingredient string, qty int) error {
	if !s.ledger.Has(ingredient) {
		return fmt.Errorf("menu item %s: %s: %w", item, ingredient, inventory.ErrUnknownIngredient)
	}
	if qty <= 0 {
		return fmt.Errorf("menu item %s: %s: %w", item, ingredient, inventory.ErrInvalidQuantity)
	}
	if err := s.catalog.AddRecipeLine(item, ingredient, qty); err != nil {
		return err
	}
	s.logger.Info("recipe_changed", fmt.Sprintf("%s added %d %s to %s", s.name, qty, ingredient, item), logger.RequestID(ctx), nil)
	return nil
}

func (s *Supervisor) RemoveRecipeLine(ctx context.Context, item, ingredient string) error {
	if err := s.catalog.RemoveRecipeLine(item, ingredient); err != nil {
		return err
	}
	s.logger.Info("recipe_changed", fmt.Sprintf("%s removed %s from %s", s.name, ingredient, item), logger.RequestID(ctx), nil)
	return nil
}

func (s *Supervisor) HandleEvent(ctx context.Context, ev *event.Event) error {
	id := ev.Order().ID()

	switch ev.Kind() {
	case event.KindOrder:
		s.mu.Lock()
		s.active = s.active.with(ev.Order())
		s.mu.Unlock()
		ev.MarkHandled()

	case event.KindRemoveOrder:
		s.mu.Lock()
		if ev.Scoped() {
			s.claims[id] = ev.Excluded()
		} else {
			s.active = s.active.without(id)
			delete(s.claims, id)
		}
		s.mu.Unlock()
		ev.MarkHandled()

	case event.KindServe:
		s.mu.Lock()
		s.active = s.active.without(id)
		delete(s.claims, id)
		s.mu.Unlock()
		ev.MarkHandled()
	}
	return nil
}
