package menu

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

var (
	ErrUnknownItem   = errors.New("unknown menu item")
	ErrDuplicateItem = errors.New("menu item already exists")
	ErrInvalidItem   = errors.New("invalid menu item")
)

// Item is an orderable dish. Recipe maps ingredient name to the quantity one
// portion consumes.
type Item struct {
	Name   string         `json:"name"`
	Price  int            `json:"price"`
	Recipe map[string]int `json:"recipe"`
	Paid   bool           `json:"paid"`
}

// Copy returns an independent deep copy, recipe included.
func (i *Item) Copy() *Item {
	return &Item{
		Name:   i.Name,
		Price:  i.Price,
		Recipe: maps.Clone(i.nonNilRecipe()),
		Paid:   i.Paid,
	}
}

// AddIngredient adds qty of ingredient to the recipe.
func (i *Item) AddIngredient(ingredient string, qty int) {
	if i.Recipe == nil {
		i.Recipe = make(map[string]int)
	}
	i.Recipe[ingredient] += qty
}

// RemoveIngredient takes qty of ingredient out of the recipe and drops the
// line once nothing is left.
func (i *Item) RemoveIngredient(ingredient string, qty int) {
	left := i.Recipe[ingredient] - qty
	if left <= 0 {
		delete(i.Recipe, ingredient)
		return
	}
	i.Recipe[ingredient] = left
}

func (i *Item) String() string {
	return i.Name
}

func (i *Item) nonNilRecipe() map[string]int {
	if i.Recipe == nil {
		return map[string]int{}
	}
	return i.Recipe
}

// Catalog holds the canonical menu items. Callers only ever receive copies.
type Catalog struct {
	mu    sync.RWMutex
	items map[string]*Item
}

func NewCatalog(items []Item) *Catalog {
	c := &Catalog{items: make(map[string]*Item, len(items))}
	for i := range items {
		c.items[items[i].Name] = items[i].Copy()
	}
	return c
}

// Copy returns a deep copy of the named item, ready for per-order changes.
func (c *Catalog) Copy(name string) (*Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.items[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnknownItem)
	}
	cp := item.Copy()
	cp.Paid = false
	return cp, nil
}

// Add registers a new canonical item.
func (c *Catalog) Add(item Item) error {
	if strings.TrimSpace(item.Name) == "" || item.Price < 0 {
		return fmt.Errorf("%q: %w", item.Name, ErrInvalidItem)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[item.Name]; exists {
		return fmt.Errorf("%s: %w", item.Name, ErrDuplicateItem)
	}
	c.items[item.Name] = item.Copy()
	return nil
}

// AddRecipeLine adds qty of ingredient to a canonical recipe.
func (c *Catalog) AddRecipeLine(name, ingredient string, qty int) error {
	return c.mutate(name, func(item *Item) { item.AddIngredient(ingredient, qty) })
}

// RemoveRecipeLine drops an ingredient from a canonical recipe.
func (c *Catalog) RemoveRecipeLine(name, ingredient string) error {
	return c.mutate(name, func(item *Item) { delete(item.Recipe, ingredient) })
}

func (c *Catalog) mutate(name string, fn func(*Item)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[name]
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrUnknownItem)
	}
	fn(item)
	return nil
}

// Items returns copies of every item sorted by name.
func (c *Catalog) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := slices.Sorted(maps.Keys(c.items))
	out := make([]Item, 0, len(names))
	for _, name := range names {
		out = append(out, *c.items[name].Copy())
	}
	return out
}
