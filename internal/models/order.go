package models

import (
	"fmt"
	"strings"

	"restaurant-hub/internal/menu"
	"restaurant-hub/internal/order"
)

// ItemView is one menu item copy as shown to clients.
type ItemView struct {
	Name   string         `json:"name"`
	Price  int            `json:"price"`
	Paid   bool           `json:"paid"`
	Recipe map[string]int `json:"recipe,omitempty"`
}

// OrderView is a read-only snapshot of an order.
type OrderView struct {
	ID     int64      `json:"id"`
	Table  int        `json:"table_number"`
	Taker  string     `json:"taker"`
	Status string     `json:"status"`
	Total  int        `json:"total_amount"`
	Items  []ItemView `json:"items"`
}

// BillView is a table's bill with its running cost and what is still owed.
type BillView struct {
	ID          int64       `json:"id"`
	Table       int         `json:"table_number"`
	Cost        int         `json:"cost"`
	Outstanding int         `json:"outstanding"`
	Orders      []OrderView `json:"orders"`
}

// SelectionRequest is one menu item in a submit request, with optional
// recipe changes (positive adds, negative removes).
type SelectionRequest struct {
	Item    string         `json:"item"`
	Changes map[string]int `json:"changes,omitempty"`
}

// SubmitOrderRequest represents the request to submit an order for a table
type SubmitOrderRequest struct {
	Table int                `json:"table_number"`
	Items []SelectionRequest `json:"items"`
}

// SubmitOrderResponse represents the response after submitting an order
type SubmitOrderResponse struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
	Total   int    `json:"total_amount"`
	Info    string `json:"info,omitempty"`
}

// DraftRequest starts an interactive order for a table.
type DraftRequest struct {
	Table int `json:"table_number"`
}

// DraftItemRequest puts a menu item on the order in progress.
type DraftItemRequest struct {
	Item string `json:"item"`
}

// DraftChangeRequest changes one recipe line of an item in the order in
// progress. A positive delta adds, a negative one removes.
type DraftChangeRequest struct {
	Ingredient string `json:"ingredient"`
	Delta      int    `json:"delta"`
}

// DraftTotalResponse is the cost of the order in progress.
type DraftTotalResponse struct {
	Total int `json:"total_amount"`
}

// PayRequest pays one item of one order, or everything when All is set.
type PayRequest struct {
	OrderID int64 `json:"order_id"`
	Item    int   `json:"item"`
	All     bool  `json:"all"`
}

// PayResponse reports the state of the bill after a payment.
type PayResponse struct {
	Paid        int `json:"paid"`
	Outstanding int `json:"outstanding"`
}

// IngredientPatch updates an ingredient's restock settings. Nil fields are left alone.
type IngredientPatch struct {
	Threshold     *int `json:"restock_threshold,omitempty"`
	RequestAmount *int `json:"request_amount,omitempty"`
}

// RecipeLineRequest adds an ingredient line to a menu item.
type RecipeLineRequest struct {
	Ingredient string `json:"ingredient"`
	Quantity   int    `json:"quantity"`
}

// RestockRequest is a delivery received by one actor.
type RestockRequest struct {
	Actor    string         `json:"actor"`
	Delivery map[string]int `json:"delivery"`
}

// MenuItemRequest creates a menu item.
type MenuItemRequest struct {
	Name   string         `json:"name"`
	Price  int            `json:"price"`
	Recipe map[string]int `json:"recipe"`
}

// NewItemView converts a menu item copy.
func NewItemView(item menu.Item) ItemView {
	return ItemView{Name: item.Name, Price: item.Price, Paid: item.Paid, Recipe: item.Recipe}
}

// NewOrderView snapshots an order.
func NewOrderView(o *order.Order) OrderView {
	items := o.Items()
	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, NewItemView(item))
	}
	return OrderView{
		ID:     o.ID(),
		Table:  o.Table(),
		Taker:  o.Taker(),
		Status: string(o.Status()),
		Total:  o.Total(),
		Items:  views,
	}
}

// NewOrderViews snapshots a list of orders.
func NewOrderViews(orders []*order.Order) []OrderView {
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, NewOrderView(o))
	}
	return views
}

// NewBillView snapshots a bill.
func NewBillView(b *order.Bill) BillView {
	return BillView{
		ID:          b.ID(),
		Table:       b.Table(),
		Cost:        b.Cost(),
		Outstanding: b.Outstanding(),
		Orders:      NewOrderViews(b.Orders()),
	}
}

// Validate validates the submit order request against the number of tables
func (req *SubmitOrderRequest) Validate(tables int) error {
	if req.Table < 1 || req.Table > tables {
		return fmt.Errorf("table_number must be between 1 and %d", tables)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("items must not be empty")
	}
	for i, sel := range req.Items {
		if strings.TrimSpace(sel.Item) == "" {
			return fmt.Errorf("items[%d].item is required", i)
		}
	}
	return nil
}

// Validate validates the draft request against the number of tables
func (req *DraftRequest) Validate(tables int) error {
	if req.Table < 1 || req.Table > tables {
		return fmt.Errorf("table_number must be between 1 and %d", tables)
	}
	return nil
}

// Validate validates the draft item request
func (req *DraftItemRequest) Validate() error {
	if strings.TrimSpace(req.Item) == "" {
		return fmt.Errorf("item is required")
	}
	return nil
}

// Validate validates the draft change request
func (req *DraftChangeRequest) Validate() error {
	if strings.TrimSpace(req.Ingredient) == "" {
		return fmt.Errorf("ingredient is required")
	}
	return nil
}

// Validate validates the menu item request
func (req *MenuItemRequest) Validate() error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if req.Price < 0 {
		return fmt.Errorf("price must not be negative")
	}
	for ing, qty := range req.Recipe {
		if qty <= 0 {
			return fmt.Errorf("recipe quantity for %s must be positive", ing)
		}
	}
	return nil
}

// Validate validates the recipe line request
func (req *RecipeLineRequest) Validate() error {
	if strings.TrimSpace(req.Ingredient) == "" {
		return fmt.Errorf("ingredient is required")
	}
	if req.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	return nil
}

// Validate validates the restock request
func (req *RestockRequest) Validate() error {
	if strings.TrimSpace(req.Actor) == "" {
		return fmt.Errorf("actor is required")
	}
	if len(req.Delivery) == 0 {
		return fmt.Errorf("delivery must not be empty")
	}
	for ing, qty := range req.Delivery {
		if qty <= 0 {
			return fmt.Errorf("delivery quantity for %s must be positive", ing)
		}
	}
	return nil
}

// Validate validates the ingredient patch
func (p *IngredientPatch) Validate() error {
	if p.Threshold == nil && p.RequestAmount == nil {
		return fmt.Errorf("restock_threshold or request_amount is required")
	}
	if p.Threshold != nil && *p.Threshold < 0 {
		return fmt.Errorf("restock_threshold must not be negative")
	}
	if p.RequestAmount != nil && *p.RequestAmount < 0 {
		return fmt.Errorf("request_amount must not be negative")
	}
	return nil
}
