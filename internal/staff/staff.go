package staff

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"restaurant-hub/internal/event"
	"restaurant-hub/internal/inventory"
	"restaurant-hub/internal/logger"
	"restaurant-hub/internal/menu"
	"restaurant-hub/internal/order"
)

// Role is the kind of work an actor does.
type Role string

const (
	RoleTaker       Role = "taker"
	RoleFulfillment Role = "fulfillment"
	RoleSupervisor  Role = "supervisor"
)

var (
	ErrUnknownRole      = errors.New("unknown role")
	ErrUnknownOrder     = errors.New("order not in working set")
	ErrNoDraft          = errors.New("no order in progress")
	ErrEmptyOrder       = errors.New("order has no items")
	ErrUnableToComplete = errors.New("not enough stock to complete order")
)

// ParseRole accepts both the role names and the job titles used in staff files.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "taker", "server":
		return RoleTaker, nil
	case "fulfillment", "chef":
		return RoleFulfillment, nil
	case "supervisor", "manager":
		return RoleSupervisor, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownRole)
	}
}

// Actor is anything registered with the hub. HandleEvent is called once per
// dispatched event, in dispatch order, and must not dispatch itself.
type Actor interface {
	Name() string
	Role() Role
	HandleEvent(ctx context.Context, ev *event.Event) error
}

// Bus delivers events to every registered actor. Atomically runs fn so that
// no other business operation interleaves with it.
type Bus interface {
	Dispatch(ctx context.Context, ev *event.Event) error
	Atomically(fn func() error) error
}

// Deps are the collaborators shared by every actor.
type Deps struct {
	Ledger  *inventory.Ledger
	Catalog *menu.Catalog
	Bus     Bus
	Orders  *order.Sequence
	Tables  int
	Logger  *logger.Logger
}

// New builds an actor for role.
func New(name string, role Role, deps Deps) (Actor, error) {
	switch role {
	case RoleTaker:
		return NewTaker(name, deps), nil
	case RoleFulfillment:
		return NewFulfillment(name, deps), nil
	case RoleSupervisor:
		return NewSupervisor(name, deps), nil
	default:
		return nil, fmt.Errorf("%q: %w", role, ErrUnknownRole)
	}
}

type employee struct {
	name    string
	role    Role
	ledger  *inventory.Ledger
	catalog *menu.Catalog
	bus     Bus
	logger  *logger.Logger
}

func newEmployee(name string, role Role, deps Deps) employee {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return employee{
		name:    name,
		role:    role,
		ledger:  deps.Ledger,
		catalog: deps.Catalog,
		bus:     deps.Bus,
		logger:  log,
	}
}

func (e *employee) Name() string { return e.name }
func (e *employee) Role() Role   { return e.role }

// Restock adds a delivery to the ledger. Any role may receive one.
func (e *employee) Restock(ctx context.Context, delivery map[string]int) error {
	err := e.ledger.Restock(ctx, delivery)
	if err != nil {
		e.logger.Error("restock_failed", "Failed to restock some ingredients", logger.RequestID(ctx), err, map[string]interface{}{
			"actor": e.name,
		})
		return err
	}
	e.logger.Info("restocked", fmt.Sprintf("%s restocked %d ingredients", e.name, len(delivery)), logger.RequestID(ctx), map[string]interface{}{
		"actor":    e.name,
		"delivery": delivery,
	})
	return nil
}

// orderList is an actor's private working set, kept in arrival order.
type orderList []*order.Order

func (l orderList) find(id int64) (*order.Order, bool) {
	i := l.index(id)
	if i < 0 {
		return nil, false
	}
	return l[i], true
}

func (l orderList) index(id int64) int {
	return slices.IndexFunc(l, func(o *order.Order) bool { return o.ID() == id })
}

func (l orderList) without(id int64) orderList {
	return slices.DeleteFunc(l, func(o *order.Order) bool { return o.ID() == id })
}

func (l orderList) with(o *order.Order) orderList {
	if l.index(o.ID()) >= 0 {
		return l
	}
	return append(l, o)
}

func (l orderList) clone() []*order.Order {
	return slices.Clone([]*order.Order(l))
}
