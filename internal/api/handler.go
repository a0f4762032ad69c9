package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"restaurant-hub/internal/hub"
	"restaurant-hub/internal/logger"
	"restaurant-hub/internal/staff"
)

var (
	errWrongRole    = errors.New("actor does not have that role")
	errNoSupervisor = errors.New("no supervisor on duty")
)

// HealthCheck reports whether a dependency is usable.
type HealthCheck func(ctx context.Context) error

// Handler exposes the hub's actors, stock, menu and bills over HTTP.
type Handler struct {
	hub    *hub.Hub
	logger *logger.Logger
	checks map[string]HealthCheck
}

// NewHandler creates a new API handler. checks are run by GET /health.
func NewHandler(h *hub.Hub, log *logger.Logger, checks map[string]HealthCheck) *Handler {
	return &Handler{
		hub:    h,
		logger: log,
		checks: checks,
	}
}

// Routes builds the router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.withLogging)

	r.Get("/health", h.HealthCheck)

	r.Route("/actors", func(r chi.Router) {
		r.Get("/", h.ListActors)
		r.Get("/{name}/orders", h.ActorOrders)
	})

	r.Route("/takers/{name}/orders", func(r chi.Router) {
		r.Post("/", h.SubmitOrder)
		r.Post("/{id}/serve", h.ServeOrder)
	})

	r.Route("/takers/{name}/draft", func(r chi.Router) {
		r.Get("/", h.GetDraft)
		r.Post("/", h.StartDraft)
		r.Get("/total", h.DraftTotal)
		r.Post("/items", h.AddDraftItem)
		r.Post("/items/{index}/changes", h.CustomizeDraftItem)
		r.Post("/finalize", h.FinalizeDraft)
	})

	r.Route("/fulfillment/{name}/orders/{id}", func(r chi.Router) {
		r.Post("/claim", h.ClaimOrder)
		r.Post("/ready", h.MarkReady)
		r.Post("/seen", h.ConfirmSeen)
	})

	r.Route("/inventory", func(r chi.Router) {
		r.Get("/", h.ListInventory)
		r.Get("/low", h.LowStock)
		r.Get("/requests", h.OutstandingRequests)
		r.Post("/restock", h.Restock)
		r.Patch("/{ingredient}", h.PatchIngredient)
	})

	r.Route("/menu", func(r chi.Router) {
		r.Get("/", h.ListMenu)
		r.Post("/", h.AddMenuItem)
		r.Post("/{item}/ingredients", h.AddRecipeLine)
		r.Delete("/{item}/ingredients/{ingredient}", h.RemoveRecipeLine)
	})

	r.Route("/tables/{table}/bill", func(r chi.Router) {
		r.Get("/", h.GetBill)
		r.Post("/pay", h.PayBill)
	})

	return r
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   h.logger.Service(),
		"actors":    len(h.hub.Actors("")),
		"deps":      deps,
	}
	if status != http.StatusOK {
		response["status"] = "unhealthy"
	}
	h.writeJSON(w, r, status, response)
}

func (h *Handler) actor(name string) (staff.Actor, error) {
	return h.hub.Actor(name)
}

func (h *Handler) taker(name string) (*staff.Taker, error) {
	a, err := h.actor(name)
	if err != nil {
		return nil, err
	}
	t, ok := a.(*staff.Taker)
	if !ok {
		return nil, errWrongRole
	}
	return t, nil
}

func (h *Handler) fulfillment(name string) (*staff.Fulfillment, error) {
	a, err := h.actor(name)
	if err != nil {
		return nil, err
	}
	f, ok := a.(*staff.Fulfillment)
	if !ok {
		return nil, errWrongRole
	}
	return f, nil
}

// supervisor returns the first registered supervisor.
func (h *Handler) supervisor() (*staff.Supervisor, error) {
	for _, a := range h.hub.Actors(staff.RoleSupervisor) {
		if s, ok := a.(*staff.Supervisor); ok {
			return s, nil
		}
	}
	return nil, errNoSupervisor
}

func orderID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
