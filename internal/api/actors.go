package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"restaurant-hub/internal/models"
	"restaurant-hub/internal/order"
	"restaurant-hub/internal/staff"
)

// ListActors handles GET /actors?role= requests
func (h *Handler) ListActors(w http.ResponseWriter, r *http.Request) {
	var role staff.Role
	if s := r.URL.Query().Get("role"); s != "" {
		parsed, err := staff.ParseRole(s)
		if err != nil {
			h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		role = parsed
	}

	actors := h.hub.Actors(role)
	out := make([]models.ActorSummary, 0, len(actors))
	for _, a := range actors {
		out = append(out, models.ActorSummary{Name: a.Name(), Role: string(a.Role())})
	}
	h.writeJSON(w, r, http.StatusOK, map[string]interface{}{"actors": out})
}

// ActorOrders handles GET /actors/{name}/orders requests
func (h *Handler) ActorOrders(w http.ResponseWriter, r *http.Request) {
	a, err := h.actor(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, "actor_lookup_failed", err)
		return
	}

	view := models.ActorView{Name: a.Name(), Role: string(a.Role())}
	switch a := a.(type) {
	case *staff.Taker:
		view.Ready = models.NewOrderViews(a.Ready())
		view.Failed = models.NewOrderViews(a.Failed())
	case *staff.Fulfillment:
		view.Pending = models.NewOrderViews(a.Pending())
		view.Seen = models.NewOrderViews(a.Seen())
		view.Claimed = models.NewOrderViews(a.Claimed())
	case *staff.Supervisor:
		view.Active = models.NewOrderViews(a.Active())
	}
	h.writeJSON(w, r, http.StatusOK, view)
}

// SubmitOrder handles POST /takers/{name}/orders requests
func (h *Handler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	t, err := h.taker(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, "order_submit_failed", err)
		return
	}

	var req models.SubmitOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(h.hub.Tables()); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	selections := make([]staff.Selection, 0, len(req.Items))
	for _, sel := range req.Items {
		selections = append(selections, staff.Selection{Item: sel.Item, Changes: sel.Changes})
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	o, err := t.Submit(ctx, req.Table, selections)
	h.writeSubmitted(w, r, o, err)
}

// writeSubmitted reports the outcome of a submitted or finalized order. A
// rejected order is reported with its info and 409.
func (h *Handler) writeSubmitted(w http.ResponseWriter, r *http.Request, o *order.Order, err error) {
	if errors.Is(err, staff.ErrUnableToComplete) && o != nil {
		h.writeJSON(w, r, http.StatusConflict, models.SubmitOrderResponse{
			OrderID: o.ID(),
			Status:  string(o.Status()),
			Total:   o.Total(),
			Info:    err.Error(),
		})
		return
	}
	if err != nil {
		h.writeError(w, r, "order_submit_failed", err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, models.SubmitOrderResponse{
		OrderID: o.ID(),
		Status:  string(o.Status()),
		Total:   o.Total(),
	})
}

// ServeOrder handles POST /takers/{name}/orders/{id}/serve requests
func (h *Handler) ServeOrder(w http.ResponseWriter, r *http.Request) {
	t, err := h.taker(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, "order_serve_failed", err)
		return
	}
	id, err := orderID(r)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "Invalid order id")
		return
	}

	o, err := t.Serve(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "order_serve_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, models.NewOrderView(o))
}

// ClaimOrder handles POST /fulfillment/{name}/orders/{id}/claim requests
func (h *Handler) ClaimOrder(w http.ResponseWriter, r *http.Request) {
	h.fulfill(w, r, "order_claim_failed", func(ctx context.Context, f *staff.Fulfillment, id int64) error {
		return f.Claim(ctx, id)
	})
}

// MarkReady handles POST /fulfillment/{name}/orders/{id}/ready requests
func (h *Handler) MarkReady(w http.ResponseWriter, r *http.Request) {
	h.fulfill(w, r, "order_ready_failed", func(ctx context.Context, f *staff.Fulfillment, id int64) error {
		return f.MarkReady(ctx, id)
	})
}

// ConfirmSeen handles POST /fulfillment/{name}/orders/{id}/seen requests
func (h *Handler) ConfirmSeen(w http.ResponseWriter, r *http.Request) {
	h.fulfill(w, r, "order_seen_failed", func(_ context.Context, f *staff.Fulfillment, id int64) error {
		return f.ConfirmSeen(id)
	})
}

func (h *Handler) fulfill(w http.ResponseWriter, r *http.Request, action string, fn func(context.Context, *staff.Fulfillment, int64) error) {
	f, err := h.fulfillment(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, action, err)
		return
	}
	id, err := orderID(r)
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "Invalid order id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := fn(ctx, f, id); err != nil {
		h.writeError(w, r, action, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, models.ActorView{
		Name:    f.Name(),
		Role:    string(f.Role()),
		Pending: models.NewOrderViews(f.Pending()),
		Seen:    models.NewOrderViews(f.Seen()),
		Claimed: models.NewOrderViews(f.Claimed()),
	})
}
