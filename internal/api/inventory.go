package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"restaurant-hub/internal/models"
)

type restocker interface {
	Restock(ctx context.Context, delivery map[string]int) error
}

// ListInventory handles GET /inventory requests
func (h *Handler) ListInventory(w http.ResponseWriter, r *http.Request) {
	s, err := h.supervisor()
	if err != nil {
		h.writeError(w, r, "inventory_list_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]interface{}{"ingredients": s.Inventory()})
}

// LowStock handles GET /inventory/low requests
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	s, err := h.supervisor()
	if err != nil {
		h.writeError(w, r, "inventory_low_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]interface{}{"low": nonNil(s.LowStock())})
}

// OutstandingRequests handles GET /inventory/requests requests
func (h *Handler) OutstandingRequests(w http.ResponseWriter, r *http.Request) {
	s, err := h.supervisor()
	if err != nil {
		h.writeError(w, r, "inventory_requests_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]interface{}{"outstanding": nonNil(s.Requests())})
}

// PatchIngredient handles PATCH /inventory/{ingredient} requests
func (h *Handler) PatchIngredient(w http.ResponseWriter, r *http.Request) {
	s, err := h.supervisor()
	if err != nil {
		h.writeError(w, r, "ingredient_update_failed", err)
		return
	}

	var patch models.IngredientPatch
	if err := decodeJSON(r, &patch); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := patch.Validate(); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	name := chi.URLParam(r, "ingredient")
	if patch.Threshold != nil {
		if err := s.SetThreshold(r.Context(), name, *patch.Threshold); err != nil {
			h.writeError(w, r, "ingredient_update_failed", err)
			return
		}
	}
	if patch.RequestAmount != nil {
		if err := s.SetRequestAmount(r.Context(), name, *patch.RequestAmount); err != nil {
			h.writeError(w, r, "ingredient_update_failed", err)
			return
		}
	}

	for _, ing := range s.Inventory() {
		if ing.Name == name {
			h.writeJSON(w, r, http.StatusOK, ing)
			return
		}
	}
	h.writeJSON(w, r, http.StatusOK, map[string]interface{}{"name": name})
}

// Restock handles POST /inventory/restock requests. Any actor may receive a delivery.
func (h *Handler) Restock(w http.ResponseWriter, r *http.Request) {
	var req models.RestockRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	a, err := h.actor(req.Actor)
	if err != nil {
		h.writeError(w, r, "restock_failed", err)
		return
	}
	rs, ok := a.(restocker)
	if !ok {
		h.writeError(w, r, "restock_failed", errWrongRole)
		return
	}
	if err := rs.Restock(r.Context(), req.Delivery); err != nil {
		h.writeError(w, r, "restock_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, map[string]interface{}{"restocked": len(req.Delivery)})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
