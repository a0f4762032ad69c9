package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"restaurant-hub/internal/menu"
	"restaurant-hub/internal/models"
)

// ListMenu handles GET /menu requests
func (h *Handler) ListMenu(w http.ResponseWriter, r *http.Request) {
	s, err := h.supervisor()
	if err != nil {
		h.writeError(w, r, "menu_list_failed", err)
		return
	}
	items := s.Menu()
	out := make([]models.ItemView, 0, len(items))
	for _, item := range items {
		out = append(out, models.NewItemView(item))
	}
	h.writeJSON(w, r, http.StatusOK, map[string]interface{}{"items": out})
}

// AddMenuItem handles POST /menu requests
func (h *Handler) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	s, err := h.supervisor()
	if err != nil {
		h.writeError(w, r, "menu_item_add_failed", err)
		return
	}

	var req models.MenuItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	item := menu.Item{Name: req.Name, Price: req.Price, Recipe: req.Recipe}
	if err := s.AddMenuItem(r.Context(), item); err != nil {
		h.writeError(w, r, "menu_item_add_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, models.NewItemView(item))
}

// AddRecipeLine handles POST /menu/{item}/ingredients requests
func (h *Handler) AddRecipeLine(w http.ResponseWriter, r *http.Request) {
	s, err := h.supervisor()
	if err != nil {
		h.writeError(w, r, "recipe_update_failed", err)
		return
	}

	var req models.RecipeLineRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.AddRecipeLine(r.Context(), chi.URLParam(r, "item"), req.Ingredient, req.Quantity); err != nil {
		h.writeError(w, r, "recipe_update_failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveRecipeLine handles DELETE /menu/{item}/ingredients/{ingredient} requests
func (h *Handler) RemoveRecipeLine(w http.ResponseWriter, r *http.Request) {
	s, err := h.supervisor()
	if err != nil {
		h.writeError(w, r, "recipe_update_failed", err)
		return
	}

	if err := s.RemoveRecipeLine(r.Context(), chi.URLParam(r, "item"), chi.URLParam(r, "ingredient")); err != nil {
		h.writeError(w, r, "recipe_update_failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
