package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"restaurant-hub/internal/logger"
	"restaurant-hub/internal/models"
	"restaurant-hub/internal/staff"
)

// withDraft resolves the taker in the URL and writes the draft after fn
// succeeds.
func (h *Handler) withDraft(w http.ResponseWriter, r *http.Request, action string, status int, fn func(t *staff.Taker) error) {
	t, err := h.taker(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, action, err)
		return
	}
	if err := fn(t); err != nil {
		h.writeError(w, r, action, err)
		return
	}

	draft := t.Draft()
	if draft == nil {
		h.writeError(w, r, action, staff.ErrNoDraft)
		return
	}
	h.writeJSON(w, r, status, models.NewOrderView(draft))
}

// GetDraft handles GET /takers/{name}/draft requests
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	h.withDraft(w, r, "draft_lookup_failed", http.StatusOK, func(*staff.Taker) error { return nil })
}

// StartDraft handles POST /takers/{name}/draft requests
func (h *Handler) StartDraft(w http.ResponseWriter, r *http.Request) {
	var req models.DraftRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(h.hub.Tables()); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.withDraft(w, r, "draft_start_failed", http.StatusCreated, func(t *staff.Taker) error {
		_, err := t.StartOrder(req.Table)
		return err
	})
}

// DraftTotal handles GET /takers/{name}/draft/total requests
func (h *Handler) DraftTotal(w http.ResponseWriter, r *http.Request) {
	t, err := h.taker(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, "draft_lookup_failed", err)
		return
	}
	total, err := t.DraftTotal()
	if err != nil {
		h.writeError(w, r, "draft_lookup_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, models.DraftTotalResponse{Total: total})
}

// AddDraftItem handles POST /takers/{name}/draft/items requests
func (h *Handler) AddDraftItem(w http.ResponseWriter, r *http.Request) {
	var req models.DraftItemRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.withDraft(w, r, "draft_item_failed", http.StatusOK, func(t *staff.Taker) error {
		_, err := t.AddItem(req.Item)
		return err
	})
}

// CustomizeDraftItem handles POST /takers/{name}/draft/items/{index}/changes requests
func (h *Handler) CustomizeDraftItem(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, "Invalid item index")
		return
	}

	var req models.DraftChangeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.withDraft(w, r, "draft_change_failed", http.StatusOK, func(t *staff.Taker) error {
		return t.Customize(index, req.Ingredient, req.Delta)
	})
}

// FinalizeDraft handles POST /takers/{name}/draft/finalize requests
func (h *Handler) FinalizeDraft(w http.ResponseWriter, r *http.Request) {
	t, err := h.taker(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, r, "order_submit_failed", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	o, err := t.Finalize(ctx)
	if o != nil {
		h.logger.Debug("draft_finalized", "Finalized order in progress", logger.RequestID(ctx), map[string]interface{}{
			"order_id": o.ID(),
			"taker":    t.Name(),
		})
	}
	h.writeSubmitted(w, r, o, err)
}
