package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"restaurant-hub/internal/logger"
	"restaurant-hub/internal/models"
	"restaurant-hub/internal/order"
)

func (h *Handler) bill(r *http.Request) (*order.Bill, error) {
	table, err := strconv.Atoi(chi.URLParam(r, "table"))
	if err != nil {
		return nil, order.ErrUnknownTable
	}
	return h.hub.Bill(table)
}

// GetBill handles GET /tables/{table}/bill requests
func (h *Handler) GetBill(w http.ResponseWriter, r *http.Request) {
	b, err := h.bill(r)
	if err != nil {
		h.writeError(w, r, "bill_lookup_failed", err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, models.NewBillView(b))
}

// PayBill handles POST /tables/{table}/bill/pay requests
func (h *Handler) PayBill(w http.ResponseWriter, r *http.Request) {
	b, err := h.bill(r)
	if err != nil {
		h.writeError(w, r, "bill_payment_failed", err)
		return
	}

	var req models.PayRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	var paid int
	if req.All {
		paid = b.PayAll()
	} else {
		paid, err = b.Pay(req.OrderID, req.Item)
		if err != nil {
			h.writeError(w, r, "bill_payment_failed", err)
			return
		}
	}

	h.logger.Info("bill_paid", "Payment taken", logger.RequestID(r.Context()), map[string]interface{}{
		"table_number": b.Table(),
		"paid":         paid,
		"outstanding":  b.Outstanding(),
	})
	h.writeJSON(w, r, http.StatusOK, models.PayResponse{Paid: paid, Outstanding: b.Outstanding()})
}
