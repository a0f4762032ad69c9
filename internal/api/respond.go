package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"restaurant-hub/internal/hub"
	"restaurant-hub/internal/inventory"
	"restaurant-hub/internal/logger"
	"restaurant-hub/internal/menu"
	"restaurant-hub/internal/order"
	"restaurant-hub/internal/staff"
)

var errContentType = errors.New("content type must be application/json")

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, hub.ErrUnknownActor),
		errors.Is(err, staff.ErrUnknownOrder),
		errors.Is(err, menu.ErrUnknownItem),
		errors.Is(err, inventory.ErrUnknownIngredient),
		errors.Is(err, order.ErrUnknownTable),
		errors.Is(err, order.ErrUnknownOrder):
		return http.StatusNotFound
	case errors.Is(err, staff.ErrUnableToComplete),
		errors.Is(err, inventory.ErrInsufficientStock),
		errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, menu.ErrDuplicateItem),
		errors.Is(err, staff.ErrNoDraft),
		errors.Is(err, errWrongRole),
		errors.Is(err, errNoSupervisor):
		return http.StatusConflict
	case errors.Is(err, staff.ErrEmptyOrder),
		errors.Is(err, menu.ErrInvalidItem),
		errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, order.ErrItemIndex),
		errors.Is(err, staff.ErrUnknownRole):
		return http.StatusBadRequest
	case errors.Is(err, hub.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and writes it with the status statusFor picks. Internal
// errors are not echoed to the client.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, action string, err error) {
	status := statusFor(err)
	requestID := logger.RequestID(r.Context())

	if status == http.StatusInternalServerError {
		h.logger.Error(action, "Request failed", requestID, err, map[string]interface{}{
			"path": r.URL.Path,
		})
		h.writeErrorResponse(w, r, status, "Internal server error")
		return
	}

	h.logger.Debug(action, err.Error(), requestID, map[string]interface{}{
		"path":        r.URL.Path,
		"status_code": status,
	})
	h.writeErrorResponse(w, r, status, err.Error())
}

// writeErrorResponse writes an error response in JSON format
func (h *Handler) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, message string) {
	h.writeJSON(w, r, statusCode, map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": logger.RequestID(r.Context()),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", logger.RequestID(r.Context()), err, nil)
	}
}

// decodeJSON reads a JSON body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v interface{}) error {
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return errContentType
	}
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON format: %w", err)
	}
	return nil
}
