package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fjod/go_cart/eventhub/internal/checkout"
	"github.com/fjod/go_cart/eventhub/internal/repository"
	"github.com/fjod/go_cart/eventhub/internal/service"
	"github.com/fjod/go_cart/eventhub/internal/session"
	"github.com/sony/gobreaker/v2"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func respondErrorDetails(w http.ResponseWriter, status int, code, message, details string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst interface{}) bool {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request_too_large", "request body too large")
			return false
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

// handleServiceError maps domain errors to HTTP status codes.
func handleServiceError(w http.ResponseWriter, err error) {
	var (
		createErr *checkout.OrderCreateFailedError
		itemsErr  *checkout.OrderItemsCreateFailedError
	)

	switch {
	case errors.Is(err, checkout.ErrUnauthenticated):
		respondError(w, http.StatusUnauthorized, "unauthenticated", "sign in to check out")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusUnprocessableEntity, "empty_cart", "cart is empty, nothing to checkout")
	case errors.Is(err, checkout.ErrCheckoutInProgress):
		respondError(w, http.StatusConflict, "checkout_in_progress", "a checkout is already running")
	case errors.As(err, &itemsErr):
		details := "no order was placed, please retry"
		if itemsErr.Orphaned() {
			details = "order " + itemsErr.OrderID + " was created without items and needs cleanup"
		}
		respondErrorDetails(w, http.StatusBadGateway, "order_items_create_failed", "failed to save order items", details)
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "order store is unavailable, retry later")
	case errors.As(err, &createErr):
		respondErrorDetails(w, http.StatusBadGateway, "order_create_failed", "failed to create order", "no order was placed, please retry")
	case errors.Is(err, session.ErrExpiredToken):
		respondError(w, http.StatusUnauthorized, "token_expired", "session token expired")
	case errors.Is(err, session.ErrInvalidToken):
		respondError(w, http.StatusUnauthorized, "invalid_token", "session token is not valid")
	case errors.Is(err, service.ErrInvalidEvent):
		respondError(w, http.StatusBadRequest, "invalid_event", err.Error())
	case errors.Is(err, service.ErrForbidden):
		respondError(w, http.StatusForbidden, "permission_denied", err.Error())
	case errors.Is(err, repository.ErrEventNotFound):
		respondError(w, http.StatusNotFound, "not_found", "event not found")
	case errors.Is(err, repository.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", "order not found")
	case errors.Is(err, repository.ErrEventHasOrders):
		respondError(w, http.StatusConflict, "event_has_orders", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
