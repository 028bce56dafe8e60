package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/eventhub/internal/domain"
)

type CheckoutRunner interface {
	Checkout(ctx context.Context) (*domain.Order, error)
}

type CheckoutHandler struct {
	checkout CheckoutRunner
	timeout  time.Duration
}

func NewCheckoutHandler(checkout CheckoutRunner, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkout, timeout: timeout}
}

type OrderItemDTO struct {
	EventID  string `json:"event_id"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

type OrderResponseDTO struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	TotalPrice string         `json:"total_price"`
	CreatedAt  time.Time      `json:"created_at"`
	Items      []OrderItemDTO `json:"items"`
}

func toOrderResponse(o *domain.Order) OrderResponseDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemDTO{EventID: it.ItemID, Quantity: it.Quantity, Price: money(it.UnitPriceAtPurchase)})
	}
	return OrderResponseDTO{
		ID:         o.ID,
		UserID:     o.ActorID,
		TotalPrice: money(o.TotalPrice),
		CreatedAt:  o.CreatedAt,
		Items:      items,
	}
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.checkout.Checkout(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toOrderResponse(order))
}
