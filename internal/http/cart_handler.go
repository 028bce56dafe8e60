package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type CartManager interface {
	AddItem(ctx context.Context, snapshot domain.EventSnapshot, quantity int) error
	RemoveItem(ctx context.Context, itemID string) error
	UpdateQuantity(ctx context.Context, itemID string, quantity int) error
	Clear(ctx context.Context) error
	Snapshot() *domain.Cart
}

type EventLookup interface {
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
}

type CartHandler struct {
	cart    CartManager
	events  EventLookup
	timeout time.Duration
	maxBody int64
}

func NewCartHandler(cart CartManager, events EventLookup, timeout time.Duration, maxBody int64) *CartHandler {
	return &CartHandler{cart: cart, events: events, timeout: timeout, maxBody: maxBody}
}

type AddItemRequestDTO struct {
	EventID  string `json:"event_id"`
	Quantity *int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CartLineDTO struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	VendorName string    `json:"vendor_name,omitempty"`
	Date       time.Time `json:"date"`
	Price      string    `json:"price"`
	Quantity   int       `json:"quantity"`
	Subtotal   string    `json:"subtotal"`
}

type CartResponseDTO struct {
	Items []CartLineDTO `json:"items"`
	Total string        `json:"total"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toCartResponse(cart *domain.Cart) CartResponseDTO {
	items := make([]CartLineDTO, 0, cart.Len())
	for _, l := range cart.Lines {
		items = append(items, CartLineDTO{
			ID:         l.ItemID(),
			Name:       l.Name,
			VendorName: l.VendorName,
			Date:       l.Date,
			Price:      money(l.Price),
			Quantity:   l.Quantity,
			Subtotal:   money(l.Subtotal()),
		})
	}
	return CartResponseDTO{Items: items, Total: money(cart.Total())}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, toCartResponse(h.cart.Snapshot()))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}
	if req.EventID == "" {
		respondError(w, http.StatusBadRequest, "invalid_event_id", "event_id is required")
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	event, err := h.events.GetEvent(ctx, req.EventID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if err := h.cart.AddItem(ctx, event.Snapshot(), quantity); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, toCartResponse(h.cart.Snapshot()))
}

// PUT /api/v1/cart/items/{event_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateQuantityRequestDTO
	if !decodeJSON(w, r, h.maxBody, &req) {
		return
	}

	if err := h.cart.UpdateQuantity(ctx, chi.URLParam(r, "event_id"), req.Quantity); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(h.cart.Snapshot()))
}

// DELETE /api/v1/cart/items/{event_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.cart.RemoveItem(ctx, chi.URLParam(r, "event_id")); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(h.cart.Snapshot()))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.cart.Clear(ctx); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toCartResponse(h.cart.Snapshot()))
}
