package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/fjod/go_cart/eventhub/internal/service"
)

type Dashboards interface {
	CustomerOrders(ctx context.Context, actorID string) ([]*domain.Order, error)
	VendorOrders(ctx context.Context, vendorID string) ([]*domain.VendorOrderLine, error)
	Admin(ctx context.Context) (*service.AdminDashboard, error)
}

type DashboardHandler struct {
	dashboards Dashboards
	sessions   SessionReader
	timeout    time.Duration
}

func NewDashboardHandler(dashboards Dashboards, sessions SessionReader, timeout time.Duration) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards, sessions: sessions, timeout: timeout}
}

type VendorOrderDTO struct {
	OrderID      string    `json:"order_id"`
	EventID      string    `json:"event_id"`
	EventName    string    `json:"event_name"`
	CustomerName string    `json:"customer_name"`
	Quantity     int       `json:"quantity"`
	Price        string    `json:"price"`
	OrderedAt    time.Time `json:"ordered_at"`
}

type OrderSummaryDTO struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	CustomerName string    `json:"customer_name"`
	TotalPrice   string    `json:"total_price"`
	ItemCount    int       `json:"item_count"`
	CreatedAt    time.Time `json:"created_at"`
}

type AdminDashboardDTO struct {
	Stats    domain.PlatformStats `json:"stats"`
	Profiles []*domain.Profile    `json:"profiles"`
	Events   []EventResponseDTO   `json:"events"`
	Orders   []OrderSummaryDTO    `json:"orders"`
}

// GET /api/v1/orders
func (h *DashboardHandler) CustomerOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.dashboards.CustomerOrders(ctx, h.sessions.Current().Actor.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	out := make([]OrderResponseDTO, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderResponse(o))
	}
	respondJSON(w, http.StatusOK, out)
}

// GET /api/v1/vendor/orders
func (h *DashboardHandler) VendorOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	lines, err := h.dashboards.VendorOrders(ctx, h.sessions.Current().Profile.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	out := make([]VendorOrderDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, VendorOrderDTO{
			OrderID:      l.OrderID,
			EventID:      l.EventID,
			EventName:    l.EventName,
			CustomerName: l.CustomerName,
			Quantity:     l.Quantity,
			Price:        money(l.Price),
			OrderedAt:    l.OrderedAt,
		})
	}
	respondJSON(w, http.StatusOK, out)
}

// GET /api/v1/admin/dashboard
func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	d, err := h.dashboards.Admin(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	orders := make([]OrderSummaryDTO, 0, len(d.Orders))
	for _, o := range d.Orders {
		orders = append(orders, OrderSummaryDTO{
			ID:           o.ID,
			UserID:       o.ActorID,
			CustomerName: o.CustomerName,
			TotalPrice:   money(o.TotalPrice),
			ItemCount:    o.ItemCount,
			CreatedAt:    o.CreatedAt,
		})
	}
	profiles := d.Profiles
	if profiles == nil {
		profiles = []*domain.Profile{}
	}
	respondJSON(w, http.StatusOK, AdminDashboardDTO{
		Stats:    d.Stats,
		Profiles: profiles,
		Events:   toEventResponses(d.Events),
		Orders:   orders,
	})
}
