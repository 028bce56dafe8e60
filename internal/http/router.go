package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/fjod/go_cart/eventhub/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type RouterConfig struct {
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

type Handlers struct {
	Sessions   SessionManager
	Cart       CartManager
	Events     EventCatalog
	Lookup     EventLookup
	Checkout   CheckoutRunner
	Dashboards Dashboards
}

// NewRouter wires every route. Role checks run against the device session.
func NewRouter(cfg RouterConfig, h Handlers, log *slog.Logger) http.Handler {
	sessionHandler := NewSessionHandler(h.Sessions, cfg.RequestTimeout, cfg.MaxRequestBodySize)
	cartHandler := NewCartHandler(h.Cart, h.Lookup, cfg.RequestTimeout, cfg.MaxRequestBodySize)
	checkoutHandler := NewCheckoutHandler(h.Checkout, cfg.RequestTimeout)
	eventHandler := NewEventHandler(h.Events, h.Sessions, cfg.RequestTimeout, cfg.MaxRequestBodySize)
	dashboardHandler := NewDashboardHandler(h.Dashboards, h.Sessions, cfg.RequestTimeout)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(RequestLogger(log))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", sessionHandler.GetSession)
			r.Post("/", sessionHandler.SignIn)
			r.Delete("/", sessionHandler.SignOut)
		})

		r.Get("/events", eventHandler.ListEvents)

		r.Route("/cart", func(r chi.Router) {
			r.Post("/items", cartHandler.AddItem)
			r.Group(func(r chi.Router) {
				r.Use(RequireRole(h.Sessions, session.AreaCart))
				r.Get("/", cartHandler.GetCart)
				r.Put("/items/{event_id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{event_id}", cartHandler.RemoveItem)
				r.Delete("/", cartHandler.ClearCart)
			})
		})

		r.With(RequireRole(h.Sessions, session.AreaCart)).Post("/checkout", checkoutHandler.Checkout)
		r.With(RequireRole(h.Sessions, session.AreaCustomerOrders)).Get("/orders", dashboardHandler.CustomerOrders)

		r.Route("/vendor", func(r chi.Router) {
			r.Use(RequireRole(h.Sessions, session.AreaVendorDashboard))
			r.Get("/events", eventHandler.ListVendorEvents)
			r.Post("/events", eventHandler.CreateEvent)
			r.Put("/events/{id}", eventHandler.UpdateEvent)
			r.Delete("/events/{id}", eventHandler.DeleteEvent)
			r.Get("/orders", dashboardHandler.VendorOrders)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireRole(h.Sessions, session.AreaAdminDashboard))
			r.Get("/dashboard", dashboardHandler.Admin)
		})
	})

	return otelhttp.NewHandler(r, "eventhub-http")
}
