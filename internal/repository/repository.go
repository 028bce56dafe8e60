package repository

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrEventNotFound   = errors.New("event not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrEventHasOrders  = errors.New("event has orders and cannot be deleted")
	ErrEmptyOrderItems = errors.New("no order items to insert")
)

type Credentials struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// OrderWriter is the remote write surface used by checkout.
type OrderWriter interface {
	CreateOrder(ctx context.Context, actorID string, total decimal.Decimal) (*domain.Order, error)
	CreateOrderItems(ctx context.Context, items []domain.OrderItem) error
	DeleteOrder(ctx context.Context, orderID string) error
	PlaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
}

type OrderReader interface {
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrdersByActor(ctx context.Context, actorID string) ([]*domain.Order, error)
}

type EventRepository interface {
	ListEvents(ctx context.Context) ([]*domain.Event, error)
	ListEventsByVendor(ctx context.Context, vendorID string) ([]*domain.Event, error)
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	CreateEvent(ctx context.Context, event *domain.Event) (*domain.Event, error)
	UpdateEvent(ctx context.Context, event *domain.Event) (*domain.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

type ProfileRepository interface {
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	ListProfiles(ctx context.Context) ([]*domain.Profile, error)
}

type DashboardRepository interface {
	ListVendorOrders(ctx context.Context, vendorID string) ([]*domain.VendorOrderLine, error)
	ListOrderSummaries(ctx context.Context) ([]*domain.OrderSummary, error)
	PlatformStats(ctx context.Context) (domain.PlatformStats, error)
}
