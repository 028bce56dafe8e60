package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"user_id"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
	Items      []OrderItem     `json:"items,omitempty"`
}

// OrderItem.UnitPriceAtPurchase comes from the cart snapshot, not the live event.
type OrderItem struct {
	OrderID             string          `json:"order_id"`
	ItemID              string          `json:"event_id"`
	Quantity            int             `json:"quantity"`
	UnitPriceAtPurchase decimal.Decimal `json:"price"`
}

// VendorOrderLine is an order item on one of the vendor's events.
type VendorOrderLine struct {
	OrderID      string          `json:"order_id"`
	EventID      string          `json:"event_id"`
	EventName    string          `json:"event_name"`
	CustomerName string          `json:"customer_name"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	OrderedAt    time.Time       `json:"ordered_at"`
}

type OrderSummary struct {
	Order
	CustomerName string `json:"customer_name"`
	ItemCount    int    `json:"item_count"`
}

type PlatformStats struct {
	Users  int `json:"users"`
	Events int `json:"events"`
	Orders int `json:"orders"`
}
