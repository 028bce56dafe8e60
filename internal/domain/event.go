package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Event struct {
	ID          string          `json:"id"`
	VendorID    string          `json:"vendor_id"`
	VendorName  string          `json:"vendor_name,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// EventSnapshot is the denormalised copy of an event kept in a cart line.
// It is taken when the event is added and never refreshed.
type EventSnapshot struct {
	ID          string          `json:"id"`
	VendorID    string          `json:"vendor_id,omitempty"`
	VendorName  string          `json:"vendor_name,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Date        time.Time       `json:"date"`
	Price       decimal.Decimal `json:"price"`
}

func (e Event) Snapshot() EventSnapshot {
	return EventSnapshot{
		ID:          e.ID,
		VendorID:    e.VendorID,
		VendorName:  e.VendorName,
		Name:        e.Name,
		Description: e.Description,
		Date:        e.Date,
		Price:       e.Price,
	}
}
