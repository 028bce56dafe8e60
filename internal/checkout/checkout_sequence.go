package checkout

import (
	"context"
	"log/slog"
	"time"

	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/shopspring/decimal"
)

// placeInSequence writes the header, then the items in one bulk call. If
// the items fail the header is deleted again.
func (s *Sequencer) placeInSequence(ctx context.Context, log *slog.Logger, actorID string, cart *domain.Cart, total decimal.Decimal) (*domain.Order, error) {
	order, err := s.store.CreateOrder(ctx, actorID, total)
	if err != nil {
		return nil, &OrderCreateFailedError{Cause: err}
	}

	items := orderItems(order.ID, cart)
	if err := s.store.CreateOrderItems(ctx, items); err != nil {
		failure := &OrderItemsCreateFailedError{OrderID: order.ID, Cause: err}
		if errDel := s.compensate(ctx, order.ID); errDel != nil {
			log.WarnContext(ctx, "order left without items", "order_id", order.ID, "error", errDel)
			failure.CompensationErr = errDel
		}
		return nil, failure
	}

	order.Items = items
	return order, nil
}

const compensationTimeout = 5 * time.Second

// compensate runs even if ctx was cancelled mid-checkout.
func (s *Sequencer) compensate(ctx context.Context, orderID string) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()
	return s.store.DeleteOrder(ctx, orderID)
}
