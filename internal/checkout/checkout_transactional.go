package checkout

import (
	"context"

	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/shopspring/decimal"
)

func (s *Sequencer) placeTransactional(ctx context.Context, store TransactionalStore, actorID string, cart *domain.Cart, total decimal.Decimal) (*domain.Order, error) {
	order, err := store.PlaceOrder(ctx, &domain.Order{
		ActorID:    actorID,
		TotalPrice: total,
		Items:      orderItems("", cart),
	})
	if err != nil {
		return nil, &OrderCreateFailedError{Cause: err}
	}
	return order, nil
}
