package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/fjod/go_cart/eventhub/internal/logger"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

type BreakerSettings struct {
	Name        string
	MaxFailures uint32
	OpenTimeout time.Duration
}

// BreakerStore guards remote order writes with a circuit breaker. Once
// MaxFailures consecutive calls fail, calls are rejected with
// gobreaker.ErrOpenState until OpenTimeout passes.
type BreakerStore struct {
	inner OrderWriter
	cb    *gobreaker.CircuitBreaker[*domain.Order]
}

func NewBreakerStore(inner OrderWriter, s BreakerSettings, log *slog.Logger) *BreakerStore {
	if log == nil {
		log = logger.Discard()
	}
	if s.Name == "" {
		s.Name = "order-store"
	}
	if s.MaxFailures == 0 {
		s.MaxFailures = 5
	}
	maxFailures := s.MaxFailures

	cb := gobreaker.NewCircuitBreaker[*domain.Order](gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: isBreakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &BreakerStore{inner: inner, cb: cb}
}

// Caller-side errors do not count against the remote.
func isBreakerSuccess(err error) bool {
	return err == nil ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrEmptyOrderItems) ||
		errors.Is(err, context.Canceled)
}

func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) CreateOrder(ctx context.Context, actorID string, total decimal.Decimal) (*domain.Order, error) {
	return b.cb.Execute(func() (*domain.Order, error) {
		return b.inner.CreateOrder(ctx, actorID, total)
	})
}

func (b *BreakerStore) CreateOrderItems(ctx context.Context, items []domain.OrderItem) error {
	_, err := b.cb.Execute(func() (*domain.Order, error) {
		return nil, b.inner.CreateOrderItems(ctx, items)
	})
	return err
}

// DeleteOrder bypasses the breaker: it runs as compensation right after a
// failure and must not be short-circuited by it.
func (b *BreakerStore) DeleteOrder(ctx context.Context, orderID string) error {
	return b.inner.DeleteOrder(ctx, orderID)
}

func (b *BreakerStore) PlaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	return b.cb.Execute(func() (*domain.Order, error) {
		return b.inner.PlaceOrder(ctx, order)
	})
}
