package checkout

import (
	"context"
	"log/slog"

	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/fjod/go_cart/eventhub/internal/logger"
	"github.com/fjod/go_cart/eventhub/internal/session"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// OrderStore is the remote store the order is written to.
type OrderStore interface {
	CreateOrder(ctx context.Context, actorID string, total decimal.Decimal) (*domain.Order, error)
	CreateOrderItems(ctx context.Context, items []domain.OrderItem) error
	DeleteOrder(ctx context.Context, orderID string) error
}

// TransactionalStore writes an order with its items atomically.
type TransactionalStore interface {
	PlaceOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
}

type SessionProvider interface {
	Current() session.Session
}

type Cart interface {
	Snapshot() *domain.Cart
	Clear(ctx context.Context) error
}

// Notifier is told about every placed order. Failures are logged only.
type Notifier interface {
	OrderPlaced(ctx context.Context, order *domain.Order) error
}

type Option func(*Sequencer)

func WithNotifier(n Notifier) Option {
	return func(s *Sequencer) { s.notifier = n }
}

// WithTransactional toggles PlaceOrder when the store supports it.
func WithTransactional(enabled bool) Option {
	return func(s *Sequencer) { s.transactional = enabled }
}

// Sequencer converts the device cart into a persisted order.
type Sequencer struct {
	store         OrderStore
	sessions      SessionProvider
	cart          Cart
	notifier      Notifier
	transactional bool
	guard         *inflight
	log           *slog.Logger
}

func New(store OrderStore, sessions SessionProvider, cart Cart, log *slog.Logger, opts ...Option) *Sequencer {
	if log == nil {
		log = logger.Discard()
	}
	s := &Sequencer{
		store:         store,
		sessions:      sessions,
		cart:          cart,
		transactional: true,
		guard:         newInflight(),
		log:           log.With("component", "checkout"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout places an order for the current actor from a snapshot of the
// cart and clears the cart on success. On any failure the cart is left
// as it was.
func (s *Sequencer) Checkout(ctx context.Context) (*domain.Order, error) {
	ctx, span := otel.Tracer("eventhub/checkout").Start(ctx, "checkout")
	defer span.End()

	order, err := s.checkout(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("order.id", order.ID))
	return order, nil
}

func (s *Sequencer) checkout(ctx context.Context) (*domain.Order, error) {
	actor := s.sessions.Current().Actor
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	if !s.guard.acquire(actor.ID) {
		return nil, ErrCheckoutInProgress
	}
	defer s.guard.release(actor.ID)

	cart := s.cart.Snapshot()
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	total := cart.Total()

	log := s.log.With("actor_id", actor.ID)
	log.InfoContext(ctx, "checkout started", "lines", cart.Len(), "total", total.StringFixed(2))

	var (
		order *domain.Order
		err   error
	)
	if ts, ok := s.store.(TransactionalStore); ok && s.transactional {
		order, err = s.placeTransactional(ctx, ts, actor.ID, cart, total)
	} else {
		order, err = s.placeInSequence(ctx, log, actor.ID, cart, total)
	}
	if err != nil {
		log.ErrorContext(ctx, "checkout failed", "error", err)
		return nil, err
	}

	// The order exists at this point; a failed save of the empty cart
	// does not undo it.
	if errClear := s.cart.Clear(ctx); errClear != nil {
		log.ErrorContext(ctx, "cart clear after checkout failed", "order_id", order.ID, "error", errClear)
	}
	log.InfoContext(ctx, "checkout completed", "order_id", order.ID)

	s.notify(ctx, order)
	return order, nil
}

func (s *Sequencer) notify(ctx context.Context, order *domain.Order) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.OrderPlaced(ctx, order); err != nil {
		s.log.WarnContext(ctx, "order notification failed", "order_id", order.ID, "error", err)
	}
}

func orderItems(orderID string, cart *domain.Cart) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, cart.Len())
	for _, line := range cart.Lines {
		items = append(items, domain.OrderItem{
			OrderID:             orderID,
			ItemID:              line.ItemID(),
			Quantity:            line.Quantity,
			UnitPriceAtPurchase: line.Price,
		})
	}
	return items
}
