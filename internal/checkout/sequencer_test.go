package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/eventhub/internal/cartstore"
	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/fjod/go_cart/eventhub/internal/service"
	"github.com/fjod/go_cart/eventhub/internal/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventA() domain.EventSnapshot {
	return domain.EventSnapshot{
		ID:    "A",
		Name:  "Jazz Night",
		Date:  time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
		Price: decimal.RequireFromString("20.00"),
	}
}

func eventB() domain.EventSnapshot {
	return domain.EventSnapshot{
		ID:    "B",
		Name:  "Poetry Slam",
		Date:  time.Date(2026, 12, 2, 0, 0, 0, 0, time.UTC),
		Price: decimal.RequireFromString("9.99"),
	}
}

// newCart returns a cart service backed by in-memory storage, plus the
// store so tests can inspect what was persisted.
func newCart(t *testing.T, lines ...domain.CartLine) (*service.CartService, *cartstore.Store) {
	t.Helper()
	store := cartstore.New(cartstore.NewMemoryStorage(), "", nil)
	cart := service.NewCartService(context.Background(), store, nil)
	for _, l := range lines {
		require.NoError(t, cart.AddItem(context.Background(), l.EventSnapshot, l.Quantity))
	}
	return cart, store
}

func line(s domain.EventSnapshot, q int) domain.CartLine {
	return domain.CartLine{EventSnapshot: s, Quantity: q}
}

func TestCheckout_Success(t *testing.T) {
	store := &MockStore{}
	cart, persisted := newCart(t, line(eventA(), 2))
	seq := New(store, signedIn("U1"), cart, nil)

	order, err := seq.Checkout(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "O1", order.ID)
	assert.Equal(t, "U1", order.ActorID)
	assert.Equal(t, "40.00", order.TotalPrice.StringFixed(2))
	assert.Equal(t, []string{"CreateOrder", "CreateOrderItems"}, store.calls())

	require.Len(t, store.Items, 1)
	assert.Equal(t, domain.OrderItem{
		OrderID:             "O1",
		ItemID:              "A",
		Quantity:            2,
		UnitPriceAtPurchase: decimal.RequireFromString("20.00"),
	}, store.Items[0])

	assert.Equal(t, 0, cart.Len())
	assert.True(t, persisted.Load(context.Background()).IsEmpty())
}

func TestCheckout_ItemsFailureCompensates(t *testing.T) {
	store := &MockStore{ItemsErr: errors.New("constraint violation")}
	cart, persisted := newCart(t, line(eventA(), 2))
	seq := New(store, signedIn("U1"), cart, nil)

	order, err := seq.Checkout(context.Background())
	assert.Nil(t, order)

	var itemsErr *OrderItemsCreateFailedError
	require.ErrorAs(t, err, &itemsErr)
	assert.Equal(t, "O1", itemsErr.OrderID)
	assert.EqualError(t, itemsErr.Cause, "constraint violation")
	assert.NoError(t, itemsErr.CompensationErr)
	assert.False(t, itemsErr.Orphaned())

	assert.Equal(t, []string{"CreateOrder", "CreateOrderItems", "DeleteOrder"}, store.calls())
	assert.Equal(t, []string{"O1"}, store.DeletedIDs)

	assert.Equal(t, 1, cart.Len())
	l, ok := persisted.Load(context.Background()).Line("A")
	require.True(t, ok)
	assert.Equal(t, 2, l.Quantity)
}

func TestCheckout_CompensationFailureIsAttached(t *testing.T) {
	store := &MockStore{
		ItemsErr:  errors.New("constraint violation"),
		DeleteErr: errors.New("connection reset"),
	}
	cart, _ := newCart(t, line(eventA(), 1))
	seq := New(store, signedIn("U1"), cart, nil)

	_, err := seq.Checkout(context.Background())

	var itemsErr *OrderItemsCreateFailedError
	require.ErrorAs(t, err, &itemsErr)
	assert.EqualError(t, itemsErr.Cause, "constraint violation")
	assert.EqualError(t, itemsErr.CompensationErr, "connection reset")
	assert.True(t, itemsErr.Orphaned())
	assert.Contains(t, err.Error(), "delete of order O1 also failed")
	assert.Equal(t, 1, cart.Len())
}

func TestCheckout_OrderCreateFailure(t *testing.T) {
	cause := errors.New("service unavailable")
	store := &MockStore{CreateErr: cause}
	cart, _ := newCart(t, line(eventA(), 2))
	seq := New(store, signedIn("U1"), cart, nil)

	_, err := seq.Checkout(context.Background())

	var createErr *OrderCreateFailedError
	require.ErrorAs(t, err, &createErr)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, []string{"CreateOrder"}, store.calls())
	assert.Equal(t, 1, cart.Len())
}

func TestCheckout_Unauthenticated(t *testing.T) {
	store := &MockStore{}
	cart, _ := newCart(t, line(eventA(), 2))
	seq := New(store, &MockSessions{Session: session.Session{Settled: true}}, cart, nil)

	_, err := seq.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, store.calls())
	assert.Equal(t, 1, cart.Len())
}

func TestCheckout_EmptyCart(t *testing.T) {
	store := &MockStore{}
	cart, _ := newCart(t)
	seq := New(store, signedIn("U1"), cart, nil)

	_, err := seq.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, store.calls())
}

func TestCheckout_UnauthenticatedCheckedBeforeEmpty(t *testing.T) {
	cart, _ := newCart(t)
	seq := New(&MockStore{}, &MockSessions{}, cart, nil)

	_, err := seq.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCheckout_TotalIsExact(t *testing.T) {
	store := &MockStore{}
	cart, _ := newCart(t, line(eventA(), 2), line(eventB(), 3))
	seq := New(store, signedIn("U1"), cart, nil)

	order, err := seq.Checkout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "69.97", order.TotalPrice.StringFixed(2))
	require.Len(t, order.Items, 2)
	assert.Equal(t, "A", order.Items[0].ItemID)
	assert.Equal(t, "B", order.Items[1].ItemID)
}

func TestCheckout_TransactionalPath(t *testing.T) {
	store := &MockTxStore{}
	cart, _ := newCart(t, line(eventA(), 2))
	seq := New(store, signedIn("U1"), cart, nil)

	order, err := seq.Checkout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "TX1", order.ID)
	assert.Equal(t, []string{"PlaceOrder"}, store.calls())
	require.Len(t, order.Items, 1)
	assert.Equal(t, "TX1", order.Items[0].OrderID)
	assert.Equal(t, 0, cart.Len())
}

func TestCheckout_TransactionalFailure(t *testing.T) {
	store := &MockTxStore{PlaceErr: errors.New("serialization failure")}
	cart, _ := newCart(t, line(eventA(), 2))
	seq := New(store, signedIn("U1"), cart, nil)

	_, err := seq.Checkout(context.Background())

	var createErr *OrderCreateFailedError
	require.ErrorAs(t, err, &createErr)
	assert.Equal(t, []string{"PlaceOrder"}, store.calls())
	assert.Equal(t, 1, cart.Len())
}

func TestCheckout_TransactionalDisabled(t *testing.T) {
	store := &MockTxStore{}
	cart, _ := newCart(t, line(eventA(), 2))
	seq := New(store, signedIn("U1"), cart, nil, WithTransactional(false))

	order, err := seq.Checkout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "O1", order.ID)
	assert.Equal(t, []string{"CreateOrder", "CreateOrderItems"}, store.calls())
}

func TestCheckout_ConcurrentCheckoutRejected(t *testing.T) {
	store := &MockStore{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	cart, _ := newCart(t, line(eventA(), 2))
	seq := New(store, signedIn("U1"), cart, nil)

	var (
		wg       sync.WaitGroup
		firstErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = seq.Checkout(context.Background())
	}()
	<-store.entered

	_, err := seq.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrCheckoutInProgress)

	close(store.block)
	wg.Wait()
	require.NoError(t, firstErr)
	assert.Equal(t, []string{"CreateOrder", "CreateOrderItems"}, store.calls())

	// The guard is released once the first checkout finishes.
	_, err = seq.Checkout(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestCheckout_NotifierReceivesOrder(t *testing.T) {
	notifier := &MockNotifier{}
	cart, _ := newCart(t, line(eventA(), 2))
	seq := New(&MockStore{}, signedIn("U1"), cart, nil, WithNotifier(notifier))

	order, err := seq.Checkout(context.Background())
	require.NoError(t, err)
	require.Len(t, notifier.Orders, 1)
	assert.Equal(t, order.ID, notifier.Orders[0].ID)
}

func TestCheckout_NotifierFailureIsNotFatal(t *testing.T) {
	notifier := &MockNotifier{Err: errors.New("broker down")}
	cart, _ := newCart(t, line(eventA(), 2))
	seq := New(&MockStore{}, signedIn("U1"), cart, nil, WithNotifier(notifier))

	order, err := seq.Checkout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "O1", order.ID)
	assert.Equal(t, 0, cart.Len())
}

func TestCheckout_NoNotifyOnFailure(t *testing.T) {
	notifier := &MockNotifier{}
	cart, _ := newCart(t, line(eventA(), 2))
	seq := New(&MockStore{CreateErr: errors.New("down")}, signedIn("U1"), cart, nil, WithNotifier(notifier))

	_, err := seq.Checkout(context.Background())
	require.Error(t, err)
	assert.Empty(t, notifier.Orders)
}

func TestCheckout_RetryAfterFailureRecomputes(t *testing.T) {
	store := &MockStore{CreateErr: errors.New("down")}
	cart, _ := newCart(t, line(eventA(), 1))
	seq := New(store, signedIn("U1"), cart, nil)

	_, err := seq.Checkout(context.Background())
	require.Error(t, err)

	require.NoError(t, cart.AddItem(context.Background(), eventA(), 1))
	store.CreateErr = nil
	order, err := seq.Checkout(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "40.00", order.TotalPrice.StringFixed(2))
}
