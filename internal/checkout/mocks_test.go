package checkout

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/fjod/go_cart/eventhub/internal/session"
	"github.com/shopspring/decimal"
)

// MockStore records every remote call in order.
type MockStore struct {
	mu         sync.Mutex
	Calls      []string
	CreateErr  error
	ItemsErr   error
	DeleteErr  error
	Created    *domain.Order
	Items      []domain.OrderItem
	DeletedIDs []string

	// block, when set, holds CreateOrder until closed.
	block chan struct{}
	// entered is signalled once CreateOrder is reached.
	entered chan struct{}
}

func (m *MockStore) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *MockStore) CreateOrder(_ context.Context, actorID string, total decimal.Decimal) (*domain.Order, error) {
	m.record("CreateOrder")
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = &domain.Order{ID: "O1", ActorID: actorID, TotalPrice: total}
	return &domain.Order{ID: "O1", ActorID: actorID, TotalPrice: total}, nil
}

func (m *MockStore) CreateOrderItems(_ context.Context, items []domain.OrderItem) error {
	m.record("CreateOrderItems")
	if m.ItemsErr != nil {
		return m.ItemsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Items = items
	return nil
}

func (m *MockStore) DeleteOrder(_ context.Context, orderID string) error {
	m.record("DeleteOrder")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeletedIDs = append(m.DeletedIDs, orderID)
	return m.DeleteErr
}

func (m *MockStore) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Calls...)
}

// MockTxStore adds the transactional path on top of MockStore.
type MockTxStore struct {
	MockStore
	PlaceErr error
	Placed   *domain.Order
}

func (m *MockTxStore) PlaceOrder(_ context.Context, order *domain.Order) (*domain.Order, error) {
	m.record("PlaceOrder")
	if m.PlaceErr != nil {
		return nil, m.PlaceErr
	}
	placed := *order
	placed.ID = "TX1"
	placed.Items = make([]domain.OrderItem, len(order.Items))
	for i, item := range order.Items {
		item.OrderID = placed.ID
		placed.Items[i] = item
	}
	m.Placed = &placed
	return &placed, nil
}

type MockSessions struct {
	Session session.Session
}

func (m *MockSessions) Current() session.Session {
	return m.Session
}

func signedIn(actorID string) *MockSessions {
	return &MockSessions{Session: session.Session{
		Actor:   &session.Actor{ID: actorID},
		Profile: &domain.Profile{ID: actorID, Role: domain.RoleUser},
		Settled: true,
	}}
}

type MockNotifier struct {
	mu     sync.Mutex
	Orders []*domain.Order
	Err    error
}

func (m *MockNotifier) OrderPlaced(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Orders = append(m.Orders, order)
	return m.Err
}
