package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/eventhub/internal/cartstore"
	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/fjod/go_cart/eventhub/internal/logger"
	"github.com/fjod/go_cart/eventhub/internal/repository"
	"github.com/fjod/go_cart/eventhub/internal/service"
	"github.com/fjod/go_cart/eventhub/internal/session"
	"github.com/shopspring/decimal"
)

type mockSessions struct {
	current  session.Session
	signIn   session.Session
	signErr  error
	tokens   []string
	signOuts int
}

func (m *mockSessions) Current() session.Session { return m.current }

func (m *mockSessions) SignIn(_ context.Context, token string) (session.Session, error) {
	m.tokens = append(m.tokens, token)
	if m.signErr != nil {
		return m.current, m.signErr
	}
	m.current = m.signIn
	return m.current, nil
}

func (m *mockSessions) SignOut() {
	m.signOuts++
	m.current = session.Session{Settled: true}
}

func as(role domain.Role, id string) *mockSessions {
	return &mockSessions{current: session.Session{
		Actor:   &session.Actor{ID: id},
		Profile: &domain.Profile{ID: id, FullName: "Test " + id, Role: role},
		Settled: true,
	}}
}

func anonymous() *mockSessions {
	return &mockSessions{current: session.Session{Settled: true}}
}

type mockLookup struct {
	events map[string]*domain.Event
}

func (m *mockLookup) GetEvent(_ context.Context, id string) (*domain.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	return e, nil
}

func catalogue() *mockLookup {
	return &mockLookup{events: map[string]*domain.Event{
		"A": {ID: "A", VendorID: "V1", VendorName: "Vera Events", Name: "Jazz Night",
			Date: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("20.00")},
		"B": {ID: "B", VendorID: "V1", VendorName: "Vera Events", Name: "Poetry Slam",
			Date: time.Date(2026, 12, 2, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString("9.99")},
	}}
}

func newCart() *service.CartService {
	store := cartstore.New(cartstore.NewMemoryStorage(), "", nil)
	return service.NewCartService(context.Background(), store, nil)
}

type mockCheckout struct {
	order *domain.Order
	err   error
	calls int
}

func (m *mockCheckout) Checkout(context.Context) (*domain.Order, error) {
	m.calls++
	return m.order, m.err
}

type mockCatalog struct {
	events    []*domain.Event
	err       error
	lastInput service.EventInput
	lastID    string
	editor    *domain.Profile
}

func (m *mockCatalog) ListEvents(context.Context) ([]*domain.Event, error) {
	return m.events, m.err
}

func (m *mockCatalog) ListVendorEvents(_ context.Context, vendorID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range m.events {
		if e.VendorID == vendorID {
			out = append(out, e)
		}
	}
	return out, m.err
}

func (m *mockCatalog) CreateEvent(_ context.Context, vendor *domain.Profile, in service.EventInput) (*domain.Event, error) {
	m.editor = vendor
	m.lastInput = in
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Event{ID: "NEW", VendorID: vendor.ID, Name: in.Name,
		Date: time.Date(2026, 12, 24, 0, 0, 0, 0, time.UTC), Price: decimal.RequireFromString(in.Price)}, nil
}

func (m *mockCatalog) UpdateEvent(_ context.Context, editor *domain.Profile, id string, in service.EventInput) (*domain.Event, error) {
	m.editor = editor
	m.lastID = id
	m.lastInput = in
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Event{ID: id, VendorID: editor.ID, Name: in.Name, Price: decimal.RequireFromString(in.Price)}, nil
}

func (m *mockCatalog) DeleteEvent(_ context.Context, editor *domain.Profile, id string) error {
	m.editor = editor
	m.lastID = id
	return m.err
}

type mockDashboards struct {
	orders   []*domain.Order
	lines    []*domain.VendorOrderLine
	admin    *service.AdminDashboard
	err      error
	actorID  string
	vendorID string
}

func (m *mockDashboards) CustomerOrders(_ context.Context, actorID string) ([]*domain.Order, error) {
	m.actorID = actorID
	return m.orders, m.err
}

func (m *mockDashboards) VendorOrders(_ context.Context, vendorID string) ([]*domain.VendorOrderLine, error) {
	m.vendorID = vendorID
	return m.lines, m.err
}

func (m *mockDashboards) Admin(context.Context) (*service.AdminDashboard, error) {
	return m.admin, m.err
}

type testDeps struct {
	sessions   *mockSessions
	cart       *service.CartService
	lookup     *mockLookup
	checkout   *mockCheckout
	catalog    *mockCatalog
	dashboards *mockDashboards
}

func newTestDeps(sessions *mockSessions) *testDeps {
	return &testDeps{
		sessions:   sessions,
		cart:       newCart(),
		lookup:     catalogue(),
		checkout:   &mockCheckout{},
		catalog:    &mockCatalog{},
		dashboards: &mockDashboards{},
	}
}

func (d *testDeps) router() http.Handler {
	return NewRouter(RouterConfig{RequestTimeout: 5 * time.Second, MaxRequestBodySize: 1 << 20}, Handlers{
		Sessions:   d.sessions,
		Cart:       d.cart,
		Events:     d.catalog,
		Lookup:     d.lookup,
		Checkout:   d.checkout,
		Dashboards: d.dashboards,
	}, logger.Discard())
}
