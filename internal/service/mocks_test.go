package service

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/eventhub/internal/cache"
	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/fjod/go_cart/eventhub/internal/repository"
)

type mockCartStore struct {
	m      sync.Mutex
	loaded *domain.Cart
	saved  []*domain.Cart
	err    error
}

func (m *mockCartStore) Load(context.Context) *domain.Cart {
	if m.loaded == nil {
		return domain.NewCart()
	}
	return m.loaded.Clone()
}

func (m *mockCartStore) Save(_ context.Context, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, cart.Clone())
	return nil
}

func (m *mockCartStore) last() *domain.Cart {
	m.m.Lock()
	defer m.m.Unlock()
	if len(m.saved) == 0 {
		return nil
	}
	return m.saved[len(m.saved)-1]
}

type mockEventRepo struct {
	m         sync.Mutex
	events    map[string]*domain.Event
	order     []string
	listErr   error
	listCalls int
	// afterList runs once a list read has been taken, outside the lock.
	afterList func()
}

func newMockEventRepo(events ...*domain.Event) *mockEventRepo {
	r := &mockEventRepo{events: map[string]*domain.Event{}}
	for _, e := range events {
		r.events[e.ID] = e
		r.order = append(r.order, e.ID)
	}
	return r
}

func (r *mockEventRepo) ListEvents(context.Context) ([]*domain.Event, error) {
	r.m.Lock()
	r.listCalls++
	if r.listErr != nil {
		r.m.Unlock()
		return nil, r.listErr
	}
	out := make([]*domain.Event, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.events[id])
	}
	hook := r.afterList
	r.afterList = nil
	r.m.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (r *mockEventRepo) ListEventsByVendor(_ context.Context, vendorID string) ([]*domain.Event, error) {
	r.m.Lock()
	defer r.m.Unlock()
	var out []*domain.Event
	for _, id := range r.order {
		if r.events[id].VendorID == vendorID {
			out = append(out, r.events[id])
		}
	}
	return out, nil
}

func (r *mockEventRepo) GetEvent(_ context.Context, id string) (*domain.Event, error) {
	r.m.Lock()
	defer r.m.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *mockEventRepo) CreateEvent(_ context.Context, e *domain.Event) (*domain.Event, error) {
	r.m.Lock()
	defer r.m.Unlock()
	cp := *e
	cp.ID = "E" + string(rune('0'+len(r.order)+1))
	r.events[cp.ID] = &cp
	r.order = append(r.order, cp.ID)
	return &cp, nil
}

func (r *mockEventRepo) UpdateEvent(_ context.Context, e *domain.Event) (*domain.Event, error) {
	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.events[e.ID]; !ok {
		return nil, repository.ErrEventNotFound
	}
	cp := *e
	r.events[e.ID] = &cp
	return &cp, nil
}

func (r *mockEventRepo) DeleteEvent(_ context.Context, id string) error {
	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.events[id]; !ok {
		return repository.ErrEventNotFound
	}
	delete(r.events, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

type mockEventCache struct {
	m       sync.Mutex
	events  []*domain.Event
	hit     bool
	getErr  error
	sets    int
	deletes int
}

func (c *mockEventCache) Get(context.Context) ([]*domain.Event, error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	if !c.hit {
		return nil, cache.ErrCacheMiss
	}
	return c.events, nil
}

func (c *mockEventCache) Set(_ context.Context, events []*domain.Event) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.sets++
	c.events = events
	c.hit = true
	return nil
}

func (c *mockEventCache) Delete(context.Context) error {
	c.m.Lock()
	defer c.m.Unlock()
	c.deletes++
	c.hit = false
	c.events = nil
	return nil
}

func (c *mockEventCache) setCount() int {
	c.m.Lock()
	defer c.m.Unlock()
	return c.sets
}

type mockDashboardRepo struct {
	stats     domain.PlatformStats
	lines     []*domain.VendorOrderLine
	summaries []*domain.OrderSummary
	profiles  []*domain.Profile
	orders    []*domain.Order
	err       error
}

func (r *mockDashboardRepo) ListVendorOrders(_ context.Context, vendorID string) ([]*domain.VendorOrderLine, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.lines, nil
}

func (r *mockDashboardRepo) ListOrderSummaries(context.Context) ([]*domain.OrderSummary, error) {
	return r.summaries, nil
}

func (r *mockDashboardRepo) PlatformStats(context.Context) (domain.PlatformStats, error) {
	if r.err != nil {
		return domain.PlatformStats{}, r.err
	}
	return r.stats, nil
}

func (r *mockDashboardRepo) GetProfile(_ context.Context, id string) (*domain.Profile, error) {
	for _, p := range r.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (r *mockDashboardRepo) ListProfiles(context.Context) ([]*domain.Profile, error) {
	return r.profiles, nil
}

func (r *mockDashboardRepo) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, repository.ErrOrderNotFound
}

func (r *mockDashboardRepo) ListOrdersByActor(_ context.Context, actorID string) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range r.orders {
		if o.ActorID == actorID {
			out = append(out, o)
		}
	}
	return out, nil
}
