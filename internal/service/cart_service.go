package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/fjod/go_cart/eventhub/internal/logger"
	"github.com/shopspring/decimal"
)

// CartStore persists the whole cart on every change.
type CartStore interface {
	Load(ctx context.Context) *domain.Cart
	Save(ctx context.Context, cart *domain.Cart) error
}

// CartService owns the device cart. Each mutation is applied in memory and
// then saved; a save error is returned but the in-memory change stays.
type CartService struct {
	mu    sync.Mutex
	cart  *domain.Cart
	store CartStore
	log   *slog.Logger
}

func NewCartService(ctx context.Context, store CartStore, log *slog.Logger) *CartService {
	if log == nil {
		log = logger.Discard()
	}
	return &CartService{
		cart:  store.Load(ctx),
		store: store,
		log:   log.With("component", "cart"),
	}
}

func (s *CartService) AddItem(ctx context.Context, snapshot domain.EventSnapshot, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Add(snapshot, quantity)
	return s.save(ctx, "add", snapshot.ID)
}

func (s *CartService) RemoveItem(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Remove(itemID)
	return s.save(ctx, "remove", itemID)
}

// UpdateQuantity sets an absolute quantity. Zero or less removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.SetQuantity(itemID, quantity)
	return s.save(ctx, "update", itemID)
}

func (s *CartService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Clear()
	return s.save(ctx, "clear", "")
}

func (s *CartService) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Total()
}

// Snapshot returns a copy of the cart that later mutations do not affect.
func (s *CartService) Snapshot() *domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *CartService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Len()
}

func (s *CartService) save(ctx context.Context, op, itemID string) error {
	if err := s.store.Save(ctx, s.cart); err != nil {
		s.log.ErrorContext(ctx, "cart save failed", "op", op, "item_id", itemID, "error", err)
		return err
	}
	return nil
}
