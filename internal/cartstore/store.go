package cartstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/fjod/go_cart/eventhub/internal/logger"
)

// CartKey is the fixed storage key of the device cart.
const CartKey = "eventhub_cart"

var ErrNotFound = errors.New("storage key not found")

// Storage is the device-local key/value area the cart is mirrored into.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

type Store struct {
	storage Storage
	key     string
	log     *slog.Logger
}

// New scopes the cart key with namespace when one is given.
func New(storage Storage, namespace string, log *slog.Logger) *Store {
	if log == nil {
		log = logger.Discard()
	}
	key := CartKey
	if namespace != "" {
		key = namespace + ":" + CartKey
	}
	return &Store{storage: storage, key: key, log: log.With("component", "cartstore")}
}

func (s *Store) Key() string {
	return s.key
}

// Load returns the last saved cart. Absent, unreadable or malformed data
// yields an empty cart.
func (s *Store) Load(ctx context.Context) *domain.Cart {
	data, err := s.storage.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.WarnContext(ctx, "cart load failed, starting empty", "key", s.key, "error", err)
		}
		return domain.NewCart()
	}

	cart, err := Decode(data)
	if err != nil {
		s.log.WarnContext(ctx, "stored cart is malformed, starting empty", "key", s.key, "error", err)
		return domain.NewCart()
	}
	return cart
}

// Save overwrites the stored value with the whole cart.
func (s *Store) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := Encode(cart)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, s.key, data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.storage.Close()
}
