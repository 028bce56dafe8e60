package cache

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/eventhub/internal/domain"
)

type EventCache interface {
	Get(ctx context.Context) ([]*domain.Event, error)
	Set(ctx context.Context, events []*domain.Event) error
	Delete(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")

// NopCache always misses. Used when no Redis is configured.
type NopCache struct{}

func (NopCache) Get(context.Context) ([]*domain.Event, error) { return nil, ErrCacheMiss }
func (NopCache) Set(context.Context, []*domain.Event) error   { return nil }
func (NopCache) Delete(context.Context) error                 { return nil }
