package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/fjod/go_cart/eventhub/internal/domain"
	"github.com/redis/go-redis/v9"
)

const eventsKey = "events:catalogue"

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 5 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context) ([]*domain.Event, error) {
	data, err := r.client.Get(ctx, eventsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var events []*domain.Event
	if err2 := json.Unmarshal(data, &events); err2 != nil {
		return nil, fmt.Errorf("unmarshal events failed: %w", err2)
	}
	return events, nil
}

func (r RedisCache) Set(ctx context.Context, events []*domain.Event) error {
	if events == nil {
		events = []*domain.Event{}
	}
	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("marshal events failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(60)) * time.Second
	if err := r.client.Set(ctx, eventsKey, data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, eventsKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}
