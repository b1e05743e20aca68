// Package cache provides a read-through redis cache for the event catalog.
// The cache is optional; when no redis address is configured callers fall
// straight through to the store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ticketeria/ticketeria/internal/config"
	"github.com/ticketeria/ticketeria/internal/domain"
)

const eventListKey = "events:list"

// ErrMiss is returned when the key is absent or redis is unavailable.
var ErrMiss = errors.New("cache miss")

type EventCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewEventCache returns nil when conf has no address; a nil *EventCache is a
// valid no-op receiver for all methods.
func NewEventCache(conf *config.RedisConfig) *EventCache {
	if conf == nil || conf.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	ttl := conf.EventCacheTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &EventCache{
		client: client,
		ttl:    ttl,
	}
}

func NewEventCacheWithClient(client *redis.Client, ttl time.Duration) *EventCache {
	return &EventCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *EventCache) GetEvents(ctx context.Context) ([]domain.Event, error) {
	if c == nil {
		return nil, ErrMiss
	}

	payload, err := c.client.Get(ctx, eventListKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			zap.L().Warn("event cache read failed", zap.Error(err))
		}

		return nil, ErrMiss
	}

	var events []domain.Event
	if err = json.Unmarshal(payload, &events); err != nil {
		return nil, ErrMiss
	}

	return events, nil
}

func (c *EventCache) SetEvents(ctx context.Context, events []domain.Event) {
	if c == nil {
		return
	}

	payload, err := json.Marshal(events)
	if err != nil {
		return
	}

	if err = c.client.Set(ctx, eventListKey, payload, c.ttl).Err(); err != nil {
		zap.L().Warn("event cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached catalog. Called after any admin write that can
// change events, ticket types or sold counts.
func (c *EventCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}

	if err := c.client.Del(ctx, eventListKey).Err(); err != nil {
		zap.L().Warn("event cache invalidation failed", zap.Error(err))
	}
}
