// Package cache provides a Redis read-through cache in front of an EventRepository.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"devevents/internal/domain"
)

const (
	keyPrefix = "devevents:events:"
	keyList   = keyPrefix + "all"
)

func slugKey(slug string) string { return keyPrefix + "slug:" + slug }

func similarKey(slug string, limit int) string {
	return fmt.Sprintf("%ssimilar:%s:%d", keyPrefix, slug, limit)
}

// EventRepository caches slug lookups and listings. ID lookups and existence
// checks always go to the underlying store, since booking integrity depends
// on them. Redis failures are logged and the store is used instead.
type EventRepository struct {
	next   domain.EventRepository
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

var _ domain.EventRepository = (*EventRepository)(nil)

// NewEventRepository wraps next with a cache stored in rdb for ttl.
func NewEventRepository(next domain.EventRepository, rdb redis.UniversalClient, ttl time.Duration, logger *slog.Logger) *EventRepository {
	return &EventRepository{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	if err := c.next.Create(ctx, e); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *EventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	return c.next.GetByID(ctx, id)
}

func (c *EventRepository) Exists(ctx context.Context, id string) (bool, error) {
	return c.next.Exists(ctx, id)
}

func (c *EventRepository) GetBySlug(ctx context.Context, slug string) (*domain.Event, error) {
	key := slugKey(slug)
	var cached domain.Event
	if c.get(ctx, key, &cached) {
		return &cached, nil
	}
	e, err := c.next.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, e)
	return e, nil
}

func (c *EventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	var cached []*domain.Event
	if c.get(ctx, keyList, &cached) {
		return cached, nil
	}
	events, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, keyList, events)
	return events, nil
}

func (c *EventRepository) ListSimilar(ctx context.Context, slug string, limit int) ([]*domain.Event, error) {
	key := similarKey(slug, limit)
	var cached []*domain.Event
	if c.get(ctx, key, &cached) {
		return cached, nil
	}
	events, err := c.next.ListSimilar(ctx, slug, limit)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, events)
	return events, nil
}

func (c *EventRepository) get(ctx context.Context, key string, dest any) bool {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "event cache read failed", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.logger.WarnContext(ctx, "event cache entry unreadable", "key", key, "err", err)
		return false
	}
	return true
}

func (c *EventRepository) set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "event cache write failed", "key", key, "err", err)
	}
}

// invalidate drops every cached listing, since a new event can appear in any of them.
func (c *EventRepository) invalidate(ctx context.Context) {
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"similar:*", 100).Iterator()
	keys := []string{keyList}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.WarnContext(ctx, "event cache scan failed", "err", err)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.WarnContext(ctx, "event cache invalidation failed", "err", err)
	}
}

// NewClient creates a Redis client and verifies connectivity.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
