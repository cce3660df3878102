package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/dispatch/domain"
	"github.com/fastygo/dispatch/repository"
)

type dashboardCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewDashboardCache creates a Redis-backed dashboard KPI cache.
func NewDashboardCache(client *redislib.Client, ttl time.Duration) repository.DashboardCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &dashboardCache{
		client: client,
		prefix: "dashboard:",
		ttl:    ttl,
	}
}

func (c *dashboardCache) Get(ctx context.Context, key string) (*domain.DashboardSummary, error) {
	result, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, domain.ErrCacheMiss
		}
		return nil, err
	}

	var summary domain.DashboardSummary
	if err := json.Unmarshal([]byte(result), &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *dashboardCache) Set(ctx context.Context, key string, summary *domain.DashboardSummary) error {
	if summary == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), payload, c.ttl).Err()
}

// Invalidate drops every cached summary. Called after task writes.
func (c *dashboardCache) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	keys := make([]string, 0)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *dashboardCache) key(id string) string {
	return fmt.Sprintf("%s%s", c.prefix, id)
}
