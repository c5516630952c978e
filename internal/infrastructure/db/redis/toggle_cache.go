package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultToggleTTL = 30 * time.Second

// ToggleCache implements ports.ToggleCache on Redis. Entries expire on a
// short TTL and are invalidated explicitly on every toggle write, keeping the
// window in which a stale value can influence a consent decision small and
// bounded.
type ToggleCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewToggleCache(client *redis.Client, ttl time.Duration) *ToggleCache {
	if ttl <= 0 {
		ttl = defaultToggleTTL
	}
	return &ToggleCache{client: client, ttl: ttl}
}

func toggleKey(name string) string {
	return fmt.Sprintf("toggle:%s", name)
}

func (c *ToggleCache) Get(ctx context.Context, name string) (bool, bool, error) {
	raw, err := c.client.Get(ctx, toggleKey(name)).Result()
	if err == redis.Nil {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("toggle cache get: %w", err)
	}
	return raw == "1", true, nil
}

func (c *ToggleCache) Put(ctx context.Context, name string, value bool) error {
	raw := "0"
	if value {
		raw = "1"
	}
	if err := c.client.Set(ctx, toggleKey(name), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("toggle cache put: %w", err)
	}
	return nil
}

func (c *ToggleCache) Invalidate(ctx context.Context, name string) error {
	if err := c.client.Del(ctx, toggleKey(name)).Err(); err != nil {
		return fmt.Errorf("toggle cache invalidate: %w", err)
	}
	return nil
}
