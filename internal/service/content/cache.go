package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache holds the published homepage between CMS reads.
type Cache interface {
	// Load returns nil without error on a miss.
	Load(ctx context.Context) (*Homepage, error)
	Store(ctx context.Context, h Homepage) error
}

const homepageCacheKey = "storefront:homepage"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Load(ctx context.Context) (*Homepage, error) {
	data, err := c.client.Get(ctx, homepageCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get homepage: %w", err)
	}
	var h Homepage
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("decode cached homepage: %w", err)
	}
	return &h, nil
}

func (c *RedisCache) Store(ctx context.Context, h Homepage) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode homepage: %w", err)
	}
	if err := c.client.Set(ctx, homepageCacheKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set homepage: %w", err)
	}
	return nil
}
