package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"resume-folio/internal/config"
	"resume-folio/internal/models"
)

const keyPrefix = "folio:parse:"

// RedisCache keeps parse results in Redis, keyed by document content.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache builds a client from cfg. It does not dial; call Ping to
// check the server.
func NewRedisCache(cfg config.CacheConfig) (*RedisCache, error) {
	if cfg.Address == "" {
		return nil, errors.New("redis address is required")
	}
	return newRedisCache(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}, cfg.TTL), nil
}

func newRedisCache(opt *redis.Options, ttl time.Duration) *RedisCache {
	return &RedisCache{client: redis.NewClient(opt), ttl: ttl}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", c.client.Options().Addr, err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Get returns the cached result for key, or nil on a miss.
func (c *RedisCache) Get(ctx context.Context, key string) (*models.ParseResult, error) {
	raw, err := c.client.Get(ctx, formatKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	var result models.ParseResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decode cached result %s: %w", key, err)
	}
	return &result, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, result *models.ParseResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, formatKey(key), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func formatKey(key string) string {
	return keyPrefix + key
}
