package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Cheertaboi/referral-service/internal/logging"
)

const keyPrefix = "referral:code:"

// RedisCodeCache shares the code registry between instances. Redis errors
// degrade to cache misses.
type RedisCodeCache struct {
	rdb *redis.Client
	ttl time.Duration
	log logging.Logger
}

func NewRedisCodeCache(url string, ttl time.Duration, log logging.Logger) (*RedisCodeCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisCodeCache{rdb: rdb, ttl: ttl, log: log}, nil
}

func codeKey(code string) string {
	return keyPrefix + code
}

func (c *RedisCodeCache) Get(ctx context.Context, code string) (string, bool) {
	id, err := c.rdb.Get(ctx, codeKey(code)).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		c.log.Warnf("redis get %s: %v", code, err)
		return "", false
	}
	return id, true
}

func (c *RedisCodeCache) Set(ctx context.Context, code, customerID string) {
	if err := c.rdb.Set(ctx, codeKey(code), customerID, c.ttl).Err(); err != nil {
		c.log.Warnf("redis set %s: %v", code, err)
	}
}

func (c *RedisCodeCache) Delete(ctx context.Context, code string) {
	if err := c.rdb.Del(ctx, codeKey(code)).Err(); err != nil {
		c.log.Warnf("redis del %s: %v", code, err)
	}
}

func (c *RedisCodeCache) Close() error {
	return c.rdb.Close()
}
