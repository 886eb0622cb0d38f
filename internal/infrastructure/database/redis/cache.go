package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/simheat/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/simheat/pkg/errors"
)

var (
	ErrCacheMiss           = errors.New(errors.ErrCodeCacheError, "cache miss")
	ErrSerializationFailed = errors.New(errors.ErrCodeSerialization, "serialization failed")
)

// Cache is a JSON value cache with a key prefix.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error
	DeleteByPrefix(ctx context.Context, prefix string) (int64, error)
	Ping(ctx context.Context) error
}

type redisCache struct {
	client     *Client
	logger     logging.Logger
	prefix     string
	defaultTTL time.Duration
	jitter     float64
	group      singleflight.Group
}

type CacheOption func(*redisCache)

func WithPrefix(prefix string) CacheOption {
	return func(c *redisCache) { c.prefix = prefix }
}

func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *redisCache) { c.defaultTTL = ttl }
}

// WithJitter spreads expirations by +/- fraction of the TTL. Zero disables it.
func WithJitter(fraction float64) CacheOption {
	return func(c *redisCache) { c.jitter = fraction }
}

func NewRedisCache(client *Client, log logging.Logger, opts ...CacheOption) Cache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &redisCache{
		client:     client,
		logger:     log.Named("cache"),
		prefix:     "simheat:",
		defaultTTL: 24 * time.Hour,
		jitter:     0.1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *redisCache) fullKey(key string) string {
	return c.prefix + key
}

func (c *redisCache) jitterTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 || c.jitter <= 0 {
		return ttl
	}
	delta := float64(ttl) * c.jitter * (rand.Float64()*2 - 1)
	return ttl + time.Duration(delta)
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to get from cache")
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	return nil
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}
	data, err := json.Marshal(value)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	if err := c.client.Set(ctx, c.fullKey(key), data, c.jitterTTL(ttl)).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to set cache")
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.fullKey(k)
	}
	return c.client.Del(ctx, full...).Err()
}

// GetOrSet reads key into dest, calling loader once per key across
// concurrent callers on a miss. A failed cache read is logged and treated
// as a miss so the cache never blocks the caller.
func (c *redisCache) GetOrSet(ctx context.Context, key string, dest interface{}, ttl time.Duration, loader func(ctx context.Context) (interface{}, error)) error {
	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if err != ErrCacheMiss {
		c.logger.Warn("Cache read failed, loading", logging.String("key", key), logging.Err(err))
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		v, loadErr := loader(ctx)
		if loadErr != nil {
			return nil, loadErr
		}
		if setErr := c.Set(ctx, key, v, ttl); setErr != nil {
			c.logger.Warn("Failed to populate cache", logging.String("key", key), logging.Err(setErr))
		}
		return v, nil
	})
	if err != nil {
		return err
	}

	data, err := json.Marshal(val)
	if err != nil {
		return ErrSerializationFailed.WithCause(err)
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) DeleteByPrefix(ctx context.Context, prefix string) (int64, error) {
	var deleted int64
	var cursor uint64
	match := c.fullKey(prefix) + "*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, err
			}
			deleted += int64(len(keys))
		}
		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

//Personal.AI order the ending
