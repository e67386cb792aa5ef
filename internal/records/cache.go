package records

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/claimpilot/pagegen/internal/foundation/errors"
	"github.com/claimpilot/pagegen/internal/logfields"
)

// Cache stores serialized table contents.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache is a Cache backed by go-redis.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache connects to the Redis URL and verifies it with PING.
func NewRedisCache(ctx context.Context, url, prefix string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "invalid records.cache.redis_url").Fatal().Build()
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.WrapError(err, errors.CategoryPrecondition, "record cache unreachable").
			Fatal().
			WithContext("addr", opts.Addr).
			Build()
	}
	return NewRedisCacheFromClient(client, prefix), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, prefix string) *RedisCache {
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error { return c.client.Close() }

// CachingProvider is a read-through cache in front of another Provider.
// Cache failures are logged and fall through to the wrapped provider.
type CachingProvider struct {
	next   Provider
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

func NewCachingProvider(next Provider, cache Cache, ttl time.Duration, logger *slog.Logger) *CachingProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachingProvider{next: next, cache: cache, ttl: ttl, logger: logger}
}

// Ping checks the wrapped provider and, when supported, the cache.
func (c *CachingProvider) Ping(ctx context.Context) error {
	if p, ok := c.next.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return err
		}
	}
	if p, ok := c.cache.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return errors.WrapError(err, errors.CategoryPrecondition, "record cache unreachable").Fatal().Build()
		}
	}
	return nil
}

func (c *CachingProvider) StatePages(ctx context.Context) ([]State, error) {
	return cached(ctx, c, TableStatePages, c.next.StatePages)
}

func (c *CachingProvider) CityPages(ctx context.Context) ([]City, error) {
	return cached(ctx, c, TableCityPages, c.next.CityPages)
}

func (c *CachingProvider) CPTCodes(ctx context.Context) ([]Code, error) {
	return cached(ctx, c, TableCPTCodes, c.next.CPTCodes)
}

func (c *CachingProvider) ICD10Codes(ctx context.Context) ([]Code, error) {
	return cached(ctx, c, TableICD10Codes, c.next.ICD10Codes)
}

func (c *CachingProvider) DentalCodes(ctx context.Context) ([]Code, error) {
	return cached(ctx, c, TableDentalCodes, c.next.DentalCodes)
}

func (c *CachingProvider) BillingModifiers(ctx context.Context) ([]Code, error) {
	return cached(ctx, c, TableBillingModifiers, c.next.BillingModifiers)
}

func (c *CachingProvider) EMRIntegrations(ctx context.Context) ([]Integration, error) {
	return cached(ctx, c, TableEMRIntegrations, c.next.EMRIntegrations)
}

func cached[T any](ctx context.Context, c *CachingProvider, t Table, load func(context.Context) ([]T, error)) ([]T, error) {
	key := string(t)
	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("Record cache read failed", logfields.Table(key), logfields.Error(err))
	} else if ok {
		out := make([]T, 0)
		if err := json.Unmarshal(raw, &out); err == nil {
			c.logger.Debug("Record cache hit", logfields.Table(key), logfields.Count(len(out)))
			return out, nil
		}
		c.logger.Warn("Discarding undecodable cache entry", logfields.Table(key))
	}

	rows, err := load(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encode %s cache entry: %w", key, err)
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		c.logger.Warn("Record cache write failed", logfields.Table(key), logfields.Error(err))
	}
	return rows, nil
}
