// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_backtest/internal/feature/candles/domain/entity"
	"stock_backtest/internal/feature/candles/usecase"
)

// rangeKeyLayout formats range bounds inside cache keys.
const rangeKeyLayout = "20060102"

// CachingCandleRepository decorates a CandleRepository with Redis caching.
// Both latest-N reads (Find) and date-range reads (FindRange) are cached under
// the same symbol+interval prefix so a single upsert invalidates either kind.
type CachingCandleRepository struct {
	inner     usecase.CandleRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

var _ usecase.CandleRepository = (*CachingCandleRepository)(nil)

// NewCachingCandleRepository decorates a CandleRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "candles".
func NewCachingCandleRepository(rdb *redis.Client, ttl time.Duration, inner usecase.CandleRepository, namespace string) *CachingCandleRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "candles"
	}
	return &CachingCandleRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// UpsertBatch inserts or updates candles and invalidates related cache entries.
func (c *CachingCandleRepository) UpsertBatch(ctx context.Context, candles []entity.Candle) error {
	// First upsert to the underlying repository
	if err := c.inner.UpsertBatch(ctx, candles); err != nil {
		return err
	}
	// Exit early if Redis is not configured or there are no candles
	if c.rdb == nil || len(candles) == 0 {
		return nil
	}

	// Invalidate affected cache entries (keys per symbol+interval)
	seen := map[string]struct{}{}
	for _, cd := range candles {
		prefix := c.cacheKeyPrefix(cd.Symbol, cd.Interval)
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		_ = c.deleteByPattern(ctx, prefix+"*") // Best effort: don't fail if cache deletion fails
	}
	return nil
}

// Find retrieves the latest candles, checking cache first then falling back to the database.
func (c *CachingCandleRepository) Find(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.Find(ctx, symbol, interval, outputsize)
	}
	return c.cached(ctx, c.cacheKey(symbol, interval, outputsize), func() ([]entity.Candle, error) {
		return c.inner.Find(ctx, symbol, interval, outputsize)
	})
}

// FindRange retrieves candles in [from, to], checking cache first then falling back to the database.
func (c *CachingCandleRepository) FindRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error) {
	if c.rdb == nil {
		return c.inner.FindRange(ctx, symbol, interval, from, to)
	}
	return c.cached(ctx, c.rangeCacheKey(symbol, interval, from, to), func() ([]entity.Candle, error) {
		return c.inner.FindRange(ctx, symbol, interval, from, to)
	})
}

// cached implements read-through caching for a single key.
func (c *CachingCandleRepository) cached(ctx context.Context, key string, load func() ([]entity.Candle, error)) ([]entity.Candle, error) {
	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Candle
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := load()
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// cacheKey generates a cache key for a specific query.
func (c *CachingCandleRepository) cacheKey(symbol, interval string, outputsize int) string {
	return fmt.Sprintf("%s:%s:%s:%d",
		c.namespace,
		safe(symbol),
		safe(interval),
		outputsize,
	)
}

// rangeCacheKey generates a cache key for a date-range query.
func (c *CachingCandleRepository) rangeCacheKey(symbol, interval string, from, to time.Time) string {
	return fmt.Sprintf("%s:%s:%s:range:%s:%s",
		c.namespace,
		safe(symbol),
		safe(interval),
		from.UTC().Format(rangeKeyLayout),
		to.UTC().Format(rangeKeyLayout),
	)
}

// cacheKeyPrefix generates a prefix for invalidating related cache entries.
func (c *CachingCandleRepository) cacheKeyPrefix(symbol, interval string) string {
	return fmt.Sprintf("%s:%s:%s:",
		c.namespace,
		safe(symbol),
		safe(interval),
	)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingCandleRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	// Simple escaping of characters that are problematic for Redis keys
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
