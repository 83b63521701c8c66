package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const reportCacheKey = "analytics:report:v1"

// Cache stores the most recent report. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context) (*Report, error)
	Set(ctx context.Context, rep *Report) error
	Invalidate(ctx context.Context) error
}

// CachedReporter serves a cached report while it is fresh. Cache errors are
// logged and never fail the request.
//
// A hit ignores now: the report keeps the GeneratedAt and windows of the
// call that filled the cache. Callers passing time.Now see at most the
// cache TTL of lag; callers injecting a fixed now should not rely on it.
type CachedReporter struct {
	next  Reporter
	cache Cache
}

func NewCachedReporter(next Reporter, cache Cache) *CachedReporter {
	return &CachedReporter{next: next, cache: cache}
}

func (c *CachedReporter) ComputeReport(ctx context.Context, now time.Time) (*Report, error) {
	rep, err := c.cache.Get(ctx)
	if err != nil {
		log.Printf("[cache] get failed err=%v", err)
	} else if rep != nil {
		return rep, nil
	}

	rep, err = c.next.ComputeReport(ctx, now)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, rep); err != nil {
		log.Printf("[cache] set failed err=%v", err)
	}
	return rep, nil
}

// Invalidate drops the cached report so the next call recomputes. Failures
// are logged and the stale entry lives until its TTL.
func (c *CachedReporter) Invalidate(ctx context.Context) {
	if err := c.cache.Invalidate(ctx); err != nil {
		log.Printf("[cache] invalidate failed err=%v", err)
	}
}

type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context) (*Report, error) {
	b, err := r.rdb.Get(ctx, reportCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rep Report
	if err := json.Unmarshal(b, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *RedisCache) Set(ctx context.Context, rep *Report) error {
	b, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, reportCacheKey, b, r.ttl).Err()
}

func (r *RedisCache) Invalidate(ctx context.Context) error {
	return r.rdb.Del(ctx, reportCacheKey).Err()
}
