package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheService is a thin JSON byte cache over redis used for schedule
// list responses. Every method tolerates a nil receiver so callers can
// wire it only when the cache is enabled.
type CacheService struct {
	client  *redis.Client
	ttl     time.Duration
	metrics *MetricsService
	logger  *zap.Logger
}

// NewCacheService constructs the cache. metrics may be nil.
func NewCacheService(client *redis.Client, ttl time.Duration, metrics *MetricsService, logger *zap.Logger) *CacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CacheService{client: client, ttl: ttl, metrics: metrics, logger: logger}
}

// Get fetches a cached payload. A miss, a nil cache, or a redis error
// all report !ok; the caller recomputes.
func (c *CacheService) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	start := time.Now()
	raw, err := c.client.Get(ctx, key).Bytes()
	hit := err == nil
	c.metrics.RecordCacheOperation(hit, time.Since(start))
	if err != nil {
		if err != redis.Nil {
			c.logger.Sugar().Warnw("cache get failed", "key", key, "error", err)
		}
		return nil, false
	}
	return raw, true
}

// Set stores a payload with the configured TTL. Failures are logged
// and swallowed: the cache is an optimisation, never a dependency.
func (c *CacheService) Set(ctx context.Context, key string, payload []byte) {
	if c == nil || c.client == nil {
		return
	}
	start := time.Now()
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Sugar().Warnw("cache set failed", "key", key, "error", err)
		return
	}
	c.metrics.ObserveCacheWrite(time.Since(start))
}

// Flush drops every cached entry, used after a source reload.
func (c *CacheService) Flush(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		c.logger.Sugar().Warnw("cache flush failed", "error", err)
	}
}
