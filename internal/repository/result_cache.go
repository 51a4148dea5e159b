package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"analytics-service/internal/models"

	"github.com/redis/go-redis/v9"
)

// ResultCache decorates a backend with Redis-backed result caching keyed
// by the plan fingerprint. Cache failures are never surfaced: a miss or a
// broken Redis falls through to the underlying backend.
type ResultCache struct {
	backend Backend
	client  *redis.Client
	ttl     time.Duration
}

func NewResultCache(backend Backend, client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{backend: backend, client: client, ttl: ttl}
}

func (c *ResultCache) Name() string { return c.backend.Name() }

func (c *ResultCache) Ping(ctx context.Context) error { return c.backend.Ping(ctx) }

func (c *ResultCache) Columns(ctx context.Context, table string) (map[string]bool, error) {
	return c.backend.Columns(ctx, table)
}

func (c *ResultCache) LatestYear(ctx context.Context, regionCode string) (string, error) {
	return c.backend.LatestYear(ctx, regionCode)
}

func (c *ResultCache) Execute(ctx context.Context, plan models.QueryPlan) (*models.AnalyticsResult, error) {
	key, ok := c.cacheKey(plan)
	if ok {
		if cached := c.lookup(ctx, key); cached != nil {
			return cached, nil
		}
	}

	result, err := c.backend.Execute(ctx, plan)
	if err != nil {
		return nil, err
	}
	if ok {
		c.store(ctx, key, result)
	}
	return result, nil
}

func (c *ResultCache) cacheKey(plan models.QueryPlan) (string, bool) {
	raw, err := json.Marshal(plan)
	if err != nil {
		return "", false
	}
	sum := sha256.Sum256(raw)
	return "analytics:result:" + hex.EncodeToString(sum[:]), true
}

func (c *ResultCache) lookup(ctx context.Context, key string) *models.AnalyticsResult {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("result cache lookup failed", "error", err)
		}
		return nil
	}
	var result models.AnalyticsResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		slog.Warn("discarding malformed cached result", "key", key, "error", err)
		return nil
	}
	return &result
}

func (c *ResultCache) store(ctx context.Context, key string, result *models.AnalyticsResult) {
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		slog.Warn("failed to cache result", "key", key, "error", err)
	}
}
