package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/ikkim/storefront-backend/internal/app/model"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const recentProductsKey = "products:recent"

// RecentProducts caches ListRecent results per limit in one Redis hash, so a
// single DEL invalidates every limit.
type RecentProducts interface {
	Get(ctx context.Context, limit int) ([]model.Product, bool)
	Set(ctx context.Context, limit int, products []model.Product)
	Invalidate(ctx context.Context)
}

type noopRecentProducts struct{}

func (noopRecentProducts) Get(context.Context, int) ([]model.Product, bool) { return nil, false }
func (noopRecentProducts) Set(context.Context, int, []model.Product)        {}
func (noopRecentProducts) Invalidate(context.Context)                       {}

type redisRecentProducts struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRecentProducts returns a Redis-backed cache, or a no-op cache when
// client is nil. Redis failures degrade to cache misses.
func NewRecentProducts(client *redis.Client, ttl time.Duration) RecentProducts {
	if client == nil {
		return noopRecentProducts{}
	}
	return &redisRecentProducts{client: client, ttl: ttl}
}

func (c *redisRecentProducts) Get(ctx context.Context, limit int) ([]model.Product, bool) {
	raw, err := c.client.HGet(ctx, recentProductsKey, strconv.Itoa(limit)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("Recent products cache read failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
		return nil, false
	}

	var products []model.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		logger.Warn("Recent products cache entry is corrupt", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, false
	}
	return products, true
}

func (c *redisRecentProducts) Set(ctx context.Context, limit int, products []model.Product) {
	raw, err := json.Marshal(products)
	if err != nil {
		return
	}

	pipe := c.client.TxPipeline()
	pipe.HSet(ctx, recentProductsKey, strconv.Itoa(limit), raw)
	if c.ttl > 0 {
		pipe.Expire(ctx, recentProductsKey, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("Recent products cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (c *redisRecentProducts) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, recentProductsKey).Err(); err != nil {
		logger.Warn("Recent products cache invalidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
