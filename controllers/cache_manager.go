package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/RafalSprengel/restaurant-pos-backend/services"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	MenuListCachePrefix = "menu:list:v:"
	CacheVersionKey     = "menu:version"
)

// CacheManager handles Redis caching of menu listings. A version key is
// bumped on every product write so stale pages expire without scanning keys.
type CacheManager struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewCacheManager(redisClient *redis.Client) *CacheManager {
	return &CacheManager{
		redis: redisClient,
		ttl:   DefaultCacheTTL,
	}
}

// GetProductList retrieves a cached menu page. Any Redis failure is a cache
// miss; the database stays the source of truth.
func (cm *CacheManager) GetProductList(ctx context.Context, params services.ListProductsParams) (map[string]interface{}, bool) {
	version, err := cm.getCacheVersion(ctx)
	if err != nil || version == 0 {
		return nil, false
	}

	cachedData, err := cm.redis.Get(ctx, cm.listCacheKey(version, params)).Result()
	if err != nil {
		return nil, false
	}

	var response map[string]interface{}
	if err := json.Unmarshal([]byte(cachedData), &response); err != nil {
		zap.L().Warn("Failed to unmarshal cached menu page", zap.Error(err))
		return nil, false
	}
	return response, true
}

// SetProductListAsync caches a menu page without blocking the request.
func (cm *CacheManager) SetProductListAsync(params services.ListProductsParams, response map[string]interface{}) {
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		version, err := cm.getCacheVersion(bgCtx)
		if err != nil || version == 0 {
			return
		}

		jsonBytes, err := json.Marshal(response)
		if err != nil {
			zap.L().Warn("Failed to marshal menu page for cache", zap.Error(err))
			return
		}

		if err := cm.redis.Set(bgCtx, cm.listCacheKey(version, params), jsonBytes, cm.ttl).Err(); err != nil {
			zap.L().Warn("Failed to cache menu page", zap.Error(err))
		}
	}()
}

// Invalidate invalidates all menu caches by bumping the version.
func (cm *CacheManager) Invalidate(ctx context.Context) {
	newVersion, err := cm.redis.Incr(ctx, CacheVersionKey).Result()
	if err != nil {
		zap.L().Warn("Failed to invalidate menu cache", zap.Error(err))
		return
	}
	zap.L().Info("Menu cache invalidated", zap.Int64("new_version", newVersion))
}

func (cm *CacheManager) getCacheVersion(ctx context.Context) (int64, error) {
	ver, err := cm.redis.Get(ctx, CacheVersionKey).Int64()
	if err == nil && ver > 0 {
		return ver, nil
	}
	if err == redis.Nil {
		if err := cm.redis.Set(ctx, CacheVersionKey, 1, 0).Err(); err == nil {
			return 1, nil
		}
	}
	return 0, fmt.Errorf("failed to get cache version")
}

func (cm *CacheManager) listCacheKey(version int64, params services.ListProductsParams) string {
	category := ""
	if params.CategoryID != nil {
		category = params.CategoryID.String()
	}
	return fmt.Sprintf(
		"%s%d:p:%d:l:%d:c:%s:veg:%s:gf:%s:s:%s",
		MenuListCachePrefix,
		version,
		params.Page,
		params.PerPage,
		category,
		formatBoolForCache(params.Vegetarian),
		formatBoolForCache(params.GlutenFree),
		params.Sort,
	)
}

func formatBoolForCache(value *bool) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%t", *value)
}
