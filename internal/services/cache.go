package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nurtura-health/nurtura-backend/internal/database"
)

const (
	// CacheKeyPrefix is the Redis key prefix for cached data
	CacheKeyPrefix = "cache:"
	// DirectoryCacheKey holds the public psychologist directory listing
	DirectoryCacheKey = "directory:psychologists"
	// ClinicDirectoryCacheKey holds the public clinic listing
	ClinicDirectoryCacheKey = "directory:clinics"
	// DirectoryCacheTTL keeps directory pages warm between mutations
	DirectoryCacheTTL = 10 * time.Minute
)

// CacheService provides Redis-backed JSON caching for read-mostly listings.
type CacheService struct{}

// Get retrieves a value from cache
func (c *CacheService) Get(key string, dest interface{}) (bool, error) {
	ctx := context.Background()
	cacheKey := CacheKeyPrefix + key

	val, err := database.RedisClient.Get(ctx, cacheKey).Result()
	if err != nil {
		return false, nil // Cache miss, not an error
	}

	if err := json.Unmarshal([]byte(val), dest); err != nil {
		return false, err
	}

	return true, nil
}

// Set stores a value in cache with the directory TTL
func (c *CacheService) Set(key string, value interface{}) error {
	return c.SetWithTTL(key, value, DirectoryCacheTTL)
}

// SetWithTTL stores a value in cache with a custom TTL
func (c *CacheService) SetWithTTL(key string, value interface{}, ttl time.Duration) error {
	ctx := context.Background()
	cacheKey := CacheKeyPrefix + key

	jsonData, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return database.RedisClient.Set(ctx, cacheKey, jsonData, ttl).Err()
}

// Delete removes a value from cache
func (c *CacheService) Delete(key string) error {
	ctx := context.Background()
	cacheKey := CacheKeyPrefix + key
	return database.RedisClient.Del(ctx, cacheKey).Err()
}

// InvalidateDirectoryCache drops the public directory listings. Called after
// any verification-status mutation so stale profiles never linger.
func InvalidateDirectoryCache() {
	c := &CacheService{}
	_ = c.Delete(DirectoryCacheKey)
	_ = c.Delete(ClinicDirectoryCacheKey)
}
