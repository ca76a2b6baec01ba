package books

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const cacheVersionKey = "catalog:version"

// Cache wraps redis based caching of catalog listings with a version key so
// writes invalidate every cached listing at once.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// Bump invalidates all cached listings.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Err()
}

// GetOrFill returns the cached listing for key, filling it via fn on a miss.
// Concurrent misses for the same key share one fill.
func (c *Cache) GetOrFill(ctx context.Context, key string, fn func(context.Context) ([]Book, error)) ([]Book, error) {
	if c == nil || c.client == nil {
		return fn(ctx)
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return fn(ctx)
	}
	full := fmt.Sprintf("catalog:v%d:%s", ver, key)

	if raw, err := c.client.Get(ctx, full).Bytes(); err == nil {
		var cached []Book
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	result, err, _ := c.group.Do(full, func() (any, error) {
		list, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(list); err == nil {
			_ = c.client.Set(ctx, full, raw, c.ttl).Err()
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Book), nil
}

// FilterKey derives a stable cache key from the listing filters.
func FilterKey(f ListFilters) string {
	parts := []string{
		f.Title, f.Description, f.AuthorName, f.Status, f.OrderBy,
		strconv.FormatBool(f.Descending),
		strconv.Itoa(f.Offset), strconv.Itoa(f.Limit),
	}
	if f.MinPrice != nil {
		parts = append(parts, strconv.FormatFloat(*f.MinPrice, 'f', 2, 64))
	}
	if f.MaxPrice != nil {
		parts = append(parts, strconv.FormatFloat(*f.MaxPrice, 'f', 2, 64))
	}
	if f.PublishedAfter != nil {
		parts = append(parts, f.PublishedAfter.Format("2006-01-02"))
	}
	return strings.Join(parts, "|")
}
