package classes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bellacucina/platform/pkg/logging"
)

const (
	catalogCacheKey   = "catalog:classes"
	classCachePrefix  = "catalog:class:"
	defaultCatalogTTL = 5 * time.Minute
)

// CachedCatalog is a read-through redis cache in front of a CatalogSource.
// Cache misses hit the CMS and repopulate; redis errors degrade to direct
// CMS reads rather than failing the request.
type CachedCatalog struct {
	source CatalogSource
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedCatalog wraps source with a redis cache. A nil client disables
// caching entirely.
func NewCachedCatalog(source CatalogSource, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedCatalog {
	if ttl <= 0 {
		ttl = defaultCatalogTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedCatalog{source: source, client: client, ttl: ttl, logger: logger}
}

// ListClasses returns the cached catalog, refreshing from the CMS on miss.
func (c *CachedCatalog) ListClasses(ctx context.Context) ([]Class, error) {
	if c.client != nil {
		raw, err := c.client.Get(ctx, catalogCacheKey).Result()
		if err == nil {
			var cached []Class
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
				return cached, nil
			}
		} else if err != redis.Nil {
			c.logger.Warn("catalog cache read failed", "error", err)
		}
	}

	items, err := c.source.ListClasses(ctx)
	if err != nil {
		return nil, err
	}

	if c.client != nil {
		if raw, jsonErr := json.Marshal(items); jsonErr == nil {
			if err := c.client.Set(ctx, catalogCacheKey, raw, c.ttl).Err(); err != nil {
				c.logger.Warn("catalog cache write failed", "error", err)
			}
		}
	}
	return items, nil
}

// GetClass returns a single class by slug, cached per slug.
func (c *CachedCatalog) GetClass(ctx context.Context, slug string) (*Class, error) {
	key := classCachePrefix + slug

	if c.client != nil {
		raw, err := c.client.Get(ctx, key).Result()
		if err == nil {
			var cached Class
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
				return &cached, nil
			}
		} else if err != redis.Nil {
			c.logger.Warn("class cache read failed", "error", err, "slug", slug)
		}
	}

	class, err := c.source.GetClass(ctx, slug)
	if err != nil {
		return nil, err
	}

	if c.client != nil {
		if raw, jsonErr := json.Marshal(class); jsonErr == nil {
			if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
				c.logger.Warn("class cache write failed", "error", err, "slug", slug)
			}
		}
	}
	return class, nil
}

// Invalidate drops all cached catalog entries. Called by the CMS webhook when
// content is republished.
func (c *CachedCatalog) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	iter := c.client.Scan(ctx, 0, classCachePrefix+"*", 0).Iterator()
	keys := []string{catalogCacheKey}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("classes: cache scan: %w", err)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("classes: cache invalidate: %w", err)
	}
	return nil
}
