package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"deptsite/internal/shared/logger"

	"github.com/redis/go-redis/v9"
)

// DefaultFacetTTL bounds staleness when an invalidation is missed.
const DefaultFacetTTL = 5 * time.Minute

// FacetCache caches the distinct facet values served with public list
// responses. The cache is best-effort: on any redis failure callers fall
// through to the document store.
type FacetCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// NewFacetCache creates a facet cache. A zero ttl selects the default.
func NewFacetCache(client *redis.Client, ttl time.Duration, log logger.Logger) *FacetCache {
	if ttl <= 0 {
		ttl = DefaultFacetTTL
	}
	return &FacetCache{
		client: client,
		ttl:    ttl,
		log:    log.WithComponent("facet_cache"),
	}
}

func facetKey(collection, field string) string {
	return fmt.Sprintf("facets:%s:%s", collection, field)
}

// Get returns the cached values for a collection facet, or ok=false on miss
// or redis failure.
func (c *FacetCache) Get(ctx context.Context, collection, field string) ([]string, bool) {
	raw, err := c.client.Get(ctx, facetKey(collection, field)).Result()
	if err != nil {
		if err != redis.Nil {
			c.log.Warnf("facet cache read failed for %s.%s: %v", collection, field, err)
		}
		return nil, false
	}

	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		c.log.Warnf("facet cache entry corrupt for %s.%s: %v", collection, field, err)
		return nil, false
	}
	return values, true
}

// Set stores the values for a collection facet with the configured TTL.
func (c *FacetCache) Set(ctx context.Context, collection, field string, values []string) {
	raw, err := json.Marshal(values)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, facetKey(collection, field), raw, c.ttl).Err(); err != nil {
		c.log.Warnf("facet cache write failed for %s.%s: %v", collection, field, err)
	}
}

// Invalidate drops every cached facet for a collection. Called when any
// record in the collection changes.
func (c *FacetCache) Invalidate(ctx context.Context, collection string) {
	iter := c.client.Scan(ctx, 0, facetKey(collection, "*"), 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warnf("facet cache scan failed for %s: %v", collection, err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warnf("facet cache invalidation failed for %s: %v", collection, err)
	}
}
