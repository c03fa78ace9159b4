package cache

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	repositorycache "github.com/goliatone/go-repository-cache/cache"

	"github.com/finsnap/finsnap-go/core"
)

const resourceCacheKeyPrefix = "finsnap"

const defaultResourceCacheTTL = 5 * time.Minute

// ResourceCache fronts read operations with a shared cache service and a
// per-resource generation counter. Invalidation bumps the generation, which
// changes every key the resource produces; stale entries are never served
// and age out through the backing service's TTL.
type ResourceCache struct {
	service repositorycache.CacheService

	mu          sync.Mutex
	generations map[core.Resource]uint64
}

func New(service repositorycache.CacheService) (*ResourceCache, error) {
	if service == nil {
		return nil, fmt.Errorf("cache: cache service is required")
	}
	return &ResourceCache{
		service:     service,
		generations: map[core.Resource]uint64{},
	}, nil
}

// NewDefault builds a ResourceCache over an in-process cache service with
// the default TTL.
func NewDefault() (*ResourceCache, error) {
	config := repositorycache.DefaultConfig()
	config.TTL = defaultResourceCacheTTL
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		return nil, fmt.Errorf("cache: build cache service: %w", err)
	}
	return New(service)
}

// Generation returns the current generation for a resource. Generations
// start at zero and only ever increase.
func (c *ResourceCache) Generation(resource core.Resource) uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[resource]
}

// Invalidate bumps the generation for each resource so subsequent reads
// miss the cache and fetch fresh state.
func (c *ResourceCache) Invalidate(resources ...core.Resource) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, resource := range resources {
		c.generations[resource]++
	}
}

// Key returns the deterministic versioned cache key for a resource read:
// finsnap::<resource>::v<generation>::<escaped parts>.
func (c *ResourceCache) Key(resource core.Resource, parts ...string) string {
	segments := []string{
		resourceCacheKeyPrefix,
		url.PathEscape(string(resource)),
		fmt.Sprintf("v%d", c.Generation(resource)),
	}
	for _, part := range parts {
		segments = append(segments, url.PathEscape(part))
	}
	return strings.Join(segments, "::")
}

// GetOrFetch serves the cached value for the resource's current generation
// or runs fetch and caches its result.
func GetOrFetch[T any](
	ctx context.Context,
	c *ResourceCache,
	resource core.Resource,
	fetch func(ctx context.Context) (T, error),
	keyParts ...string,
) (T, error) {
	var zero T
	if c == nil || c.service == nil {
		return zero, fmt.Errorf("cache: resource cache is not configured")
	}
	cacheKey := c.Key(resource, keyParts...)
	value, err := repositorycache.GetOrFetch(ctx, c.service, cacheKey, fetch)
	if err != nil {
		return zero, err
	}
	return value, nil
}
