package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-service-dispatch/core"
)

const activityCacheKeyPrefix = "go-service-dispatch::activity::v1"

// CachedActivityReader caches Get lookups. Entries are immutable once
// recorded, so List is always served by the base reader.
type CachedActivityReader struct {
	base  core.DispatchActivityReader
	cache repositorycache.CacheService
}

func NewCachedActivityReader(
	base core.DispatchActivityReader,
	cacheService repositorycache.CacheService,
) (*CachedActivityReader, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base activity reader is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: activity cache service is required")
	}
	return &CachedActivityReader{base: base, cache: cacheService}, nil
}

// NewDefaultCacheService builds a go-repository-cache service with the
// library defaults.
func NewDefaultCacheService() (repositorycache.CacheService, error) {
	return repositorycache.NewCacheService(repositorycache.DefaultConfig())
}

// ActivityCacheKey returns go-service-dispatch::activity::v1::<id> with the id
// URL-path escaped.
func ActivityCacheKey(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("sqlstore: activity id is required")
	}
	return activityCacheKeyPrefix + "::" + url.PathEscape(id), nil
}

func (r *CachedActivityReader) List(ctx context.Context, filter core.ActivityFilter) (core.ActivityPage, error) {
	if r == nil || r.base == nil {
		return core.ActivityPage{}, fmt.Errorf("sqlstore: cached activity reader is not configured")
	}
	return r.base.List(ctx, filter)
}

func (r *CachedActivityReader) Get(ctx context.Context, id string) (core.DispatchActivityEntry, error) {
	if r == nil || r.base == nil || r.cache == nil {
		return core.DispatchActivityEntry{}, fmt.Errorf("sqlstore: cached activity reader is not configured")
	}
	cacheKey, err := ActivityCacheKey(id)
	if err != nil {
		return core.DispatchActivityEntry{}, err
	}
	return repositorycache.GetOrFetch(ctx, r.cache, cacheKey, func(ctx context.Context) (core.DispatchActivityEntry, error) {
		return r.base.Get(ctx, strings.TrimSpace(id))
	})
}

// Invalidate drops a cached entry, for example after Prune removed it.
func (r *CachedActivityReader) Invalidate(ctx context.Context, id string) error {
	if r == nil || r.cache == nil {
		return fmt.Errorf("sqlstore: cached activity reader is not configured")
	}
	cacheKey, err := ActivityCacheKey(id)
	if err != nil {
		return err
	}
	return r.cache.Delete(ctx, cacheKey)
}
