package redis

import (
	"context"
	"errors"
	"time"

	"github.com/unitrack/unitrack-api/internal/domain/course"
	"github.com/unitrack/unitrack-api/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG CACHE
// ══════════════════════════════════════════════════════════════════════════════

const catalogKey = PrefixCatalog + "all"

// CatalogCache caches the full ordered course catalog. Cache failures are
// logged and treated as misses; the catalog always has the database as its
// source of truth.
type CatalogCache struct {
	cache *Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewCatalogCache creates a catalog cache with the given TTL.
func NewCatalogCache(cache *Cache, ttl time.Duration, log *logger.Logger) *CatalogCache {
	if log == nil {
		log = logger.Default()
	}
	return &CatalogCache{
		cache: cache,
		ttl:   ttl,
		log:   log.With(logger.Component("catalog_cache")),
	}
}

// Get returns the cached catalog, or (nil, false) on a miss.
func (c *CatalogCache) Get(ctx context.Context) ([]course.Entry, bool) {
	var entries []course.Entry
	err := c.cache.Get(ctx, catalogKey, &entries)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.log.Warn("catalog cache read failed", logger.Err(err))
		}
		return nil, false
	}
	return entries, true
}

// Put stores the catalog. Failures are logged, not returned.
func (c *CatalogCache) Put(ctx context.Context, entries []course.Entry) {
	if err := c.cache.Set(ctx, catalogKey, entries, c.ttl); err != nil {
		c.log.Warn("catalog cache write failed", logger.Err(err))
	}
}

// Invalidate drops the cached catalog. Called after catalog writes.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if err := c.cache.Delete(ctx, catalogKey); err != nil {
		c.log.Warn("catalog cache invalidation failed", logger.Err(err))
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Cache-coherent repository decorator
// ──────────────────────────────────────────────────────────────────────────────

// CachingCourseRepository wraps a course repository and keeps the catalog
// cache coherent: reads pass through, catalog mutations invalidate.
type CachingCourseRepository struct {
	inner course.Repository
	cache *CatalogCache
}

// NewCachingCourseRepository wraps repo with catalog-cache invalidation.
func NewCachingCourseRepository(inner course.Repository, cache *CatalogCache) *CachingCourseRepository {
	return &CachingCourseRepository{inner: inner, cache: cache}
}

// GetByCode returns a catalog entry.
func (r *CachingCourseRepository) GetByCode(ctx context.Context, code string) (*course.Entry, error) {
	return r.inner.GetByCode(ctx, code)
}

// GetOrCreate returns the entry for a code, dropping the cached catalog when
// a placeholder had to be created.
func (r *CachingCourseRepository) GetOrCreate(ctx context.Context, code string) (*course.Entry, error) {
	if entry, err := r.inner.GetByCode(ctx, code); err == nil {
		return entry, nil
	}
	entry, err := r.inner.GetOrCreate(ctx, code)
	if err != nil {
		return nil, err
	}
	r.cache.Invalidate(ctx)
	return entry, nil
}

// List returns the whole catalog.
func (r *CachingCourseRepository) List(ctx context.Context) ([]course.Entry, error) {
	return r.inner.List(ctx)
}
