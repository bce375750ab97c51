// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"

	"github.com/unitrack/unitrack-api/internal/domain/course"
)

// CatalogCache is the optional hot copy of the course catalog. A nil cache
// means every read goes to the repository.
type CatalogCache interface {
	Get(ctx context.Context) ([]course.Entry, bool)
	Put(ctx context.Context, entries []course.Entry)
}

// loadCatalog returns the ordered catalog, preferring the cache.
func loadCatalog(ctx context.Context, repo course.Repository, cache CatalogCache) ([]course.Entry, error) {
	if cache != nil {
		if entries, ok := cache.Get(ctx); ok {
			return entries, nil
		}
	}

	entries, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		cache.Put(ctx, entries)
	}
	return entries, nil
}
