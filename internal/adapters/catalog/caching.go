package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/okian/completeness/pkg/logger"
	"github.com/okian/completeness/pkg/metrics"
)

// CachingFetcher serves tables from a cache and falls back to a source,
// storing what the source returns.
type CachingFetcher struct {
	source Fetcher
	cache  Cache
	log    logger.Logger
}

// NewCachingFetcher wraps source with cache. A nil cache disables caching.
func NewCachingFetcher(source Fetcher, cache Cache, log logger.Logger) *CachingFetcher {
	if log == nil {
		log = logger.Default()
	}
	return &CachingFetcher{source: source, cache: cache, log: log}
}

// Fetch implements Fetcher. Cache failures other than a miss are logged
// and the source is used; source failures are returned.
func (f *CachingFetcher) Fetch(ctx context.Context, name string) (Table, error) {
	start := time.Now()

	if f.cache != nil {
		t, err := f.cache.Get(ctx, name)
		switch {
		case err == nil:
			metrics.RecordCacheHit(name)
			metrics.RecordCatalogFetch(name, "cache", time.Since(start).Seconds())
			metrics.UpdateCatalogRows(name, t.Len())
			f.log.Debug(ctx, "catalog cache hit", logger.String("table", name), logger.Int("rows", t.Len()))
			return t, nil
		case errors.Is(err, ErrCacheMiss):
			metrics.RecordCacheMiss(name)
		default:
			metrics.RecordCacheMiss(name)
			metrics.RecordErrorByComponent("catalog_cache", "get")
			f.log.Warn(ctx, "catalog cache read failed", logger.String("table", name), logger.Error(err))
		}
	}

	t, err := f.source.Fetch(ctx, name)
	if err != nil {
		metrics.RecordCatalogFetchError(name)
		return Table{}, err
	}
	metrics.RecordCatalogFetch(name, "source", time.Since(start).Seconds())
	metrics.UpdateCatalogRows(name, t.Len())
	f.log.Info(ctx, "catalog fetched", logger.String("table", name), logger.Int("rows", t.Len()),
		logger.Duration("elapsed", time.Since(start)))

	if f.cache != nil {
		if err := f.cache.Put(ctx, t); err != nil {
			metrics.RecordErrorByComponent("catalog_cache", "put")
			f.log.Warn(ctx, "catalog cache write failed", logger.String("table", name), logger.Error(err))
		}
	}
	return t, nil
}
