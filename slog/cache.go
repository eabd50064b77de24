package slog

import (
	"context"
	"log/slog"
	"time"

	xclipper "github.com/ochanuco/x-clipper"
)

// Ensure LoggingCache implements xclipper.AssetCache.
var _ xclipper.AssetCache = (*LoggingCache)(nil)

// LoggingCache wraps an AssetCache with operation logging. Only writes
// and evictions are logged; reads stay quiet.
type LoggingCache struct {
	next   xclipper.AssetCache
	logger *slog.Logger
}

// NewLoggingCache creates a new LoggingCache.
func NewLoggingCache(next xclipper.AssetCache, logger *slog.Logger) *LoggingCache {
	return &LoggingCache{next: next, logger: logger}
}

// Put delegates to the wrapped cache and logs the operation.
func (c *LoggingCache) Put(ctx context.Context, entry *xclipper.CacheEntry) (err error) {
	defer func(begin time.Time) {
		c.logger.Info("cache put",
			"fileName", entry.FileName,
			"bytes", len(entry.Blob),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.Put(ctx, entry)
}

// Get delegates to the wrapped cache.
func (c *LoggingCache) Get(ctx context.Context, fileName string) (*xclipper.CacheEntry, error) {
	return c.next.Get(ctx, fileName)
}

// GetBySourceURL delegates to the wrapped cache.
func (c *LoggingCache) GetBySourceURL(ctx context.Context, sourceURL string) (*xclipper.CacheEntry, error) {
	return c.next.GetBySourceURL(ctx, sourceURL)
}

// Delete delegates to the wrapped cache and logs the operation.
func (c *LoggingCache) Delete(ctx context.Context, fileName string) (err error) {
	defer func() {
		c.logger.Info("cache delete",
			"fileName", fileName,
			"err", err,
		)
	}()
	return c.next.Delete(ctx, fileName)
}

// List delegates to the wrapped cache.
func (c *LoggingCache) List(ctx context.Context) ([]*xclipper.CacheEntry, error) {
	return c.next.List(ctx)
}

// EvictExpired delegates to the wrapped cache and logs the operation.
func (c *LoggingCache) EvictExpired(ctx context.Context, ttl time.Duration) (evicted int, err error) {
	defer func(begin time.Time) {
		c.logger.Info("cache eviction",
			"ttl", ttl,
			"evicted", evicted,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return c.next.EvictExpired(ctx, ttl)
}
