package mock

import (
	"context"
	"time"

	xclipper "github.com/ochanuco/x-clipper"
)

var _ xclipper.AssetCache = (*AssetCache)(nil)

// AssetCache is a mock implementation of xclipper.AssetCache.
type AssetCache struct {
	PutFn            func(ctx context.Context, entry *xclipper.CacheEntry) error
	GetFn            func(ctx context.Context, fileName string) (*xclipper.CacheEntry, error)
	GetBySourceURLFn func(ctx context.Context, sourceURL string) (*xclipper.CacheEntry, error)
	DeleteFn         func(ctx context.Context, fileName string) error
	EvictExpiredFn   func(ctx context.Context, ttl time.Duration) (int, error)
	ListFn           func(ctx context.Context) ([]*xclipper.CacheEntry, error)
}

func (c *AssetCache) Put(ctx context.Context, entry *xclipper.CacheEntry) error {
	return c.PutFn(ctx, entry)
}

func (c *AssetCache) Get(ctx context.Context, fileName string) (*xclipper.CacheEntry, error) {
	return c.GetFn(ctx, fileName)
}

func (c *AssetCache) GetBySourceURL(ctx context.Context, sourceURL string) (*xclipper.CacheEntry, error) {
	return c.GetBySourceURLFn(ctx, sourceURL)
}

func (c *AssetCache) Delete(ctx context.Context, fileName string) error {
	return c.DeleteFn(ctx, fileName)
}

func (c *AssetCache) EvictExpired(ctx context.Context, ttl time.Duration) (int, error) {
	return c.EvictExpiredFn(ctx, ttl)
}

func (c *AssetCache) List(ctx context.Context) ([]*xclipper.CacheEntry, error) {
	return c.ListFn(ctx)
}
