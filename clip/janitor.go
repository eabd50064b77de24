package clip

import (
	"context"
	"log/slog"
	"time"

	xclipper "github.com/ochanuco/x-clipper"
)

// DefaultSweepInterval is how often the janitor re-checks the cache.
const DefaultSweepInterval = 24 * time.Hour

// Janitor evicts expired asset cache entries: once at startup, then on a
// fixed interval. The TTL comes from the current settings on every sweep
// so configuration changes apply without a restart.
type Janitor struct {
	Cache    xclipper.AssetCache
	Settings xclipper.SettingsService
	Interval time.Duration
	Logger   *slog.Logger
}

// Run sweeps until the context is canceled. It always returns the
// context's error.
func (j *Janitor) Run(ctx context.Context) error {
	interval := j.Interval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	j.sweep(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

// Sweep evicts expired entries once.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	ttl := xclipper.DefaultCacheTTL
	if j.Settings != nil {
		if settings, err := j.Settings.Settings(ctx); err == nil {
			ttl = settings.CacheTTL()
		}
	}
	return j.Cache.EvictExpired(ctx, ttl)
}

func (j *Janitor) sweep(ctx context.Context) {
	evicted, err := j.Sweep(ctx)
	if j.Logger == nil {
		return
	}
	if err != nil {
		j.Logger.Warn("cache eviction failed", "error", err)
		return
	}
	if evicted > 0 {
		j.Logger.Info("evicted expired cached assets", "count", evicted)
	}
}
