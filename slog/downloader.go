package slog

import (
	"context"
	"log/slog"
	"time"

	xclipper "github.com/ochanuco/x-clipper"
)

// Ensure LoggingDownloader implements xclipper.AssetDownloader.
var _ xclipper.AssetDownloader = (*LoggingDownloader)(nil)

// LoggingDownloader wraps an AssetDownloader with operation logging.
type LoggingDownloader struct {
	next   xclipper.AssetDownloader
	logger *slog.Logger
}

// NewLoggingDownloader creates a new LoggingDownloader.
func NewLoggingDownloader(next xclipper.AssetDownloader, logger *slog.Logger) *LoggingDownloader {
	return &LoggingDownloader{next: next, logger: logger}
}

// Download delegates to the wrapped downloader and logs the operation.
func (d *LoggingDownloader) Download(ctx context.Context, url, label string) (asset *xclipper.Asset, err error) {
	defer func(begin time.Time) {
		bytes := 0
		if asset != nil {
			bytes = len(asset.Content)
		}
		d.logger.Info("asset download",
			"url", url,
			"label", label,
			"bytes", bytes,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return d.next.Download(ctx, url, label)
}
