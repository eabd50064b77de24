package slog

import (
	"context"
	"log/slog"
	"time"

	xclipper "github.com/ochanuco/x-clipper"
)

// Ensure LoggingPublisher implements xclipper.Publisher.
var _ xclipper.Publisher = (*LoggingPublisher)(nil)

// LoggingPublisher wraps a Publisher with operation logging.
type LoggingPublisher struct {
	next   xclipper.Publisher
	logger *slog.Logger
}

// NewLoggingPublisher creates a new LoggingPublisher.
func NewLoggingPublisher(next xclipper.Publisher, logger *slog.Logger) *LoggingPublisher {
	return &LoggingPublisher{next: next, logger: logger}
}

// Publish delegates to the wrapped publisher and logs the operation.
func (p *LoggingPublisher) Publish(ctx context.Context, post *xclipper.Post, settings *xclipper.Settings) (result *xclipper.PublishResult, err error) {
	defer func(begin time.Time) {
		pageID := ""
		if result != nil {
			pageID = result.PageID
		}
		p.logger.Info("publish",
			"postUrl", post.URL,
			"media", len(post.MediaURLs),
			"pageId", pageID,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.Publish(ctx, post, settings)
}
