package mock

import (
	"context"

	xclipper "github.com/ochanuco/x-clipper"
)

var _ xclipper.Publisher = (*Publisher)(nil)

// Publisher is a mock implementation of xclipper.Publisher.
type Publisher struct {
	PublishFn func(ctx context.Context, post *xclipper.Post, settings *xclipper.Settings) (*xclipper.PublishResult, error)
}

func (p *Publisher) Publish(ctx context.Context, post *xclipper.Post, settings *xclipper.Settings) (*xclipper.PublishResult, error) {
	return p.PublishFn(ctx, post, settings)
}
