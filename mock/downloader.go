package mock

import (
	"context"

	xclipper "github.com/ochanuco/x-clipper"
)

var _ xclipper.AssetDownloader = (*AssetDownloader)(nil)

// AssetDownloader is a mock implementation of xclipper.AssetDownloader.
type AssetDownloader struct {
	DownloadFn func(ctx context.Context, url, label string) (*xclipper.Asset, error)
}

func (d *AssetDownloader) Download(ctx context.Context, url, label string) (*xclipper.Asset, error) {
	return d.DownloadFn(ctx, url, label)
}
