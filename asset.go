package xclipper

import (
	"context"
	"time"
)

// MaxDirectUploadBytes is the largest asset the remote API accepts as a
// direct single-part upload. Larger assets degrade to external links.
const MaxDirectUploadBytes = 20 * 1024 * 1024

// Asset is a downloaded piece of media associated with a post.
type Asset struct {
	// Label is the asset's semantic role: "avatar" or "media-N".
	Label string `json:"label"`

	// SourceURL is the normalized URL the asset was downloaded from.
	SourceURL string `json:"sourceUrl"`

	// Content holds the downloaded bytes.
	Content []byte `json:"-"`

	// ContentType is the MIME type reported by the origin.
	ContentType string `json:"contentType"`

	// FileName is the sanitized, collision-resistant local name.
	FileName string `json:"fileName"`

	// UploadID is set once the asset has been accepted by the remote API.
	UploadID string `json:"uploadId,omitempty"`
}

// CacheEntry is the durable form of an asset.
type CacheEntry struct {
	FileName    string    `json:"fileName"`
	Blob        []byte    `json:"-"`
	SourceURL   string    `json:"sourceUrl"`
	Label       string    `json:"label"`
	ContentType string    `json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate returns an error if the entry cannot be stored.
func (e *CacheEntry) Validate() error {
	if e.FileName == "" {
		return Errorf(EINVALID, "cache entry file name required")
	}
	if len(e.Blob) == 0 {
		return Errorf(EINVALID, "cache entry blob required")
	}
	return nil
}

// AssetDownloader fetches remote media and stages it locally.
type AssetDownloader interface {
	// Download fetches url and returns the resulting asset. The label
	// determines the generated file name. Returns EINVALID for an empty
	// URL and EUNAVAILABLE for a non-success HTTP status. Caching the
	// result is a best-effort side effect; a cache failure never
	// propagates to the caller.
	Download(ctx context.Context, url, label string) (*Asset, error)
}

// AssetCache durably stores downloaded assets across process restarts.
// All operations are atomic per key.
type AssetCache interface {
	// Put stores an entry, replacing any existing entry with the same
	// file name.
	Put(ctx context.Context, entry *CacheEntry) error

	// Get retrieves an entry by file name.
	// Returns ENOTFOUND if the entry does not exist.
	Get(ctx context.Context, fileName string) (*CacheEntry, error)

	// GetBySourceURL retrieves the most recently stored entry for a
	// source URL. Returns ENOTFOUND if no entry exists. This is the
	// retry path: media already staged for a URL is served from the
	// cache instead of being fetched again.
	GetBySourceURL(ctx context.Context, sourceURL string) (*CacheEntry, error)

	// Delete removes an entry. Deleting a missing entry is a no-op.
	Delete(ctx context.Context, fileName string) error

	// List returns all entries ordered by creation time, newest first.
	// Blobs are omitted to keep listing cheap.
	List(ctx context.Context) ([]*CacheEntry, error)

	// EvictExpired removes entries older than ttl and returns the count.
	EvictExpired(ctx context.Context, ttl time.Duration) (int, error)
}
