package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	xclipper "github.com/ochanuco/x-clipper"
	"github.com/ochanuco/x-clipper/clip"
	main "github.com/ochanuco/x-clipper/cmd/x-clipper"
	"github.com/ochanuco/x-clipper/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClipper(published *bool) *clip.Clipper {
	return &clip.Clipper{
		Fetcher: &mock.Fetcher{
			FetchFn: func(ctx context.Context, url string) (string, error) {
				return "<html>rendered</html>", nil
			},
		},
		Extractor: &mock.PostExtractor{
			ExtractPostFn: func(html, pageURL string) (*xclipper.Post, error) {
				return &xclipper.Post{
					Author: "Jane Doe",
					Handle: "@janedoe",
					Text:   "hello",
					URL:    "https://x.com/janedoe/status/123456789",
				}, nil
			},
		},
		Publisher: &mock.Publisher{
			PublishFn: func(ctx context.Context, post *xclipper.Post, settings *xclipper.Settings) (*xclipper.PublishResult, error) {
				if published != nil {
					*published = true
				}
				return &xclipper.PublishResult{
					PageID:  "page-1",
					PageURL: "https://www.notion.so/page-1",
				}, nil
			},
		},
		Settings: &mock.SettingsService{
			SettingsFn: func(ctx context.Context) (*xclipper.Settings, error) {
				return &xclipper.Settings{
					APIKey:      "secret_test",
					DatabaseID:  "0123456789abcdef0123456789abcdef",
					PropertyMap: xclipper.DefaultPropertyMap(),
				}, nil
			},
		},
	}
}

func TestClipCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the created page URL", func(t *testing.T) {
		t.Parallel()

		published := false
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Clipper: testClipper(&published),
		}

		cmd := &main.ClipCmd{URL: "https://x.com/janedoe/status/123456789"}
		require.NoError(t, cmd.Run(deps))

		assert.True(t, published)
		assert.Contains(t, stdout.String(), "Saved https://www.notion.so/page-1")
	})

	t.Run("reports an unsupported URL on stderr", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  &bytes.Buffer{},
			Stderr:  stderr,
			Clipper: testClipper(nil),
		}

		cmd := &main.ClipCmd{URL: "https://example.com/post/1"}
		err := cmd.Run(deps)
		require.Error(t, err)
		assert.Equal(t, xclipper.EINVALID, xclipper.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error:")
	})
}

func TestFileCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("captures a post from a saved HTML file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "post.html")
		require.NoError(t, os.WriteFile(path, []byte("<html>saved</html>"), 0o600))

		published := false
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Clipper: testClipper(&published),
		}

		cmd := &main.FileCmd{Path: path, URL: "https://x.com/janedoe/status/123456789"}
		require.NoError(t, cmd.Run(deps))

		assert.True(t, published)
		assert.Contains(t, stdout.String(), "Saved https://www.notion.so/page-1")
	})

	t.Run("fails on a missing file", func(t *testing.T) {
		t.Parallel()

		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  &bytes.Buffer{},
			Stderr:  &bytes.Buffer{},
			Clipper: testClipper(nil),
		}

		cmd := &main.FileCmd{Path: filepath.Join(t.TempDir(), "missing.html")}
		require.Error(t, cmd.Run(deps))
	})
}

func TestCacheListCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists entries with metadata", func(t *testing.T) {
		t.Parallel()

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Cache: &mock.AssetCache{
				ListFn: func(ctx context.Context) ([]*xclipper.CacheEntry, error) {
					return []*xclipper.CacheEntry{
						{
							FileName:  "media-1-abcd.jpg",
							Label:     "media-1",
							SourceURL: "https://pbs.twimg.com/media/AAA?format=jpg&name=orig",
							CreatedAt: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
						},
					}, nil
				},
			},
		}

		cmd := &main.CacheListCmd{}
		require.NoError(t, cmd.Run(deps))

		output := stdout.String()
		assert.Contains(t, output, "media-1-abcd.jpg")
		assert.Contains(t, output, "2026-08-30T12:00:00Z")
		assert.Contains(t, output, "https://pbs.twimg.com/media/AAA")
	})
}

func TestCacheEvictCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("reports the evicted count", func(t *testing.T) {
		t.Parallel()

		cache := &mock.AssetCache{
			EvictExpiredFn: func(ctx context.Context, ttl time.Duration) (int, error) {
				return 4, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Cache:   cache,
			Janitor: &clip.Janitor{Cache: cache},
		}

		cmd := &main.CacheEvictCmd{}
		require.NoError(t, cmd.Run(deps))
		assert.Contains(t, stdout.String(), "Evicted 4 expired cached assets.")
	})

	t.Run("ttl-days overrides the configured TTL", func(t *testing.T) {
		t.Parallel()

		var gotTTL time.Duration
		cache := &mock.AssetCache{
			EvictExpiredFn: func(ctx context.Context, ttl time.Duration) (int, error) {
				gotTTL = ttl
				return 1, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:     context.Background(),
			Stdout:  stdout,
			Stderr:  &bytes.Buffer{},
			Cache:   cache,
			Janitor: &clip.Janitor{Cache: cache},
		}

		cmd := &main.CacheEvictCmd{TTLDays: 2}
		require.NoError(t, cmd.Run(deps))
		assert.Equal(t, 48*time.Hour, gotTTL)
		assert.Contains(t, stdout.String(), "Evicted 1 expired cached assets.")
	})
}
