package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	xclipper "github.com/ochanuco/x-clipper"
	xhttp "github.com/ochanuco/x-clipper/http"
	"github.com/ochanuco/x-clipper/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cacheMiss is a GetBySourceURLFn that never finds an entry.
func cacheMiss(ctx context.Context, sourceURL string) (*xclipper.CacheEntry, error) {
	return nil, xclipper.Errorf(xclipper.ENOTFOUND, "cached asset not found")
}

func TestDownloader_Download(t *testing.T) {
	t.Parallel()

	t.Run("downloads an asset with metadata", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("png-bytes"))
		}))
		defer srv.Close()

		dl := xhttp.NewDownloader()
		asset, err := dl.Download(context.Background(), srv.URL+"/media/photo.png", "media-1")

		require.NoError(t, err)
		assert.Equal(t, "media-1", asset.Label)
		assert.Equal(t, srv.URL+"/media/photo.png", asset.SourceURL)
		assert.Equal(t, []byte("png-bytes"), asset.Content)
		assert.Equal(t, "image/png", asset.ContentType)
		assert.Regexp(t, `^media-1-[0-9a-f]+\.png$`, asset.FileName)
	})

	t.Run("rejects an empty URL", func(t *testing.T) {
		t.Parallel()

		dl := xhttp.NewDownloader()
		asset, err := dl.Download(context.Background(), "", "media-1")

		require.Error(t, err)
		assert.Nil(t, asset)
		assert.Equal(t, xclipper.EINVALID, xclipper.ErrorCode(err))
	})

	t.Run("fails on non-success status", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		dl := xhttp.NewDownloader()
		asset, err := dl.Download(context.Background(), srv.URL+"/gone.jpg", "media-1")

		require.Error(t, err)
		assert.Nil(t, asset)
		assert.Equal(t, xclipper.EUNAVAILABLE, xclipper.ErrorCode(err))
	})

	t.Run("infers extension from content type when path has none", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/jpeg")
			_, _ = w.Write([]byte("jpeg-bytes"))
		}))
		defer srv.Close()

		dl := xhttp.NewDownloader()
		asset, err := dl.Download(context.Background(), srv.URL+"/media/ABCDEF", "avatar")

		require.NoError(t, err)
		assert.Regexp(t, `\.jpg$`, asset.FileName)
	})

	t.Run("falls back to bin for unknown content type", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/x-mystery")
			_, _ = w.Write([]byte{0x00, 0x01})
		}))
		defer srv.Close()

		dl := xhttp.NewDownloader()
		asset, err := dl.Download(context.Background(), srv.URL+"/media/ABCDEF", "media-1")

		require.NoError(t, err)
		assert.Regexp(t, `\.bin$`, asset.FileName)
	})

	t.Run("sanitizes the label in the file name", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("x"))
		}))
		defer srv.Close()

		dl := xhttp.NewDownloader()
		asset, err := dl.Download(context.Background(), srv.URL+"/a.png", "weird label/¡!")

		require.NoError(t, err)
		assert.Regexp(t, `^weird-label-+[0-9a-f]+\.png$`, asset.FileName)
	})

	t.Run("generates distinct file names for the same label", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("x"))
		}))
		defer srv.Close()

		dl := xhttp.NewDownloader()

		a, err := dl.Download(context.Background(), srv.URL+"/a.png", "media-1")
		require.NoError(t, err)
		b, err := dl.Download(context.Background(), srv.URL+"/a.png", "media-1")
		require.NoError(t, err)

		assert.NotEqual(t, a.FileName, b.FileName)
	})

	t.Run("writes through to the cache", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("cached-bytes"))
		}))
		defer srv.Close()

		var mu sync.Mutex
		var stored *xclipper.CacheEntry
		cache := &mock.AssetCache{
			GetBySourceURLFn: cacheMiss,
			PutFn: func(ctx context.Context, entry *xclipper.CacheEntry) error {
				mu.Lock()
				defer mu.Unlock()
				stored = entry
				return nil
			},
		}

		dl := xhttp.NewDownloader(xhttp.WithCache(cache))
		asset, err := dl.Download(context.Background(), srv.URL+"/a.png", "media-1")
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return stored != nil
		}, time.Second, 10*time.Millisecond)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, asset.FileName, stored.FileName)
		assert.Equal(t, []byte("cached-bytes"), stored.Blob)
		assert.Equal(t, asset.SourceURL, stored.SourceURL)
		assert.Equal(t, "media-1", stored.Label)
	})

	t.Run("serves a cached asset without re-fetching", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("origin-bytes"))
		}))
		defer srv.Close()

		var mu sync.Mutex
		stored := map[string]*xclipper.CacheEntry{}
		cache := &mock.AssetCache{
			PutFn: func(ctx context.Context, entry *xclipper.CacheEntry) error {
				mu.Lock()
				defer mu.Unlock()
				stored[entry.SourceURL] = entry
				return nil
			},
			GetBySourceURLFn: func(ctx context.Context, sourceURL string) (*xclipper.CacheEntry, error) {
				mu.Lock()
				defer mu.Unlock()
				if entry, ok := stored[sourceURL]; ok {
					return entry, nil
				}
				return nil, xclipper.Errorf(xclipper.ENOTFOUND, "cached asset not found")
			},
		}

		dl := xhttp.NewDownloader(xhttp.WithCache(cache))

		first, err := dl.Download(context.Background(), srv.URL+"/a.png", "media-1")
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(stored) == 1
		}, time.Second, 10*time.Millisecond)

		second, err := dl.Download(context.Background(), srv.URL+"/a.png", "media-1")
		require.NoError(t, err)

		assert.Equal(t, int32(1), requests.Load())
		assert.Equal(t, first.FileName, second.FileName)
		assert.Equal(t, []byte("origin-bytes"), second.Content)
		assert.Equal(t, "image/png", second.ContentType)
	})

	t.Run("cache failure never propagates to the caller", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte("x"))
		}))
		defer srv.Close()

		called := make(chan struct{}, 1)
		cache := &mock.AssetCache{
			GetBySourceURLFn: cacheMiss,
			PutFn: func(ctx context.Context, entry *xclipper.CacheEntry) error {
				called <- struct{}{}
				return xclipper.Errorf(xclipper.EINTERNAL, "disk full")
			},
		}

		dl := xhttp.NewDownloader(xhttp.WithCache(cache))
		asset, err := dl.Download(context.Background(), srv.URL+"/a.png", "media-1")

		require.NoError(t, err)
		require.NotNil(t, asset)

		select {
		case <-called:
		case <-time.After(time.Second):
			t.Fatal("cache write was never attempted")
		}
	})
}

func TestDomainLimiter_Wait(t *testing.T) {
	t.Parallel()

	t.Run("allows the first request immediately", func(t *testing.T) {
		t.Parallel()

		limiter := xhttp.NewDomainLimiter(1.0)

		start := time.Now()
		err := limiter.Wait(context.Background(), "pbs.twimg.com")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("independent domains do not block each other", func(t *testing.T) {
		t.Parallel()

		limiter := xhttp.NewDomainLimiter(1.0)
		require.NoError(t, limiter.Wait(context.Background(), "pbs.twimg.com"))

		start := time.Now()
		err := limiter.Wait(context.Background(), "video.twimg.com")

		require.NoError(t, err)
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("returns an error when the context is canceled", func(t *testing.T) {
		t.Parallel()

		limiter := xhttp.NewDomainLimiter(0.1)
		require.NoError(t, limiter.Wait(context.Background(), "pbs.twimg.com"))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := limiter.Wait(ctx, "pbs.twimg.com")
		require.Error(t, err)
	})
}
