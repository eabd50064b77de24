// Package rod retrieves rendered post pages using Chrome browser
// automation. The page family renders posts client-side, so a plain HTTP
// fetch returns an empty shell; a real browser is required to capture
// from a URL.
package rod

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod/lib/proto"
	xclipper "github.com/ochanuco/x-clipper"
)

// postReadySelector is the element whose presence signals the post has
// rendered. Waiting for it is best effort; pages without a post still
// return their HTML and fail later in extraction.
const postReadySelector = `article[data-testid="tweet"], article[data-testid="tweetDetail"]`

// postReadyTimeout bounds the best-effort wait for the post to render.
const postReadyTimeout = 5 * time.Second

// Ensure Fetcher implements xclipper.Fetcher at compile time.
var _ xclipper.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
	closed  atomic.Bool
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchTimeout bounds each fetch. Zero means no per-fetch timeout
// beyond the caller's context.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...FetcherOption) (*Fetcher, error) {
	f := &Fetcher{}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager()
	if err != nil {
		return nil, err
	}
	f.manager = manager

	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.closed.Load() {
		return "", xclipper.Errorf(xclipper.EINVALID, "fetcher is closed")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	// The post renders after the load event. Wait for it briefly, but
	// serve whatever the page holds if it never appears.
	_, _ = page.Timeout(postReadyTimeout).Element(postReadySelector)

	html, err := page.HTML()
	if err != nil {
		return "", err
	}

	f.manager.IncrementPageCount()

	return html, nil
}

// Close releases browser resources. Close is safe to call multiple times.
func (f *Fetcher) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	return f.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}
