package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	xclipper "github.com/ochanuco/x-clipper"
)

// DefaultFetchTimeout is the default timeout for HTTP page requests.
const DefaultFetchTimeout = 10 * time.Second

// Ensure Fetcher implements xclipper.Fetcher at compile time.
var _ xclipper.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using plain HTTP requests.
// Unlike rod.Fetcher, this does not execute JavaScript and is suitable
// for pre-rendered or static pages only.
type Fetcher struct {
	client   *http.Client
	timeout  time.Duration
	attempts uint
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithAttempts sets the number of fetch attempts for transient failures.
// Defaults to 3 if not specified.
func WithAttempts(n uint) Option {
	return func(f *Fetcher) {
		f.attempts = n
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:  DefaultFetchTimeout,
		attempts: 3,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the HTML content from the given URL. Transient
// failures are retried with jittered backoff; client errors are not.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var html string

	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(err)
			}

			resp, err := f.client.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return retry.Unrecoverable(fmt.Errorf("HTTP %d for %s", resp.StatusCode, url))
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}

			html = string(body)
			return nil
		},
		retry.Attempts(f.attempts),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.MaxJitter(time.Second),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return "", err
	}

	return html, nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
