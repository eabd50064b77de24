// Package clip provides capture orchestration. It coordinates page
// fetching, post extraction, and publishing into a single capture flow.
package clip

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"

	xclipper "github.com/ochanuco/x-clipper"
)

// statusPathPattern matches the path of a single-post permalink.
var statusPathPattern = regexp.MustCompile(`^/[A-Za-z0-9_]+/status/\d+`)

// supportedHosts are the hosts posts can be captured from.
var supportedHosts = map[string]bool{
	"x.com":           true,
	"www.x.com":       true,
	"twitter.com":     true,
	"www.twitter.com": true,
	"mobile.x.com":    true,
}

// SupportedURL reports whether rawURL is a post permalink on a supported
// host.
func SupportedURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return supportedHosts[u.Hostname()] && statusPathPattern.MatchString(u.Path)
}

// Clipper orchestrates the capture of a single post: fetch the page,
// extract the post, publish it, and mark its URL as seen.
type Clipper struct {
	Fetcher   xclipper.Fetcher
	Extractor xclipper.PostExtractor
	Publisher xclipper.Publisher
	Settings  xclipper.SettingsService
	Seen      xclipper.SeenFilter
	Logger    *slog.Logger
}

// ClipURL captures the post at rawURL. Settings are validated before the
// page is fetched so that configuration problems surface without network
// traffic.
func (c *Clipper) ClipURL(ctx context.Context, rawURL string) (*xclipper.PublishResult, error) {
	if !SupportedURL(rawURL) {
		return nil, xclipper.Errorf(xclipper.EINVALID, "unsupported post URL %q", rawURL)
	}

	settings, err := c.Settings.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	html, err := c.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	return c.clip(ctx, html, rawURL, settings)
}

// ClipHTML captures the post embedded in already-fetched HTML. The page
// URL anchors relative URL resolution and metadata backfill.
func (c *Clipper) ClipHTML(ctx context.Context, html, pageURL string) (*xclipper.PublishResult, error) {
	settings, err := c.Settings.Settings(ctx)
	if err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return c.clip(ctx, html, pageURL, settings)
}

func (c *Clipper) clip(ctx context.Context, html, pageURL string, settings *xclipper.Settings) (*xclipper.PublishResult, error) {
	post, err := c.Extractor.ExtractPost(html, pageURL)
	if err != nil {
		return nil, err
	}

	result, err := c.Publisher.Publish(ctx, post, settings)
	if err != nil {
		return nil, err
	}

	if c.Seen != nil && post.URL != "" {
		c.Seen.AddURL(post.URL)
	}
	if c.Logger != nil {
		c.Logger.Info("post captured",
			"postUrl", post.URL,
			"pageId", result.PageID,
		)
	}

	return result, nil
}
