// Package notion publishes captured posts to the Notion API.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	xclipper "github.com/ochanuco/x-clipper"
)

// DefaultBaseURL is the Notion API endpoint.
const DefaultBaseURL = "https://api.notion.com/v1"

// maxConcurrentDownloads bounds parallel media downloads per publish.
const maxConcurrentDownloads = 4

// Ensure Client implements xclipper.Publisher at compile time.
var _ xclipper.Publisher = (*Client)(nil)

// Client publishes posts as Notion database pages. Media is uploaded
// through the file upload API where possible; assets that cannot be
// downloaded or uploaded degrade to external links so that a publish
// never fails because of a single asset.
type Client struct {
	httpClient *http.Client
	baseURL    string
	downloader xclipper.AssetDownloader
	cache      xclipper.AssetCache
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint. Used in tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the HTTP client used for API requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithDownloader sets the asset downloader used to stage post media.
// Without a downloader all media degrades to external links.
func WithDownloader(downloader xclipper.AssetDownloader) Option {
	return func(c *Client) {
		c.downloader = downloader
	}
}

// WithCache sets the asset cache. Cached copies are deleted once their
// upload is confirmed.
func WithCache(cache xclipper.AssetCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithLogger sets the logger for asset degradation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    DefaultBaseURL,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Publish creates a database page for the post. The database ID is
// normalized and validated before any network request.
func (c *Client) Publish(ctx context.Context, post *xclipper.Post, settings *xclipper.Settings) (*xclipper.PublishResult, error) {
	if post == nil {
		return nil, xclipper.Errorf(xclipper.EINVALID, "post required")
	}
	if settings == nil {
		return nil, xclipper.Errorf(xclipper.EINVALID, "settings required")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	databaseID, err := xclipper.NormalizeDatabaseID(settings.DatabaseID)
	if err != nil {
		return nil, err
	}

	avatarAsset := c.downloadAsset(ctx, post.AvatarURL, "avatar")

	// Media downloads are independent of each other and a failure only
	// degrades that one asset, so they run concurrently.
	var (
		mu          sync.Mutex
		mediaAssets = make(map[string]*xclipper.Asset, len(post.MediaURLs))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDownloads)
	for i, mediaURL := range post.MediaURLs {
		g.Go(func() error {
			if asset := c.downloadAsset(gctx, mediaURL, fmt.Sprintf("media-%d", i+1)); asset != nil {
				mu.Lock()
				mediaAssets[mediaURL] = asset
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	c.uploadAsset(ctx, settings, avatarAsset)
	for _, mediaURL := range post.MediaURLs {
		c.uploadAsset(ctx, settings, mediaAssets[mediaURL])
	}

	body := buildPageRequest(post, settings, databaseID, avatarAsset, mediaAssets)

	return c.createPage(ctx, settings, body)
}

// downloadAsset stages a single asset. A failed download degrades the
// asset to an external link and never fails the publish.
func (c *Client) downloadAsset(ctx context.Context, url, label string) *xclipper.Asset {
	if url == "" || c.downloader == nil {
		return nil
	}

	asset, err := c.downloader.Download(ctx, url, label)
	if err != nil {
		c.logger.Warn("asset download failed, degrading to external link",
			"url", url,
			"label", label,
			"error", err,
		)
		return nil
	}
	return asset
}

// uploadAsset pushes asset content through the Notion file upload API and
// records the upload ID on success. Oversized assets and upload failures
// leave the asset without an upload ID so the page references it by URL.
func (c *Client) uploadAsset(ctx context.Context, settings *xclipper.Settings, asset *xclipper.Asset) {
	if asset == nil {
		return
	}
	if len(asset.Content) > xclipper.MaxDirectUploadBytes {
		c.logger.Warn("asset exceeds direct upload ceiling, degrading to external link",
			"fileName", asset.FileName,
			"bytes", len(asset.Content),
		)
		return
	}

	uploadID, err := c.createFileUpload(ctx, settings)
	if err == nil {
		err = c.sendFileUpload(ctx, settings, uploadID, asset)
	}
	if err != nil {
		c.logger.Warn("asset upload failed, degrading to external link",
			"fileName", asset.FileName,
			"error", err,
		)
		return
	}

	asset.UploadID = uploadID

	// The cached copy exists so a failed publish can be retried without
	// re-downloading. Once the upload is confirmed it has served its
	// purpose.
	if c.cache != nil {
		if err := c.cache.Delete(ctx, asset.FileName); err != nil {
			c.logger.Warn("failed to delete cached asset after upload",
				"fileName", asset.FileName,
				"error", err,
			)
		}
	}
}

// createFileUpload reserves a single-part file upload and returns its ID.
func (c *Client) createFileUpload(ctx context.Context, settings *xclipper.Settings) (string, error) {
	resp, err := c.request(ctx, settings, http.MethodPost, "/file_uploads",
		"application/json", strings.NewReader(`{"mode":"single_part"}`))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("file upload creation failed (HTTP %d): %s", resp.StatusCode, body)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decoding file upload response: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("file upload response carries no ID")
	}
	return result.ID, nil
}

// sendFileUpload transmits the asset bytes as multipart form data. The
// upload must come back in "uploaded" status to count as confirmed.
func (c *Client) sendFileUpload(ctx context.Context, settings *xclipper.Settings, uploadID string, asset *xclipper.Asset) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename=%q`, asset.FileName))
	if asset.ContentType != "" {
		header.Set("Content-Type", asset.ContentType)
	}

	part, err := form.CreatePart(header)
	if err != nil {
		return err
	}
	if _, err := part.Write(asset.Content); err != nil {
		return err
	}
	if err := form.Close(); err != nil {
		return err
	}

	resp, err := c.request(ctx, settings, http.MethodPost,
		"/file_uploads/"+uploadID+"/send", form.FormDataContentType(), &buf)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("file upload send failed (HTTP %d): %s", resp.StatusCode, body)
	}

	var result struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("decoding file upload send response: %w", err)
	}
	if result.Status != "uploaded" {
		return fmt.Errorf("file upload not completed (status %q)", result.Status)
	}
	return nil
}

// createPage creates the database page and classifies API failures.
func (c *Client) createPage(ctx context.Context, settings *xclipper.Settings, page map[string]any) (*xclipper.PublishResult, error) {
	encoded, err := json.Marshal(page)
	if err != nil {
		return nil, xclipper.Errorf(xclipper.EINTERNAL, "encoding page request: %v", err)
	}

	resp, err := c.request(ctx, settings, http.MethodPost, "/pages",
		"application/json", bytes.NewReader(encoded))
	if err != nil {
		return nil, xclipper.Errorf(xclipper.EINTERNAL, "page creation request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, xclipper.Errorf(xclipper.EINTERNAL, "reading page creation response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var detail struct {
			Code string `json:"code"`
		}
		_ = json.Unmarshal(body, &detail)

		switch {
		case resp.StatusCode == http.StatusNotFound || detail.Code == "object_not_found":
			return nil, xclipper.Errorf(xclipper.ENOTFOUND,
				"Database not found. Check that the database is shared with the integration.")
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, xclipper.Errorf(xclipper.EUNAUTHORIZED,
				"API key is invalid or lacks access. Check the key and the database sharing.")
		case resp.StatusCode == http.StatusBadRequest && detail.Code == "validation_error":
			return nil, xclipper.Errorf(xclipper.EINVALID,
				"Notion rejected the page request: %s", body)
		default:
			return nil, xclipper.Errorf(xclipper.EINTERNAL,
				"page creation failed (HTTP %d): %s", resp.StatusCode, body)
		}
	}

	var result struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, xclipper.Errorf(xclipper.EINTERNAL, "decoding page creation response: %v", err)
	}

	return &xclipper.PublishResult{PageID: result.ID, PageURL: result.URL}, nil
}

// request issues an authenticated API request.
func (c *Client) request(ctx context.Context, settings *xclipper.Settings, method, path, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(settings.APIKey))
	req.Header.Set("Notion-Version", settings.Version())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	return c.httpClient.Do(req)
}
