package xclipper

import "net/url"

// MaxMediaURLs caps the number of media URLs carried by a single post.
const MaxMediaURLs = 4

// Post is the normalized record of one captured social post.
type Post struct {
	// Author is the display name shown on the post (e.g. "Jane Doe").
	Author string `json:"author"`

	// Handle is the @-prefixed account name (e.g. "@janedoe").
	Handle string `json:"handle"`

	// Text is the post body, whitespace-normalized.
	Text string `json:"text"`

	// Timestamp is the machine-readable post time (ISO-8601) or empty.
	Timestamp string `json:"timestamp"`

	// URL is the resolved permalink of the post. Required, absolute.
	URL string `json:"url"`

	// AvatarURL is the author avatar image URL, or empty if none.
	AvatarURL string `json:"avatarUrl"`

	// MediaURLs holds the post's media image/video URLs in visual order,
	// deduplicated, capped at MaxMediaURLs. Never contains the avatar URL.
	MediaURLs []string `json:"mediaUrls"`

	// PropertyMap optionally overrides the configured field-name mapping
	// for this post only.
	PropertyMap *PropertyMap `json:"propertyMap,omitempty"`
}

// Validate returns an error if the post contains invalid fields.
// A post with no identity fields and no body text is invalid.
func (p *Post) Validate() error {
	if p.URL == "" {
		return Errorf(EINVALID, "post URL required")
	}
	if u, err := url.Parse(p.URL); err != nil || !u.IsAbs() {
		return Errorf(EINVALID, "post URL must be absolute: %q", p.URL)
	}
	if p.Author == "" && p.Handle == "" && p.Text == "" {
		return Errorf(EINVALID, "post requires an author, handle, or body text")
	}
	if len(p.MediaURLs) > MaxMediaURLs {
		return Errorf(EINVALID, "post carries %d media URLs, max is %d", len(p.MediaURLs), MaxMediaURLs)
	}
	return nil
}

// PostExtractor produces normalized post records from rendered HTML.
// Implementations never fail on malformed markup; absence of a post
// yields an ENOTFOUND error.
type PostExtractor interface {
	// ExtractPost extracts the primary post from a rendered page.
	// pageURL is the address the HTML was rendered from; it anchors
	// relative URL resolution and identity backfill.
	ExtractPost(html, pageURL string) (*Post, error)

	// ExtractPosts extracts every post found on a rendered page,
	// in document order. An empty page yields an empty slice, not an error.
	ExtractPosts(html, pageURL string) ([]*Post, error)
}

// SeenFilter tracks post URLs that have already been captured.
// False positives are possible; false negatives are not.
type SeenFilter interface {
	AddURL(url string)
	SeenURL(url string) bool
}
