// Package goquery provides CSS-selector based post extraction and capture
// control placement for the supported page layout family.
package goquery

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xclipper "github.com/ochanuco/x-clipper"
	"golang.org/x/net/html"
)

// defaultOrigin anchors site-relative URLs when the page URL is unusable.
const defaultOrigin = "https://x.com"

// postContainerSelector matches the structural containers of a post.
// Detail pages and timeline pages use different testids for the same thing.
const postContainerSelector = `article[data-testid="tweet"], article[data-testid="tweetDetail"]`

// postContentSelector gates extraction: a container with none of these is
// an empty shell (ad slot, placeholder) rather than a post.
const postContentSelector = `[data-testid="User-Names"], [data-testid="User-Name"], div[data-testid="tweetText"], time, [data-testid="tweetPhoto"], [data-testid="previewImage"], [data-testid="card.previewImage"], [data-testid="videoPlayer"], video[data-testid="tweetGifPlayerVideo"]`

// profilePathPattern matches an anchor path that points at a user profile.
var profilePathPattern = regexp.MustCompile(`^/[A-Za-z0-9_]+/?$`)

// ogTitlePattern matches the document title form "Display Name (@handle)".
var ogTitlePattern = regexp.MustCompile(`^(.*?)\s+\((@[^\s)]+)\)`)

// reservedPathSegments never name a user in a post permalink path.
var reservedPathSegments = map[string]bool{"i": true, "web": true, "status": true}

// Ensure Extractor implements xclipper.PostExtractor at compile time.
var _ xclipper.PostExtractor = (*Extractor)(nil)

// Extractor extracts normalized post records from rendered HTML using a
// layered fallback strategy. The page ships region-specific markup,
// renders identity and text lazily, and nests quoted posts whose media
// must not leak into the outer record; each stage only fills fields the
// previous stages left empty.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractPost extracts the primary post from a rendered page.
// Returns ENOTFOUND when no post container is present or the container
// yields a record with no identity and no body text.
func (e *Extractor) ExtractPost(rawHTML, pageURL string) (*xclipper.Post, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, xclipper.Errorf(xclipper.EINVALID, "failed to parse HTML: %v", err)
	}

	container := doc.Find(postContainerSelector).First()
	if container.Length() == 0 {
		return nil, xclipper.Errorf(xclipper.ENOTFOUND, "no post found on page")
	}

	post := e.collectFromContainer(doc, container, pageURL)
	if post == nil {
		return nil, xclipper.Errorf(xclipper.ENOTFOUND, "no post found on page")
	}
	return post, nil
}

// ExtractPosts extracts every post on a rendered page in document order.
// Containers that fail extraction are skipped, never reported as errors.
func (e *Extractor) ExtractPosts(rawHTML, pageURL string) ([]*xclipper.Post, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, xclipper.Errorf(xclipper.EINVALID, "failed to parse HTML: %v", err)
	}

	var posts []*xclipper.Post
	doc.Find(postContainerSelector).Each(func(_ int, container *goquery.Selection) {
		if post := e.collectFromContainer(doc, container, pageURL); post != nil {
			posts = append(posts, post)
		}
	})
	return posts, nil
}

// collectFromContainer runs the extraction stages against one container.
// Returns nil when the container holds no usable post.
func (e *Extractor) collectFromContainer(doc *goquery.Document, container *goquery.Selection, pageURL string) *xclipper.Post {
	if container.Find(postContentSelector).Length() == 0 {
		return nil
	}

	origin := pageOrigin(pageURL)

	author, handle := extractIdentity(container, origin)
	text := extractBodyText(container)
	timestamp := extractTimestamp(container)
	avatarURL := extractAvatarURL(container, origin)
	mediaURLs := collectMediaURLs(container, avatarURL, origin)

	// Document metadata backfills identity fields the container left
	// empty. Container-derived signal is authoritative and is never
	// overridden here.
	if author == "" || handle == "" {
		author, handle = backfillIdentity(doc, pageURL, author, handle, text)
	}

	post := &xclipper.Post{
		Author:    author,
		Handle:    handle,
		Text:      text,
		Timestamp: timestamp,
		URL:       extractCanonicalURL(doc, container, pageURL, origin),
		AvatarURL: avatarURL,
		MediaURLs: mediaURLs,
	}
	if err := post.Validate(); err != nil {
		return nil
	}
	return post
}

// extractIdentity scans the names region's text-bearing elements in
// document order. A leading "@" classifies a candidate as the handle; the
// first non-handle text whose nearest anchor targets a profile path is the
// display name. The scan stops once both are filled.
func extractIdentity(container *goquery.Selection, origin string) (author, handle string) {
	namesRoot := container.Find(`[data-testid="User-Names"], [data-testid="User-Name"]`).First()
	if namesRoot.Length() == 0 {
		return "", ""
	}

	candidates := namesRoot.Find(`span, div[dir="auto"], div[dir="ltr"]`)
	for i := 0; i < candidates.Length(); i++ {
		sel := candidates.Eq(i)
		value := strings.TrimSpace(sel.Text())
		if value == "" {
			continue
		}

		profilePath := ""
		if anchor := sel.Closest("a[href]"); anchor.Length() > 0 {
			href, _ := anchor.Attr("href")
			if u, err := url.Parse(href); err == nil {
				if u.IsAbs() {
					profilePath = u.Path
				} else if resolved, err := url.Parse(origin + href); err == nil {
					profilePath = resolved.Path
				}
			}
		}

		isProfileLink := profilePathPattern.MatchString(profilePath)
		if !isProfileLink && !strings.HasPrefix(value, "@") {
			continue
		}
		if strings.HasPrefix(value, "@") && handle == "" {
			handle = value
		} else if author == "" && !strings.Contains(value, "@") {
			author = value
		}
		if author != "" && handle != "" {
			return author, handle
		}
	}
	return author, handle
}

// extractBodyText concatenates the text container's leaf content in
// document order. Inline emoji images contribute their alt text, line
// breaks contribute a separator; the result is whitespace-collapsed.
func extractBodyText(container *goquery.Selection) string {
	root := container.Find(`div[data-testid="tweetText"]`).First()
	if root.Length() == 0 {
		return ""
	}

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			parts = append(parts, n.Data)
		case html.ElementNode:
			switch n.Data {
			case "img":
				for _, attr := range n.Attr {
					if attr.Key == "alt" && attr.Val != "" {
						parts = append(parts, attr.Val)
					}
				}
			case "br":
				parts = append(parts, "\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, node := range root.Nodes {
		walk(node)
	}

	joined := strings.Join(parts, "")
	return strings.TrimSpace(strings.Join(strings.Fields(joined), " "))
}

// extractTimestamp reads the machine-readable datetime of the first time
// indicator, or empty when the page renders none.
func extractTimestamp(container *goquery.Selection) string {
	datetime, _ := container.Find("time").First().Attr("datetime")
	return datetime
}

// extractAvatarURL resolves the avatar image at its highest-resolution
// responsive candidate.
func extractAvatarURL(container *goquery.Selection, origin string) string {
	img := container.Find(`[data-testid="Tweet-User-Avatar"] img`).First()
	if img.Length() == 0 {
		return ""
	}
	return normalizeMediaURL(bestImageURL(img), origin)
}

// backfillIdentity derives identity fields from document-level metadata:
// the Open Graph title pattern "Name (@handle)", then the creator meta
// tag, then the last non-reserved canonical path segment.
func backfillIdentity(doc *goquery.Document, pageURL, author, handle, bodyText string) (string, string) {
	if ogTitle, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if m := ogTitlePattern.FindStringSubmatch(ogTitle); m != nil {
			if author == "" {
				// The og:title of a media-only post repeats the body
				// text; that is not a display name.
				if candidate := strings.TrimSpace(m[1]); candidate != "" && candidate != bodyText {
					author = candidate
				}
			}
			if handle == "" {
				handle = strings.TrimSpace(m[2])
			}
		}
	}

	if handle == "" {
		if creator, ok := doc.Find(`meta[name="twitter:creator"]`).First().Attr("content"); ok {
			if strings.HasPrefix(creator, "@") {
				handle = strings.TrimSpace(creator)
			}
		}
	}

	if handle == "" {
		canonical := canonicalLink(doc)
		if canonical == "" {
			canonical = pageURL
		}
		if u, err := url.Parse(canonical); err == nil {
			for _, segment := range strings.Split(u.Path, "/") {
				if segment == "" || reservedPathSegments[strings.ToLower(segment)] {
					continue
				}
				if !strings.HasPrefix(segment, "@") {
					segment = "@" + segment
				}
				handle = segment
				break
			}
		}
	}

	if author == "" && handle != "" {
		author = strings.TrimPrefix(handle, "@")
	}
	return author, handle
}

// extractCanonicalURL prefers the permalink wrapped around the timestamp,
// then the document canonical link, then the page URL itself.
func extractCanonicalURL(doc *goquery.Document, container *goquery.Selection, pageURL, origin string) string {
	timeEl := container.Find("time").First()
	if timeEl.Length() > 0 {
		if anchor := timeEl.Closest("a[href]"); anchor.Length() > 0 {
			href, _ := anchor.Attr("href")
			if href != "" {
				if resolved := resolveAgainst(origin, pageURL, href); resolved != "" {
					return resolved
				}
				return href
			}
		}
	}
	if canonical := canonicalLink(doc); canonical != "" {
		return canonical
	}
	return pageURL
}

func canonicalLink(doc *goquery.Document) string {
	href, _ := doc.Find(`link[rel="canonical"]`).First().Attr("href")
	return href
}

// resolveAgainst resolves href against the page URL when parsable, else
// against the site origin.
func resolveAgainst(origin, pageURL, href string) string {
	base, err := url.Parse(pageURL)
	if err != nil || !base.IsAbs() {
		base, err = url.Parse(origin)
		if err != nil {
			return ""
		}
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// pageOrigin reduces a page URL to its scheme://host origin.
func pageOrigin(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return defaultOrigin
	}
	return u.Scheme + "://" + u.Host
}
