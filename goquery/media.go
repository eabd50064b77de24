package goquery

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	xclipper "github.com/ochanuco/x-clipper"
)

var widthDescriptorPattern = regexp.MustCompile(`\D`)

// bestImageURL returns the highest-resolution candidate from an image's
// responsive source list, falling back to the rendered src.
func bestImageURL(img *goquery.Selection) string {
	if srcset, ok := img.Attr("srcset"); ok && srcset != "" {
		type candidate struct {
			url  string
			size int
		}
		var candidates []candidate
		for _, item := range strings.Split(srcset, ",") {
			fields := strings.Fields(strings.TrimSpace(item))
			if len(fields) == 0 || fields[0] == "" {
				continue
			}
			c := candidate{url: fields[0]}
			if len(fields) > 1 {
				digits := widthDescriptorPattern.ReplaceAllString(fields[1], "")
				for _, r := range digits {
					c.size = c.size*10 + int(r-'0')
				}
			}
			candidates = append(candidates, c)
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].size > candidates[j].size
		})
		if len(candidates) > 0 {
			return candidates[0].url
		}
	}
	src, _ := img.Attr("src")
	return src
}

// normalizeMediaURL canonicalizes a media URL candidate: protocol-relative
// URLs gain https, site-relative paths resolve against the site origin,
// and image CDN size hints are forced to the original-quality variant.
// blob: URIs are not fetchable out of process and normalize to empty.
func normalizeMediaURL(original, origin string) string {
	if original == "" {
		return ""
	}

	raw := strings.TrimSpace(original)
	if strings.HasPrefix(raw, "blob:") {
		return ""
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	} else if strings.HasPrefix(raw, "/") {
		raw = origin + raw
	}

	if parsed, err := url.Parse(raw); err == nil {
		if parsed.Hostname() == "pbs.twimg.com" {
			q := parsed.Query()
			if name := q.Get("name"); name != "" && name != "orig" {
				q.Set("name", "orig")
				parsed.RawQuery = q.Encode()
			}
			return parsed.String()
		}
	}
	return raw
}

// isLikelyAvatarURL reports whether a URL points at profile imagery.
func isLikelyAvatarURL(u string) bool {
	lower := strings.ToLower(u)
	return strings.Contains(lower, "profile_images") || strings.Contains(lower, "default_profile")
}

// isPlaceholderURL reports whether a URL is a known static decoration
// served from the site's asset CDN rather than post media.
func isPlaceholderURL(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "https://abs.twimg.com") &&
		(strings.Contains(lower, "/og/") || strings.Contains(lower, "/card/") || strings.HasSuffix(lower, "/image.png"))
}

// mediaCollector accumulates normalized, deduplicated media URLs in
// encounter order, rejecting the avatar and placeholder imagery.
type mediaCollector struct {
	avatarURL string
	origin    string
	seen      map[string]bool
	urls      []string
}

func (c *mediaCollector) push(raw string) {
	if raw == "" {
		return
	}
	normalized := normalizeMediaURL(raw, c.origin)
	if normalized == "" || normalized == c.avatarURL {
		return
	}
	if isLikelyAvatarURL(normalized) || isPlaceholderURL(normalized) {
		return
	}
	if c.seen[normalized] {
		return
	}
	c.seen[normalized] = true
	c.urls = append(c.urls, normalized)
}

// ownedByContainer reports whether sel's nearest enclosing post container
// is the given container. This excludes media belonging to a quoted post
// embedded inside the outer one.
func ownedByContainer(sel, container *goquery.Selection) bool {
	owner := sel.Closest(postContainerSelector)
	if owner.Length() == 0 || len(container.Nodes) == 0 {
		return true
	}
	return owner.Nodes[0] == container.Nodes[0]
}

// collectMediaURLs scans photo, preview, and video containers that belong
// to this post only, capping the result at the media limit.
func collectMediaURLs(container *goquery.Selection, avatarURL, origin string) []string {
	c := &mediaCollector{
		avatarURL: avatarURL,
		origin:    origin,
		seen:      make(map[string]bool),
	}

	imageSelectors := []string{
		`[data-testid="tweetPhoto"] img`,
		`[data-testid="previewImage"] img`,
		`[data-testid="card.previewImage"] img`,
	}
	for _, selector := range imageSelectors {
		container.Find(selector).Each(func(_ int, img *goquery.Selection) {
			if !ownedByContainer(img, container) {
				return
			}
			c.push(bestImageURL(img))
		})
	}

	videoSelectors := []string{
		`[data-testid="videoPlayer"] video`,
		`[data-testid="videoPlayer"] source`,
		`video[data-testid="tweetGifPlayerVideo"]`,
	}
	for _, selector := range videoSelectors {
		container.Find(selector).Each(func(_ int, node *goquery.Selection) {
			if !ownedByContainer(node, container) {
				return
			}
			if goquery.NodeName(node) == "video" {
				poster, _ := node.Attr("poster")
				c.push(poster)
				node.Find("source").Each(func(_ int, source *goquery.Selection) {
					src, _ := source.Attr("src")
					c.push(src)
				})
			} else {
				src, _ := node.Attr("src")
				c.push(src)
			}
		})
	}

	if len(c.urls) > xclipper.MaxMediaURLs {
		return c.urls[:xclipper.MaxMediaURLs]
	}
	return c.urls
}
