package notion

import (
	"strings"

	xclipper "github.com/ochanuco/x-clipper"
)

// maxTitleRunes caps the compact title derived from the post text.
const maxTitleRunes = 120

// fallbackTitle is used for posts that carry no text.
const fallbackTitle = "Image"

// buildPageRequest assembles the page creation body: parent database,
// icon from the avatar, cover from the first media item, the mapped
// properties, and the content blocks.
func buildPageRequest(post *xclipper.Post, settings *xclipper.Settings, databaseID string, avatarAsset *xclipper.Asset, mediaAssets map[string]*xclipper.Asset) map[string]any {
	page := map[string]any{
		"parent":     map[string]any{"database_id": databaseID},
		"properties": buildProperties(post, settings.PropertyMap),
		"children":   buildChildren(post, mediaAssets),
	}

	if icon := fileSourceOrExternal(avatarAsset, post.AvatarURL); icon != nil {
		page["icon"] = icon
	}
	if len(post.MediaURLs) > 0 {
		first := post.MediaURLs[0]
		if cover := fileSourceOrExternal(mediaAssets[first], first); cover != nil {
			page["cover"] = cover
		}
	}

	return page
}

// compactTitle derives a single-line title from the post text: the text
// up to the first newline, capped at maxTitleRunes, with an ellipsis
// when truncated.
func compactTitle(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return fallbackTitle
	}

	runes := []rune(trimmed)
	end := len(runes)
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		end = len([]rune(trimmed[:idx]))
	}
	if end > maxTitleRunes {
		end = maxTitleRunes
	}

	title := string(runes[:end])
	if end < len(runes) {
		title += "..."
	}
	return title
}

// buildProperties maps post fields onto database properties. Fields with
// an empty mapped name are omitted, as are empty post fields.
func buildProperties(post *xclipper.Post, propertyMap xclipper.PropertyMap) map[string]any {
	properties := map[string]any{}

	if name := strings.TrimSpace(propertyMap.Title); name != "" {
		properties[name] = map[string]any{
			"title": []any{
				map[string]any{"text": map[string]any{"content": compactTitle(post.Text)}},
			},
		}
	}
	if name := strings.TrimSpace(propertyMap.Author); name != "" && post.Author != "" {
		properties[name] = richText(post.Author)
	}
	if name := strings.TrimSpace(propertyMap.Handle); name != "" && post.Handle != "" {
		properties[name] = richText(post.Handle)
	}
	if name := strings.TrimSpace(propertyMap.PostURL); name != "" {
		properties[name] = map[string]any{"url": post.URL}
	}
	if name := strings.TrimSpace(propertyMap.PostedAt); name != "" && post.Timestamp != "" {
		properties[name] = map[string]any{
			"date": map[string]any{"start": post.Timestamp},
		}
	}

	return properties
}

func richText(content string) map[string]any {
	return map[string]any{
		"rich_text": []any{
			map[string]any{"text": map[string]any{"content": content}},
		},
	}
}

// fileSource references an asset by its confirmed upload, else by its
// source URL.
func fileSource(asset *xclipper.Asset) map[string]any {
	if asset.UploadID != "" {
		return map[string]any{
			"type":        "file_upload",
			"file_upload": map[string]any{"id": asset.UploadID},
		}
	}
	return externalSource(asset.SourceURL)
}

// fileSourceOrExternal prefers the asset and falls back to a bare URL.
// Returns nil when neither is available.
func fileSourceOrExternal(asset *xclipper.Asset, fallbackURL string) map[string]any {
	if asset != nil {
		return fileSource(asset)
	}
	if fallbackURL != "" {
		return externalSource(fallbackURL)
	}
	return nil
}

func externalSource(url string) map[string]any {
	return map[string]any{
		"type":     "external",
		"external": map[string]any{"url": url},
	}
}

// buildChildren assembles the page blocks: one paragraph for the post
// text, then one image block per media URL in extraction order. Media
// whose download or upload failed is referenced externally.
func buildChildren(post *xclipper.Post, mediaAssets map[string]*xclipper.Asset) []any {
	children := []any{}

	if post.Text != "" {
		children = append(children, map[string]any{
			"object": "block",
			"type":   "paragraph",
			"paragraph": map[string]any{
				"rich_text": []any{
					map[string]any{
						"type": "text",
						"text": map[string]any{"content": post.Text},
					},
				},
			},
		})
	}

	for _, mediaURL := range post.MediaURLs {
		if mediaURL == "" {
			continue
		}
		children = append(children, map[string]any{
			"object": "block",
			"type":   "image",
			"image":  fileSourceOrExternal(mediaAssets[mediaURL], mediaURL),
		})
	}

	return children
}
