package mock

import (
	xclipper "github.com/ochanuco/x-clipper"
)

var _ xclipper.PostExtractor = (*PostExtractor)(nil)

// PostExtractor is a mock implementation of xclipper.PostExtractor.
type PostExtractor struct {
	ExtractPostFn  func(html, pageURL string) (*xclipper.Post, error)
	ExtractPostsFn func(html, pageURL string) ([]*xclipper.Post, error)
}

func (e *PostExtractor) ExtractPost(html, pageURL string) (*xclipper.Post, error) {
	return e.ExtractPostFn(html, pageURL)
}

func (e *PostExtractor) ExtractPosts(html, pageURL string) ([]*xclipper.Post, error) {
	return e.ExtractPostsFn(html, pageURL)
}
