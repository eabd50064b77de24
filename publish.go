package xclipper

import "context"

// PublishResult identifies the remote page created by a publish.
type PublishResult struct {
	PageID  string `json:"pageId"`
	PageURL string `json:"pageUrl"`
}

// Publisher turns a post record into a remote document.
//
// Implementations download and upload the post's media as part of the
// publish: per-asset failures degrade that asset to a link reference and
// never abort the publish, while credential, database, and request
// failures surface as EINVALID, ENOTFOUND/EUNAUTHORIZED, and EINTERNAL
// respectively. Nothing is retried automatically; cached assets make an
// explicit retry cheap.
type Publisher interface {
	Publish(ctx context.Context, post *Post, settings *Settings) (*PublishResult, error)
}
