package clip

import (
	"context"
	"sync/atomic"

	xclipper "github.com/ochanuco/x-clipper"
)

// Bridge serializes capture requests the way the page-side and
// background-side of a capture session exchange messages: callers submit
// requests from any goroutine, a single worker processes them in order,
// and at most one capture is in flight at a time.
type Bridge struct {
	clipper  *Clipper
	requests chan bridgeRequest
	inFlight atomic.Bool
}

type bridgeRequest struct {
	kind    requestKind
	html    string
	pageURL string
	reply   chan bridgeReply
}

type bridgeReply struct {
	post   *xclipper.Post
	result *xclipper.PublishResult
	err    error
}

type requestKind int

const (
	kindExtract requestKind = iota
	kindCapture
)

// NewBridge creates a Bridge around the clipper.
func NewBridge(clipper *Clipper) *Bridge {
	return &Bridge{
		clipper:  clipper,
		requests: make(chan bridgeRequest),
	}
}

// Run processes requests until the context is canceled. It always
// returns the context's error.
func (b *Bridge) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-b.requests:
			req.reply <- b.handle(ctx, req)
		}
	}
}

func (b *Bridge) handle(ctx context.Context, req bridgeRequest) bridgeReply {
	switch req.kind {
	case kindExtract:
		post, err := b.clipper.Extractor.ExtractPost(req.html, req.pageURL)
		return bridgeReply{post: post, err: err}
	case kindCapture:
		result, err := b.clipper.ClipHTML(ctx, req.html, req.pageURL)
		return bridgeReply{result: result, err: err}
	default:
		return bridgeReply{err: xclipper.Errorf(xclipper.EINTERNAL, "unknown bridge request kind %d", req.kind)}
	}
}

// Extract parses the post out of html without publishing it.
func (b *Bridge) Extract(ctx context.Context, html, pageURL string) (*xclipper.Post, error) {
	reply, err := b.submit(ctx, bridgeRequest{kind: kindExtract, html: html, pageURL: pageURL})
	if err != nil {
		return nil, err
	}
	return reply.post, reply.err
}

// Capture runs the full capture flow for the post embedded in html.
func (b *Bridge) Capture(ctx context.Context, html, pageURL string) (*xclipper.PublishResult, error) {
	reply, err := b.submit(ctx, bridgeRequest{kind: kindCapture, html: html, pageURL: pageURL})
	if err != nil {
		return nil, err
	}
	return reply.result, reply.err
}

// submit hands a request to the worker. A second request while one is in
// flight is rejected immediately rather than queued behind it.
func (b *Bridge) submit(ctx context.Context, req bridgeRequest) (bridgeReply, error) {
	if !b.inFlight.CompareAndSwap(false, true) {
		return bridgeReply{}, xclipper.Errorf(xclipper.EUNAVAILABLE, "a capture is already in progress")
	}
	defer b.inFlight.Store(false)

	req.reply = make(chan bridgeReply, 1)

	select {
	case <-ctx.Done():
		return bridgeReply{}, ctx.Err()
	case b.requests <- req:
	}

	select {
	case <-ctx.Done():
		return bridgeReply{}, ctx.Err()
	case reply := <-req.reply:
		return reply, nil
	}
}
