package viewport

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"wikiterm/document"
	"wikiterm/history"
	"wikiterm/layout"
)

// RequestKind says how a requested page relates to the current one.
type RequestKind int

const (
	// Follow opens a new page; the current page goes onto the back stack.
	Follow RequestKind = iota
	Back
	Forward
)

func (k RequestKind) String() string {
	switch k {
	case Back:
		return "back"
	case Forward:
		return "forward"
	default:
		return "follow"
	}
}

// NavigationRequest asks the caller to fetch a page. ID identifies the
// request in the matching Response.
type NavigationRequest struct {
	ID         string
	Kind       RequestKind
	Identifier string
	Anchor     string
	// Snapshot is the reading position to restore once the page is loaded.
	Snapshot *history.Snapshot
}

// Response is the outcome of a NavigationRequest. Exactly one of Document
// and Err is set.
type Response struct {
	ID       string
	Document *document.Document
	Err      error
}

// LoadOptions position the window on a newly loaded page. Snapshot wins
// over Anchor; with neither the page opens at the top.
type LoadOptions struct {
	Anchor   string
	Snapshot *history.Snapshot
}

// request records a new pending request, superseding any earlier one.
func (c *Controller) request(kind RequestKind, identifier, anchor string, snap *history.Snapshot) NavigationRequest {
	if c.pending != nil {
		c.logger.Debug("superseding request", "id", c.pending.ID, "identifier", c.pending.Identifier)
	}
	req := NavigationRequest{
		ID:         uuid.New().String(),
		Kind:       kind,
		Identifier: identifier,
		Anchor:     anchor,
		Snapshot:   snap,
	}
	c.pending = &req
	c.logger.Debug("navigation requested", "id", req.ID, "kind", kind, "identifier", identifier, "anchor", anchor)
	return req
}

// Navigate requests a new page, as if a link to it had been followed.
func (c *Controller) Navigate(identifier, anchor string) NavigationRequest {
	return c.request(Follow, identifier, anchor, nil)
}

// Reopen requests the page of a saved entry and restores its reading
// position when it arrives.
func (c *Controller) Reopen(e history.Entry) NavigationRequest {
	snap := e.Snapshot
	return c.request(Follow, e.Identifier, "", &snap)
}

// Pending returns the request awaiting a response, or nil.
func (c *Controller) Pending() *NavigationRequest {
	return c.pending
}

func (c *Controller) goHistory(kind RequestKind) (Effect, error) {
	peek, word := c.hist.PeekBack, "back"
	if kind == Forward {
		peek, word = c.hist.PeekForward, "forward"
	}
	e, err := peek()
	if err != nil {
		c.notice = "nothing to go " + word + " to"
		return Effect{}, err
	}
	snap := e.Snapshot
	req := c.request(kind, e.Identifier, "", &snap)
	return Effect{Request: &req, HistoryChanged: true}, nil
}

// Resolve completes the pending request. A response to any other request
// is discarded with ErrStaleResponse. A failed fetch keeps the current page
// and history and is reported as a notice.
func (c *Controller) Resolve(resp Response) error {
	if c.pending == nil || resp.ID != c.pending.ID {
		c.logger.Debug("discarding stale response", "id", resp.ID)
		return ErrStaleResponse
	}
	req := *c.pending
	c.pending = nil

	if resp.Err != nil {
		c.notice = failureNotice(req.Identifier, resp.Err)
		return fmt.Errorf("loading %s: %w", req.Identifier, resp.Err)
	}
	if resp.Document == nil {
		c.notice = failureNotice(req.Identifier, ErrNoDocument)
		return fmt.Errorf("loading %s: %w", req.Identifier, ErrNoDocument)
	}

	opts := LoadOptions{Anchor: req.Anchor, Snapshot: req.Snapshot}
	switch req.Kind {
	case Back, Forward:
		pop := c.hist.PopBack
		if req.Kind == Forward {
			pop = c.hist.PopForward
		}
		if _, err := pop(c.entry()); err != nil {
			return err
		}
		return c.install(resp.Document, opts)
	default:
		return c.LoadDocument(resp.Document, opts)
	}
}

func failureNotice(identifier string, err error) string {
	var fe *document.FetchError
	if errors.As(err, &fe) && fe.Kind == document.NotFound {
		return "page not found: " + identifier
	}
	return fmt.Sprintf("could not load %s: %v", identifier, err)
}

// LoadDocument shows doc as a newly visited page. The current page, if
// any, is pushed onto the back stack and the forward stack is cleared. Any
// pending request is abandoned.
func (c *Controller) LoadDocument(doc *document.Document, opts LoadOptions) error {
	if doc == nil {
		return ErrNoDocument
	}
	c.pending = nil
	if c.doc != nil {
		c.hist.Push(c.entry())
	}
	return c.install(doc, opts)
}

// install replaces the page without touching the history.
func (c *Controller) install(doc *document.Document, opts LoadOptions) error {
	c.doc = doc
	c.layouts = make(map[int]*layout.Result)
	if err := c.relayout(); err != nil {
		return err
	}
	c.top = 0
	c.selected = -1
	c.mode = Browsing
	c.search.Reset()

	switch {
	case opts.Snapshot != nil:
		c.restore(*opts.Snapshot)
	case opts.Anchor != "":
		if err := c.jumpToAnchor(opts.Anchor); err != nil {
			c.notice = "section not found: " + opts.Anchor
			c.logger.Debug("anchor not found", "identifier", doc.Identifier, "anchor", opts.Anchor)
		}
	}
	c.logger.Info("page loaded", "identifier", doc.Identifier, "lines", len(c.lay.Lines))
	return nil
}
