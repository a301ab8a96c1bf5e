// Package viewport drives reading a laid out page: scrolling, link
// selection, in-page search and navigation between pages.
//
// A Controller owns all of the reading state and is not safe for
// concurrent use. Page loads are asynchronous from its point of view: a
// command that leaves the page returns a NavigationRequest, the caller
// fetches the page and hands the outcome back through Resolve. Only the
// response to the most recent request is accepted.
package viewport

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"wikiterm/document"
	"wikiterm/find"
	"wikiterm/history"
	"wikiterm/layout"
)

var (
	ErrNoMoreLinks       = errors.New("no more links")
	ErrNoSelection       = errors.New("no link selected")
	ErrUnknownTocTarget  = errors.New("unknown table of contents target")
	ErrStaleResponse     = errors.New("stale response")
	ErrNoDocument        = errors.New("no document loaded")
	ErrLinkNotFollowable = errors.New("link cannot be followed")
)

// Mode is the input mode of the controller.
type Mode int

const (
	Browsing Mode = iota
	Searching
)

func (m Mode) String() string {
	if m == Searching {
		return "search"
	}
	return "browse"
}

// Controller is the reading state of one terminal window.
type Controller struct {
	width  int
	height int

	doc     *document.Document
	lay     *layout.Result
	layouts map[int]*layout.Result

	top      int
	selected int
	mode     Mode
	search   find.State

	hist    *history.History
	pending *NavigationRequest
	notice  string

	logger *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithHistory uses h instead of an unbounded history.
func WithHistory(h *history.History) Option {
	return func(c *Controller) {
		c.hist = h
	}
}

// WithLogger sets the logger used for navigation and layout events.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// New returns a controller for a window of the given size with no page.
func New(width, height int, opts ...Option) (*Controller, error) {
	if width < 1 {
		return nil, fmt.Errorf("creating viewport: %w", layout.ErrInvalidLayoutWidth)
	}
	c := &Controller{
		width:    width,
		height:   max(height, 1),
		selected: -1,
		search:   find.NewState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.hist == nil {
		c.hist = history.New(0)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return c, nil
}

// View is what the window should show after the last operation.
type View struct {
	Identifier string
	Title      string

	// Lines are the visible rows, starting at line Top.
	Lines  []layout.Line
	Top    int
	Height int
	Total  int
	Width  int

	// Selected is the index into Links of the selected link, or -1.
	Selected int
	Links    []layout.Link
	TOC      []layout.TOCEntry

	Mode  Mode
	Query string
	// Matches are the search matches on the visible rows. Current is the
	// match under the search cursor, if any.
	Matches    []find.Match
	Current    find.Match
	HasCurrent bool
	MatchCount int

	Pending       bool
	PendingTarget string
	Notice        string
}

// Percent returns how far through the page the bottom of the window is.
func (v View) Percent() int {
	if v.Total == 0 {
		return 100
	}
	bottom := min(v.Top+v.Height, v.Total)
	return bottom * 100 / v.Total
}

// View returns the current view.
func (c *Controller) View() View {
	v := View{
		Top:      c.top,
		Height:   c.height,
		Width:    c.width,
		Selected: c.selected,
		Mode:     c.mode,
		Query:    c.search.Query,
		Notice:   c.notice,
	}
	if c.pending != nil {
		v.Pending = true
		v.PendingTarget = c.pending.Identifier
	}
	if c.doc == nil {
		return v
	}

	v.Identifier = c.doc.Identifier
	v.Title = c.doc.Title
	v.Lines = c.lay.Visible(c.top, c.height)
	v.Total = len(c.lay.Lines)
	v.Links = c.lay.Links
	v.TOC = c.lay.TOC
	v.MatchCount = len(c.search.Matches)
	for _, m := range c.search.Matches {
		if m.Line >= c.top && m.Line < c.top+c.height {
			v.Matches = append(v.Matches, m)
		}
	}
	v.Current, v.HasCurrent = c.search.CurrentMatch()
	return v
}

// Document returns the current page, or nil.
func (c *Controller) Document() *document.Document {
	return c.doc
}

// Layout returns the layout of the current page at the current width.
func (c *Controller) Layout() *layout.Result {
	return c.lay
}

// History returns the navigation history.
func (c *Controller) History() *history.History {
	return c.hist
}

// Mode returns the input mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// Current returns the history entry describing the current page and
// reading position.
func (c *Controller) Current() (history.Entry, bool) {
	if c.doc == nil {
		return history.Entry{}, false
	}
	return c.entry(), true
}

// SetNotice shows a transient message until the next command.
func (c *Controller) SetNotice(msg string) {
	c.notice = msg
}

func (c *Controller) entry() history.Entry {
	return history.Entry{Identifier: c.doc.Identifier, Snapshot: c.snapshot()}
}

func (c *Controller) snapshot() history.Snapshot {
	return history.Snapshot{
		Top:      c.top,
		Block:    c.lay.BlockAt(c.top),
		Width:    c.width,
		Selected: c.selected,
	}
}

// relayout lays out the current page at the current width, reusing an
// earlier layout at that width.
func (c *Controller) relayout() error {
	if lay, ok := c.layouts[c.width]; ok {
		c.lay = lay
		return nil
	}
	lay, err := layout.Layout(c.doc, c.width)
	if err != nil {
		return err
	}
	c.logger.Debug("laid out page", "identifier", c.doc.Identifier, "width", c.width, "lines", len(lay.Lines))
	c.layouts[c.width] = lay
	c.lay = lay
	return nil
}

func (c *Controller) maxTop() int {
	if c.lay == nil {
		return 0
	}
	return max(0, len(c.lay.Lines)-c.height)
}

func (c *Controller) setTop(top int) {
	c.top = min(max(top, 0), c.maxTop())
}
