package viewport

import (
	"errors"
	"fmt"

	"wikiterm/document"
	"wikiterm/find"
	"wikiterm/history"
	"wikiterm/layout"
)

// CommandKind is an abstract key command.
type CommandKind int

const (
	ScrollUp CommandKind = iota
	ScrollDown
	HalfPageUp
	HalfPageDown
	PageUp
	PageDown
	Top
	Bottom
	NextLink
	PreviousLink
	FirstLink
	LastLink
	ActivateLink
	StartSearch
	SearchInput
	SearchBackspace
	SearchSubmit
	SearchNext
	SearchPrevious
	CancelSearch
	JumpToToc
	GoBack
	GoForward
	Resize
)

var commandNames = map[CommandKind]string{
	ScrollUp:        "scroll-up",
	ScrollDown:      "scroll-down",
	HalfPageUp:      "half-page-up",
	HalfPageDown:    "half-page-down",
	PageUp:          "page-up",
	PageDown:        "page-down",
	Top:             "top",
	Bottom:          "bottom",
	NextLink:        "next-link",
	PreviousLink:    "previous-link",
	FirstLink:       "first-link",
	LastLink:        "last-link",
	ActivateLink:    "activate-link",
	StartSearch:     "start-search",
	SearchInput:     "search-input",
	SearchBackspace: "search-backspace",
	SearchSubmit:    "search-submit",
	SearchNext:      "search-next",
	SearchPrevious:  "search-previous",
	CancelSearch:    "cancel-search",
	JumpToToc:       "jump-to-toc",
	GoBack:          "go-back",
	GoForward:       "go-forward",
	Resize:          "resize",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(k))
}

// Command is one input event. Block is used by JumpToToc, Width and Height
// by Resize and Rune by SearchInput.
type Command struct {
	Kind   CommandKind
	Block  document.BlockID
	Width  int
	Height int
	Rune   rune
}

// Effect tells the caller what to do after a command.
type Effect struct {
	// Request is set when a page must be fetched.
	Request *NavigationRequest
	// HistoryChanged is set when the request moves through the history.
	HistoryChanged bool
}

// Handle applies cmd. Errors are recoverable: the state is left
// consistent and the error is also shown as the view's notice.
func (c *Controller) Handle(cmd Command) (Effect, error) {
	if cmd.Kind != Resize {
		c.notice = ""
	}
	eff, err := c.handle(cmd)
	if err != nil && !errors.Is(err, layout.ErrInvalidLayoutWidth) && c.notice == "" {
		c.notice = err.Error()
	}
	return eff, err
}

func (c *Controller) handle(cmd Command) (Effect, error) {
	switch cmd.Kind {
	case Resize:
		return Effect{}, c.resize(cmd.Width, cmd.Height)
	case CancelSearch:
		c.mode = Browsing
		c.search.Reset()
		return Effect{}, nil
	}
	if c.doc == nil {
		return Effect{}, ErrNoDocument
	}

	switch cmd.Kind {
	case ScrollUp:
		c.scroll(-1)
	case ScrollDown:
		c.scroll(1)
	case HalfPageUp:
		c.scroll(-max(c.height/2, 1))
	case HalfPageDown:
		c.scroll(max(c.height/2, 1))
	case PageUp:
		c.scroll(-c.height)
	case PageDown:
		c.scroll(c.height)
	case Top:
		c.scroll(-c.top)
	case Bottom:
		c.scroll(c.maxTop() - c.top)
	case NextLink:
		return Effect{}, c.nextLink()
	case PreviousLink:
		return Effect{}, c.previousLink()
	case FirstLink:
		return Effect{}, c.selectLink(0)
	case LastLink:
		return Effect{}, c.selectLink(len(c.lay.Links) - 1)
	case ActivateLink:
		return c.activate()
	case StartSearch:
		c.mode = Searching
		c.search.SetQuery(c.lay.Lines, "")
	case SearchInput:
		if c.mode == Searching && cmd.Rune != 0 {
			c.search.SetQuery(c.lay.Lines, c.search.Query+string(cmd.Rune))
		}
	case SearchBackspace:
		if c.mode == Searching {
			q := []rune(c.search.Query)
			if len(q) > 0 {
				q = q[:len(q)-1]
			}
			c.search.SetQuery(c.lay.Lines, string(q))
		}
	case SearchSubmit:
		return Effect{}, c.submitSearch()
	case SearchNext:
		return Effect{}, c.stepSearch(c.search.Next)
	case SearchPrevious:
		return Effect{}, c.stepSearch(c.search.Previous)
	case JumpToToc:
		return Effect{}, c.jumpToBlock(cmd.Block)
	case GoBack:
		return c.goHistory(Back)
	case GoForward:
		return c.goHistory(Forward)
	default:
		return Effect{}, fmt.Errorf("unknown command %s", cmd.Kind)
	}
	return Effect{}, nil
}

// scroll moves the window and keeps the selection on screen.
func (c *Controller) scroll(delta int) {
	c.setTop(c.top + delta)
	c.followSelection()
}

func (c *Controller) linkVisible(l layout.Link) bool {
	return l.FirstLine >= c.top && l.FirstLine < c.top+c.height
}

// followSelection moves a selection that scrolled out of the window to the
// nearest visible link. Without a visible link the selection is kept.
func (c *Controller) followSelection() {
	if c.selected < 0 || c.selected >= len(c.lay.Links) {
		return
	}
	cur := c.lay.Links[c.selected]
	if c.linkVisible(cur) {
		return
	}
	if cur.FirstLine < c.top {
		for i := c.selected + 1; i < len(c.lay.Links); i++ {
			if c.linkVisible(c.lay.Links[i]) {
				c.selected = i
				return
			}
		}
		return
	}
	for i := c.selected - 1; i >= 0; i-- {
		if c.linkVisible(c.lay.Links[i]) {
			c.selected = i
			return
		}
	}
}

// ensureVisible scrolls the least amount that shows every row of the link,
// or its first row when the link is taller than the window.
func (c *Controller) ensureVisible(l layout.Link) {
	switch {
	case l.FirstLine < c.top:
		c.setTop(l.FirstLine)
	case l.LastLine >= c.top+c.height:
		c.setTop(max(l.LastLine-c.height+1, 0))
		if l.FirstLine < c.top {
			c.setTop(l.FirstLine)
		}
	}
}

func (c *Controller) selectLink(i int) error {
	if i < 0 || i >= len(c.lay.Links) {
		return ErrNoMoreLinks
	}
	c.selected = i
	c.ensureVisible(c.lay.Links[i])
	return nil
}

// nextLink selects the link after the selection, or the first link at or
// below the top of the window when nothing on screen is selected.
func (c *Controller) nextLink() error {
	links := c.lay.Links
	next := c.selected + 1
	if c.selected < 0 || links[c.selected].FirstLine < c.top {
		next = len(links)
		for i, l := range links {
			if l.FirstLine >= c.top {
				next = i
				break
			}
		}
	}
	return c.selectLink(next)
}

// previousLink selects the link before the selection, or the last link
// above the bottom of the window when nothing on screen is selected.
func (c *Controller) previousLink() error {
	links := c.lay.Links
	prev := c.selected - 1
	if c.selected < 0 || links[c.selected].FirstLine >= c.top+c.height {
		prev = -1
		for i := len(links) - 1; i >= 0; i-- {
			if links[i].FirstLine < c.top+c.height {
				prev = i
				break
			}
		}
	}
	return c.selectLink(prev)
}

func (c *Controller) activate() (Effect, error) {
	if c.selected < 0 || c.selected >= len(c.lay.Links) {
		return Effect{}, ErrNoSelection
	}
	target := c.lay.Links[c.selected].Target

	switch target.Kind {
	case document.LinkAnchor:
		return Effect{}, c.jumpToAnchor(target.Anchor)
	case document.LinkInternal:
		if target.Page == c.doc.Identifier || target.Page == c.doc.Title {
			return Effect{}, c.jumpToAnchor(target.Anchor)
		}
		req := c.request(Follow, target.Page, target.Anchor, nil)
		return Effect{Request: &req}, nil
	case document.LinkExternal:
		c.notice = "external link: " + target.URL
	case document.LinkRed:
		c.notice = "page does not exist: " + target.Page
	case document.LinkMedia:
		c.notice = "media is not supported: " + target.Page
	}
	return Effect{}, fmt.Errorf("%w: %s", ErrLinkNotFollowable, target)
}

// contentTop is the anchor of the top of every page.
const contentTop = "Content_Top"

func (c *Controller) jumpToAnchor(anchor string) error {
	if anchor == "" || anchor == contentTop {
		c.setTop(0)
		c.followSelection()
		return nil
	}
	id, ok := c.doc.AnchorBlock(anchor)
	if !ok {
		return fmt.Errorf("%w: #%s", ErrUnknownTocTarget, anchor)
	}
	return c.jumpToBlock(id)
}

func (c *Controller) jumpToBlock(id document.BlockID) error {
	line, ok := c.lay.Targets[id]
	if !ok {
		return fmt.Errorf("%w: block %d", ErrUnknownTocTarget, id)
	}
	c.setTop(line)
	c.followSelection()
	return nil
}

func (c *Controller) submitSearch() error {
	c.mode = Browsing
	if !c.search.Active() {
		c.search.Reset()
		return nil
	}
	if _, ok := c.search.CurrentMatch(); ok {
		return nil
	}
	return c.stepSearch(c.search.Next)
}

func (c *Controller) stepSearch(step func() (find.Match, error)) error {
	m, err := step()
	if err != nil {
		if c.search.Active() {
			c.notice = fmt.Sprintf("no matches for %q", c.search.Query)
		}
		return err
	}
	if m.Line < c.top || m.Line >= c.top+c.height {
		c.setTop(m.Line)
		c.followSelection()
	}
	return nil
}

// resize lays the page out again when the width changed, keeping the
// topmost visible block and the selected link in place.
func (c *Controller) resize(width, height int) error {
	if width < 1 {
		return layout.ErrInvalidLayoutWidth
	}
	height = max(height, 1)
	if width == c.width && height == c.height {
		return nil
	}

	if c.doc == nil {
		c.width, c.height = width, height
		return nil
	}

	if width != c.width {
		anchor := c.lay.BlockAt(c.top)
		var sel *layout.Link
		if c.selected >= 0 && c.selected < len(c.lay.Links) {
			l := c.lay.Links[c.selected]
			sel = &l
		}

		c.width = width
		if err := c.relayout(); err != nil {
			return err
		}

		c.top = 0
		if line, ok := c.lay.Targets[anchor]; ok {
			c.top = line
		}
		c.selected = -1
		if sel != nil {
			for i, l := range c.lay.Links {
				if l.Block == sel.Block && l.Span == sel.Span {
					c.selected = i
					break
				}
			}
		}
		if c.search.Active() {
			c.search.Refresh(c.lay.Lines)
		}
	}

	c.height = height
	c.setTop(c.top)
	c.followSelection()
	return nil
}

// restore applies a saved reading position. The exact row is only reused at
// the width it was saved at; otherwise the saved block is shown at the top.
func (c *Controller) restore(s history.Snapshot) {
	if s.Width == c.width {
		c.setTop(s.Top)
		if s.Selected >= 0 && s.Selected < len(c.lay.Links) {
			c.selected = s.Selected
		}
		return
	}
	if line, ok := c.lay.Targets[s.Block]; ok {
		c.setTop(line)
	}
}
