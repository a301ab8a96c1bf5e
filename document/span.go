package document

import (
	"fmt"
	"strings"
)

// InlineSpan is a run of text with one style and an optional link.
type InlineSpan struct {
	Text  string
	Style Style
	Link  *LinkTarget
}

// LinkKind classifies where a link leads.
type LinkKind int

const (
	// LinkInternal points to another encyclopedia page.
	LinkInternal LinkKind = iota
	// LinkAnchor points to a heading of the current page.
	LinkAnchor
	// LinkExternal leaves the encyclopedia.
	LinkExternal
	// LinkRed points to a page that does not exist yet.
	LinkRed
	// LinkMedia points to a file or image description page.
	LinkMedia
)

func (k LinkKind) String() string {
	switch k {
	case LinkInternal:
		return "internal"
	case LinkAnchor:
		return "anchor"
	case LinkExternal:
		return "external"
	case LinkRed:
		return "red"
	case LinkMedia:
		return "media"
	default:
		return fmt.Sprintf("LinkKind(%d)", int(k))
	}
}

// LinkTarget is where a link leads. Page and Anchor are set for internal
// and anchor links, URL for external ones.
type LinkTarget struct {
	Kind   LinkKind
	Page   string
	Anchor string
	URL    string
}

func (t LinkTarget) String() string {
	switch t.Kind {
	case LinkAnchor:
		return "#" + t.Anchor
	case LinkExternal:
		return t.URL
	default:
		if t.Anchor != "" {
			return t.Page + "#" + t.Anchor
		}
		return t.Page
	}
}

// Internal returns a target for a page reference of the form "Title" or
// "Title#Anchor".
func Internal(ref string) LinkTarget {
	page, anchor, _ := strings.Cut(ref, "#")
	return LinkTarget{Kind: LinkInternal, Page: page, Anchor: anchor}
}

// Anchor returns an in-page target.
func Anchor(anchor string) LinkTarget {
	return LinkTarget{Kind: LinkAnchor, Anchor: anchor}
}

// External returns a target outside the encyclopedia.
func External(url string) LinkTarget {
	return LinkTarget{Kind: LinkExternal, URL: url}
}

// Text returns an unstyled span.
func Text(s string) InlineSpan {
	return InlineSpan{Text: s}
}

// Bold returns a strong span.
func Bold(s string) InlineSpan {
	return InlineSpan{Text: s, Style: Style{Strong: true}}
}

// Italic returns an emphasised span.
func Italic(s string) InlineSpan {
	return InlineSpan{Text: s, Style: Style{Emphasis: true}}
}

// Mono returns a monospace span.
func Mono(s string) InlineSpan {
	return InlineSpan{Text: s, Style: Style{Monospace: true}}
}

// LinkTo returns a span linking to target.
func LinkTo(s string, target LinkTarget) InlineSpan {
	return InlineSpan{Text: s, Link: &target}
}

// Para builds a paragraph block.
func Para(spans ...InlineSpan) *Paragraph {
	return &Paragraph{Spans: spans}
}

// Head builds a heading block.
func Head(level int, anchor string, spans ...InlineSpan) *Heading {
	return &Heading{Level: level, Anchor: anchor, Spans: spans}
}
