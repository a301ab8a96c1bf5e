package wiki

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"wikiterm/document"
	"wikiterm/tex"
)

// noise matches page furniture that is not part of the article text.
const noise = ".mw-editsection, sup.reference, .reference, .mw-references-wrap, .reflist, " +
	".navbox, .sidebar, .metadata, .ambox, .noprint, .mw-empty-elt, .hatnote, " +
	".mwe-math-mathml-inline, .mwe-math-mathml-display, .mw-cite-backlink, " +
	"#toc, .toc, style, script, figure, .thumb, .gallery"

// Parse converts the HTML of a rendered article into a document.
func Parse(identifier, title, content string) (*document.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parsing article HTML: %w", err)
	}

	root := doc.Find(".mw-parser-output").First()
	if root.Length() == 0 {
		root = doc.Find("body").First()
	}
	if root.Length() == 0 {
		return nil, fmt.Errorf("article %q has no content", title)
	}
	root.Find(noise).Remove()

	blocks := collect(root.Nodes[0])
	return document.New(identifier, title, sectionize(blocks)), nil
}

// sectionize splits a flat block list at its headings. Blocks before the
// first heading form the lead section, which is dropped when empty.
func sectionize(blocks []document.Block) []document.Section {
	sections := []document.Section{{}}
	for _, b := range blocks {
		if h, ok := b.(*document.Heading); ok {
			sections = append(sections, document.Section{Heading: h})
			continue
		}
		last := &sections[len(sections)-1]
		last.Blocks = append(last.Blocks, b)
	}
	if len(sections[0].Blocks) == 0 {
		sections = sections[1:]
	}
	return sections
}

// collect turns the children of n into blocks. Loose inline content between
// block elements becomes a paragraph.
func collect(n *html.Node) []document.Block {
	var out []document.Block
	var inline []document.InlineSpan

	flush := func() {
		if hasText(inline) {
			out = append(out, document.Para(trim(inline)...))
		}
		inline = nil
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			inline = append(inline, spans(c, document.Style{})...)
			continue
		}
		if c.Type != html.ElementNode {
			continue
		}

		switch c.Data {
		case "h1", "h2", "h3", "h4", "h5", "h6":
			flush()
			if h := heading(c, c); h != nil {
				out = append(out, h)
			}
		case "p":
			flush()
			if s := spans(c, document.Style{}); hasText(s) {
				out = append(out, document.Para(trim(s)...))
			}
		case "ul", "ol":
			flush()
			if l := list(c); l != nil {
				out = append(out, l)
			}
		case "dl":
			flush()
			out = append(out, definitions(c)...)
		case "table":
			flush()
			if t := table(c); t != nil {
				out = append(out, t)
			}
		case "pre":
			flush()
			if text := strings.TrimSpace(textContent(c)); text != "" {
				out = append(out, document.Para(document.Mono(text)))
			}
		case "div":
			flush()
			if hasClass(c, "mw-heading") {
				if h := headingIn(c); h != nil {
					out = append(out, h)
					continue
				}
			}
			out = append(out, collect(c)...)
		case "blockquote", "section", "center", "article", "main", "body":
			flush()
			out = append(out, collect(c)...)
		default:
			inline = append(inline, spans(c, document.Style{})...)
		}
	}
	flush()
	return out
}

// nested collects blocks for a list item or table cell, where headings are
// shown as strong paragraphs.
func nested(n *html.Node) []document.Block {
	blocks := collect(n)
	for i, b := range blocks {
		if h, ok := b.(*document.Heading); ok {
			s := make([]document.InlineSpan, len(h.Spans))
			for j, sp := range h.Spans {
				sp.Style.Strong = true
				s[j] = sp
			}
			blocks[i] = document.Para(s...)
		}
	}
	return blocks
}

func headingIn(n *html.Node) *document.Heading {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && headingLevel(c.Data) > 0 {
			return heading(c, n)
		}
	}
	return nil
}

// heading builds a heading from h. The anchor comes from the id of h, of
// its .mw-headline child, or of wrapper.
func heading(h, wrapper *html.Node) *document.Heading {
	s := spans(h, document.Style{})
	if !hasText(s) {
		return nil
	}
	anchor := attr(h, "id")
	if anchor == "" {
		if hl := findClass(h, "mw-headline"); hl != nil {
			anchor = attr(hl, "id")
		}
	}
	if anchor == "" && wrapper != h {
		anchor = attr(wrapper, "id")
	}
	return document.Head(headingLevel(h.Data), anchor, trim(s)...)
}

// headingLevel maps h2 to level 1; an article's h1 is its title.
func headingLevel(tag string) int {
	switch tag {
	case "h1", "h2":
		return 1
	case "h3":
		return 2
	case "h4":
		return 3
	case "h5":
		return 4
	case "h6":
		return 5
	}
	return 0
}

func list(n *html.Node) *document.List {
	l := &document.List{Ordered: n.Data == "ol"}
	if l.Ordered {
		if start, err := strconv.Atoi(attr(n, "start")); err == nil {
			l.Start = start
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.Data != "li" {
			continue
		}
		if item := nested(c); len(item) > 0 {
			l.Items = append(l.Items, item)
		}
	}
	if len(l.Items) == 0 {
		return nil
	}
	return l
}

// definitions renders a description list as a strong term followed by its
// descriptions.
func definitions(n *html.Node) []document.Block {
	var out []document.Block
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "dt":
			if s := spans(c, document.Style{Strong: true}); hasText(s) {
				out = append(out, document.Para(trim(s)...))
			}
		case "dd":
			out = append(out, nested(c)...)
		}
	}
	return out
}

func table(n *html.Node) *document.Table {
	t := &document.Table{}
	var rows func(*html.Node)
	rows = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.Data {
			case "thead", "tbody", "tfoot":
				rows(c)
			case "tr":
				if row := cells(c); len(row) > 0 {
					t.Rows = append(t.Rows, row)
				}
			}
		}
	}
	rows(n)
	if len(t.Rows) == 0 {
		return nil
	}
	return t
}

func cells(tr *html.Node) []document.Cell {
	var row []document.Cell
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || (c.Data != "td" && c.Data != "th") {
			continue
		}
		row = append(row, document.Cell{Header: c.Data == "th", Blocks: nested(c)})
	}
	return row
}

// spans flattens the inline content of n.
func spans(n *html.Node, st document.Style) []document.InlineSpan {
	switch n.Type {
	case html.TextNode:
		text := collapse(n.Data)
		if text == "" {
			return nil
		}
		return []document.InlineSpan{{Text: text, Style: st}}
	case html.ElementNode:
	default:
		return nil
	}

	switch n.Data {
	case "b", "strong":
		st.Strong = true
	case "i", "em", "cite", "dfn":
		st.Emphasis = true
	case "code", "kbd", "tt", "samp", "var":
		st.Monospace = true
	case "br":
		return []document.InlineSpan{{Text: " ", Style: st}}
	case "img":
		if alt := attr(n, "alt"); alt != "" && strings.Contains(attr(n, "class"), "mwe-math") {
			return []document.InlineSpan{document.Mono(tex.Render(alt))}
		}
		return nil
	case "a":
		text := collapse(textContent(n))
		if strings.TrimSpace(text) == "" {
			return nil
		}
		target, ok := classify(n)
		if !ok {
			return []document.InlineSpan{{Text: text, Style: st}}
		}
		return []document.InlineSpan{{Text: text, Style: st, Link: &target}}
	}

	var out []document.InlineSpan
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, spans(c, st)...)
	}
	return out
}

var mediaNamespaces = []string{"File:", "Image:", "Media:"}

// classify decides where a link leads. Links without a usable href are
// rendered as plain text.
func classify(a *html.Node) (document.LinkTarget, bool) {
	href := attr(a, "href")
	switch {
	case href == "":
		return document.LinkTarget{}, false

	case strings.HasPrefix(href, "#"):
		return document.Anchor(unescape(href[1:])), true

	case hasClass(a, "new"):
		page := strings.TrimSuffix(attr(a, "title"), " (page does not exist)")
		if u, err := url.Parse(href); err == nil && u.Query().Get("title") != "" {
			page = pageName(u.Query().Get("title"))
		}
		return document.LinkTarget{Kind: document.LinkRed, Page: page}, true

	case strings.HasPrefix(href, "/wiki/"), strings.HasPrefix(href, "./"):
		ref := strings.TrimPrefix(strings.TrimPrefix(href, "/wiki/"), "./")
		target := document.Internal(pageName(ref))
		target.Anchor = strings.ReplaceAll(target.Anchor, " ", "_")
		for _, ns := range mediaNamespaces {
			if strings.HasPrefix(target.Page, ns) {
				target.Kind = document.LinkMedia
			}
		}
		return target, true

	case strings.HasPrefix(href, "//"):
		return document.External("https:" + href), true

	}
	if u, err := url.Parse(href); err == nil && u.Scheme != "" {
		return document.External(href), true
	}
	return document.LinkTarget{}, false
}

// pageName turns a URL path segment into a page title.
func pageName(ref string) string {
	return strings.ReplaceAll(unescape(ref), "_", " ")
}

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}

// collapse folds whitespace runs into single spaces, keeping a leading or
// trailing space so neighbouring spans stay separated.
func collapse(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s != "" {
			return " "
		}
		return ""
	}
	out := strings.Join(fields, " ")
	if isSpace(s[0]) {
		out = " " + out
	}
	if isSpace(s[len(s)-1]) {
		out += " "
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f'
}

func hasText(s []document.InlineSpan) bool {
	return strings.TrimSpace(document.PlainText(s)) != ""
}

// trim drops surrounding whitespace from a span run.
func trim(s []document.InlineSpan) []document.InlineSpan {
	for len(s) > 0 && strings.TrimSpace(s[0].Text) == "" {
		s = s[1:]
	}
	for len(s) > 0 && strings.TrimSpace(s[len(s)-1].Text) == "" {
		s = s[:len(s)-1]
	}
	if len(s) == 0 {
		return nil
	}
	out := append([]document.InlineSpan(nil), s...)
	out[0].Text = strings.TrimLeft(out[0].Text, " ")
	out[len(out)-1].Text = strings.TrimRight(out[len(out)-1].Text, " ")
	return out
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func findClass(n *html.Node, class string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if hasClass(c, class) {
			return c
		}
		if found := findClass(c, class); found != nil {
			return found
		}
	}
	return nil
}
