// Package layout turns a document into terminal rows at a given width.
//
// Layout is a pure function: the same document and width always produce the
// same lines, links and targets. Rows keep integer back-references to the
// blocks and spans they came from so callers can map the screen back to the
// source structure.
package layout

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"wikiterm/document"
	"wikiterm/render"
)

// ErrInvalidLayoutWidth is returned for widths below one cell.
var ErrInvalidLayoutWidth = errors.New("layout: width must be at least 1")

// NoLink marks a fragment that is not part of a link.
const NoLink = -1

// Role says what a fragment is for. Only RoleText and RoleHeading carry
// page text; markers and padding are layout decoration.
type Role int

const (
	RoleText Role = iota
	RoleHeading
	RoleMarker
	RolePadding
)

// Fragment is a run of cells sharing style, role and link.
type Fragment struct {
	Text  string
	Style document.Style
	Role  Role
	Link  int // index into Result.Links, or NoLink
}

// Decoration reports whether the fragment is a marker or padding rather
// than page text.
func (f Fragment) Decoration() bool {
	return f.Role == RoleMarker || f.Role == RolePadding
}

// Line is one terminal row.
type Line struct {
	Index     int
	Fragments []Fragment
	Block     document.BlockID
	// SpanStart and SpanEnd delimit the spans of Block shown on this row,
	// as a half-open range. Both are 0 when the row shows no spans.
	SpanStart int
	SpanEnd   int
}

// Text returns the row as plain text.
func (l Line) Text() string {
	var sb strings.Builder
	for _, f := range l.Fragments {
		sb.WriteString(f.Text)
	}
	return sb.String()
}

// Width returns the display width of the row.
func (l Line) Width() int {
	w := 0
	for _, f := range l.Fragments {
		w += render.StringWidth(f.Text)
	}
	return w
}

// Blank reports whether the row is an inter-block separator.
func (l Line) Blank() bool {
	return len(l.Fragments) == 0
}

// Link is one link occurrence in the laid out page, possibly wrapped over
// several rows. Links are ordered by their first row, then column.
type Link struct {
	ID        int
	Target    document.LinkTarget
	Text      string
	Block     document.BlockID
	Span      int
	FirstLine int
	LastLine  int
	Column    int
}

// TOCEntry is one heading of the table of contents.
type TOCEntry struct {
	Block  document.BlockID
	Level  int
	Number string
	Title  string
	Anchor string
	Line   int
}

// Result is the output of one layout pass.
type Result struct {
	Width int
	Lines []Line
	// Targets maps every block that produced text to its first row.
	Targets map[document.BlockID]int
	Links   []Link
	TOC     []TOCEntry
}

// Layout lays out doc at the given width.
func Layout(doc *document.Document, width int) (*Result, error) {
	if width < 1 {
		return nil, ErrInvalidLayoutWidth
	}

	l := &layouter{}
	var rows []row
	emit := func(unit []row) {
		if len(unit) == 0 {
			return
		}
		if len(rows) > 0 {
			rows = append(rows, row{block: document.NoBlock})
		}
		rows = append(rows, unit...)
	}

	for _, sec := range doc.Sections {
		if sec.Heading != nil {
			emit(l.block(sec.Heading, width, context{}))
		}
		for _, b := range sec.Blocks {
			emit(l.block(b, width, context{}))
		}
	}

	return l.finish(rows, width), nil
}

// Visible returns the rows from top for at most height rows.
func (r *Result) Visible(top, height int) []Line {
	if top < 0 {
		top = 0
	}
	if top >= len(r.Lines) || height <= 0 {
		return nil
	}
	end := top + height
	if end > len(r.Lines) {
		end = len(r.Lines)
	}
	return r.Lines[top:end]
}

// BlockAt returns the block of the first non-blank row at or after line.
func (r *Result) BlockAt(line int) document.BlockID {
	for i := max(line, 0); i < len(r.Lines); i++ {
		if !r.Lines[i].Blank() && r.Lines[i].Block != document.NoBlock {
			return r.Lines[i].Block
		}
	}
	return document.NoBlock
}

// Text returns the whole layout as plain text, one row per line.
func (r *Result) Text() string {
	var sb strings.Builder
	for _, line := range r.Lines {
		sb.WriteString(strings.TrimRight(line.Text(), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// row is a line under construction. starts lists the blocks whose first
// row this is.
type row struct {
	frags     []Fragment
	block     document.BlockID
	spanStart int
	spanEnd   int
	starts    []document.BlockID
}

func (r *row) width() int {
	w := 0
	for _, f := range r.frags {
		w += render.StringWidth(f.Text)
	}
	return w
}

// add appends text, merging with the previous fragment when attributes match.
func (r *row) add(f Fragment) {
	if f.Text == "" {
		return
	}
	if n := len(r.frags); n > 0 {
		last := &r.frags[n-1]
		if last.Style == f.Style && last.Role == f.Role && last.Link == f.Link {
			last.Text += f.Text
			return
		}
	}
	r.frags = append(r.frags, f)
}

func (r *row) noteSpan(span int) {
	if r.spanEnd == 0 {
		r.spanStart, r.spanEnd = span, span+1
		return
	}
	if span < r.spanStart {
		r.spanStart = span
	}
	if span+1 > r.spanEnd {
		r.spanEnd = span + 1
	}
}

// context carries nesting information down the block walk.
type context struct {
	depth     int // 0 for top-level blocks
	listDepth int
	strong    bool
}

func (c context) nested() context {
	c.depth++
	return c
}

type layouter struct {
	links    []Link
	toc      []TOCEntry
	counters []int
}

func (l *layouter) addLink(target document.LinkTarget, block document.BlockID, span int) int {
	l.links = append(l.links, Link{
		Target:    target,
		Block:     block,
		Span:      span,
		FirstLine: -1,
	})
	return len(l.links) - 1
}

func (l *layouter) blocks(blocks []document.Block, width int, ctx context) []row {
	var rows []row
	for _, b := range blocks {
		rows = append(rows, l.block(b, width, ctx)...)
	}
	return rows
}

func (l *layouter) block(b document.Block, width int, ctx context) []row {
	var rows []row
	switch b := b.(type) {
	case *document.Paragraph:
		rows = l.wrap(b.ID(), b.Spans, width, RoleText, ctx.strong)
	case *document.Heading:
		rows = l.heading(b, width, ctx)
	case *document.List:
		rows = l.list(b, width, ctx)
	case *document.Table:
		rows = l.table(b, width, ctx)
	}
	if len(rows) > 0 {
		rows[0].starts = append(rows[0].starts, b.ID())
	}
	return rows
}

func (l *layouter) heading(h *document.Heading, width int, ctx context) []row {
	level := max(h.Level, 1)

	var prefix []Fragment
	if ctx.depth == 0 {
		number := l.number(level)
		l.toc = append(l.toc, TOCEntry{
			Block:  h.ID(),
			Level:  level,
			Number: number,
			Title:  strings.Join(strings.Fields(h.Title()), " "),
			Anchor: h.Anchor,
		})
		if indent := 2 * (level - 1); indent > 0 {
			prefix = append(prefix, Fragment{Text: strings.Repeat(" ", indent), Role: RolePadding, Link: NoLink})
		}
		prefix = append(prefix, Fragment{Text: number + " ", Role: RoleMarker, Style: document.Style{Strong: true}, Link: NoLink})
	}

	return l.hang(h.ID(), prefix, width, func(inner int) []row {
		return l.wrap(h.ID(), h.Spans, inner, RoleHeading, true)
	})
}

// number advances the section counters for a heading of the given level
// and returns its dotted number.
func (l *layouter) number(level int) string {
	for len(l.counters) < level {
		l.counters = append(l.counters, 0)
	}
	l.counters = l.counters[:level]
	l.counters[level-1]++

	parts := make([]string, level)
	for i, n := range l.counters {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ".")
}

var bullets = []string{"•", "◦", "▪"}

func (l *layouter) list(b *document.List, width int, ctx context) []row {
	start := b.Start
	if start == 0 {
		start = 1
	}
	inner := ctx.nested()
	inner.listDepth++

	var rows []row
	for i, item := range b.Items {
		marker := bullets[ctx.listDepth%len(bullets)] + " "
		if b.Ordered {
			marker = strconv.Itoa(start+i) + ". "
		}
		prefix := []Fragment{{Text: marker, Role: RoleMarker, Link: NoLink}}
		rows = append(rows, l.hang(b.ID(), prefix, width, func(w int) []row {
			return l.blocks(item, w, inner)
		})...)
	}
	return rows
}

// hang lays out content at width minus the prefix width, puts the prefix
// on the first row and indents every continuation row by the same amount.
// When the prefix leaves no room it gets a row of its own.
func (l *layouter) hang(block document.BlockID, prefix []Fragment, width int, content func(int) []row) []row {
	pw := 0
	for _, f := range prefix {
		pw += render.StringWidth(f.Text)
	}
	if pw == 0 {
		return content(width)
	}

	if width-pw < 1 {
		head := row{block: block}
		for _, f := range prefix {
			f.Text = render.TruncateToWidth(f.Text, width-head.width())
			head.add(f)
		}
		return append([]row{head}, content(width)...)
	}

	inner := content(width - pw)
	if len(inner) == 0 {
		head := row{block: block}
		for _, f := range prefix {
			head.add(f)
		}
		return []row{head}
	}

	pad := Fragment{Text: strings.Repeat(" ", pw), Role: RolePadding, Link: NoLink}
	out := make([]row, len(inner))
	for i, r := range inner {
		nr := r
		nr.frags = nil
		if i == 0 {
			for _, f := range prefix {
				nr.add(f)
			}
		} else {
			nr.add(pad)
		}
		for _, f := range r.frags {
			nr.add(f)
		}
		out[i] = nr
	}
	return out
}

func (l *layouter) finish(rows []row, width int) *Result {
	res := &Result{
		Width:   width,
		Lines:   make([]Line, len(rows)),
		Targets: make(map[document.BlockID]int),
	}

	for i, r := range rows {
		res.Lines[i] = Line{
			Index:     i,
			Fragments: r.frags,
			Block:     r.block,
			SpanStart: r.spanStart,
			SpanEnd:   r.spanEnd,
		}
		for _, id := range r.starts {
			if _, seen := res.Targets[id]; !seen {
				res.Targets[id] = i
			}
		}

		col := 0
		for _, f := range r.frags {
			if f.Link != NoLink {
				link := &l.links[f.Link]
				if link.FirstLine < 0 {
					link.FirstLine = i
					link.Column = col
				} else if link.LastLine != i {
					link.Text += " "
				}
				link.LastLine = i
				link.Text += f.Text
			}
			col += render.StringWidth(f.Text)
		}
	}

	// Order links by position and renumber the fragments to match.
	order := make([]int, 0, len(l.links))
	for i, link := range l.links {
		if link.FirstLine >= 0 {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		la, lb := l.links[order[a]], l.links[order[b]]
		if la.FirstLine != lb.FirstLine {
			return la.FirstLine < lb.FirstLine
		}
		return la.Column < lb.Column
	})
	remap := make(map[int]int, len(order))
	res.Links = make([]Link, len(order))
	for newID, oldID := range order {
		remap[oldID] = newID
		res.Links[newID] = l.links[oldID]
		res.Links[newID].ID = newID
	}
	for i := range res.Lines {
		for j := range res.Lines[i].Fragments {
			if f := &res.Lines[i].Fragments[j]; f.Link != NoLink {
				f.Link = remap[f.Link]
			}
		}
	}

	for _, entry := range l.toc {
		line, ok := res.Targets[entry.Block]
		if !ok {
			continue
		}
		entry.Line = line
		res.TOC = append(res.TOC, entry)
	}

	return res
}
