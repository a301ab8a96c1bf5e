// Package document defines the parsed page model the reader lays out:
// sections of blocks (paragraphs, lists, tables, headings) made of styled,
// optionally linked inline spans.
//
// A Document is immutable once built with New. Every block receives a
// position-derived BlockID that indexes the document's block arena, so other
// packages refer to blocks by integer instead of by pointer.
package document

import (
	"strings"
)

// BlockID identifies a block within one document. IDs are assigned in
// depth-first document order starting at 0.
type BlockID int

// NoBlock marks a rendered line that was not produced by any block.
const NoBlock BlockID = -1

// Style is the set of abstract inline attributes. Colors are decided by the
// theme, never here.
type Style struct {
	Emphasis  bool
	Strong    bool
	Monospace bool
}

// Block is one structural unit of a document. The set of implementations is
// closed: *Paragraph, *Heading, *List and *Table.
type Block interface {
	ID() BlockID
	block()
}

// Paragraph is a run of inline spans wrapped as flowing text.
type Paragraph struct {
	id    BlockID
	Spans []InlineSpan
}

// Heading introduces a section or subsection.
type Heading struct {
	id     BlockID
	Level  int // 1 is the outermost level
	Spans  []InlineSpan
	Anchor string // in-page anchor, may be empty
}

// List is a bulleted or numbered list. Each item is a sequence of blocks.
type List struct {
	id      BlockID
	Ordered bool
	Start   int // first ordinal for ordered lists, 0 means 1
	Items   [][]Block
}

// Table is a grid of cells; each cell holds its own blocks.
type Table struct {
	id   BlockID
	Rows [][]Cell
}

// Cell is one table cell.
type Cell struct {
	Header bool
	Blocks []Block
}

func (b *Paragraph) ID() BlockID { return b.id }
func (b *Heading) ID() BlockID   { return b.id }
func (b *List) ID() BlockID      { return b.id }
func (b *Table) ID() BlockID     { return b.id }

func (*Paragraph) block() {}
func (*Heading) block()   {}
func (*List) block()      {}
func (*Table) block()     {}

// Title returns the heading text without styling.
func (b *Heading) Title() string {
	return PlainText(b.Spans)
}

// Columns returns the number of columns of the widest row.
func (b *Table) Columns() int {
	n := 0
	for _, row := range b.Rows {
		if len(row) > n {
			n = len(row)
		}
	}
	return n
}

// Section is a heading followed by its blocks. The lead section of a page
// has no heading.
type Section struct {
	Heading *Heading
	Blocks  []Block
}

// Level returns the heading level, or 0 for a section without heading.
func (s Section) Level() int {
	if s.Heading == nil {
		return 0
	}
	return s.Heading.Level
}

// Document is one fetched page.
type Document struct {
	Identifier string
	Title      string
	Sections   []Section

	blocks  []Block
	anchors map[string]BlockID
}

// New builds a document and assigns block IDs. The document takes ownership
// of the sections and their blocks; they must not be modified afterwards.
func New(identifier, title string, sections []Section) *Document {
	d := &Document{
		Identifier: identifier,
		Title:      title,
		Sections:   sections,
		anchors:    make(map[string]BlockID),
	}
	for _, s := range d.Sections {
		if s.Heading != nil {
			d.register(s.Heading)
		}
		d.registerAll(s.Blocks)
	}
	return d
}

func (d *Document) registerAll(blocks []Block) {
	for _, b := range blocks {
		d.register(b)
	}
}

func (d *Document) register(b Block) {
	id := BlockID(len(d.blocks))
	d.blocks = append(d.blocks, b)

	switch b := b.(type) {
	case *Paragraph:
		b.id = id
	case *Heading:
		b.id = id
		if b.Anchor != "" {
			if _, dup := d.anchors[b.Anchor]; !dup {
				d.anchors[b.Anchor] = id
			}
		}
	case *List:
		b.id = id
		for _, item := range b.Items {
			d.registerAll(item)
		}
	case *Table:
		b.id = id
		for _, row := range b.Rows {
			for _, cell := range row {
				d.registerAll(cell.Blocks)
			}
		}
	}
}

// Block returns the block with the given ID.
func (d *Document) Block(id BlockID) (Block, bool) {
	if id < 0 || int(id) >= len(d.blocks) {
		return nil, false
	}
	return d.blocks[id], true
}

// BlockCount returns the number of blocks, nested ones included.
func (d *Document) BlockCount() int {
	return len(d.blocks)
}

// AnchorBlock returns the heading block carrying the given anchor.
func (d *Document) AnchorBlock(anchor string) (BlockID, bool) {
	id, ok := d.anchors[anchor]
	return id, ok
}

// Empty reports whether the document has no blocks at all.
func (d *Document) Empty() bool {
	return len(d.blocks) == 0
}

// PlainText joins the text of spans without styling.
func PlainText(spans []InlineSpan) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.Text)
	}
	return sb.String()
}
