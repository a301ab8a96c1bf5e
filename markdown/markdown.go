// Package markdown loads local Markdown files into documents so they can be
// read with the same viewer as encyclopedia pages. Local identifiers carry
// the "file:" prefix.
package markdown

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"wikiterm/document"
)

// Scheme prefixes identifiers of local files.
const Scheme = "file:"

// IsLocal reports whether identifier names a local file.
func IsLocal(identifier string) bool {
	return strings.HasPrefix(identifier, Scheme)
}

// Loader reads Markdown files. It implements document.Fetcher.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a loader. A nil logger discards output.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{logger: logger}
}

// Fetch reads and parses the file named by identifier.
func (l *Loader) Fetch(ctx context.Context, identifier string) (*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := strings.TrimPrefix(identifier, Scheme)
	src, err := os.ReadFile(path)
	if err != nil {
		kind := document.NetworkError
		if errors.Is(err, fs.ErrNotExist) {
			kind = document.NotFound
		}
		return nil, &document.FetchError{Kind: kind, Identifier: identifier, Err: err}
	}
	l.logger.Info("loaded local document", "path", path, "bytes", len(src))
	return Parse(identifier, src), nil
}

var md = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

// Parse converts Markdown source into a document. The first top level
// heading becomes the title, or the file name when there is none.
func Parse(identifier string, src []byte) *document.Document {
	root := md.Parser().Parse(text.NewReader(src))
	c := &converter{
		src: src,
		dir: filepath.Dir(strings.TrimPrefix(identifier, Scheme)),
	}
	blocks := c.blocks(root)

	title := ""
	for _, b := range blocks {
		if h, ok := b.(*document.Heading); ok && h.Level == 1 {
			title = h.Title()
			break
		}
	}
	if title == "" {
		base := filepath.Base(strings.TrimPrefix(identifier, Scheme))
		title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return document.New(identifier, title, sectionize(blocks))
}

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

type converter struct {
	src []byte
	dir string
}

func (c *converter) blocks(n ast.Node) []document.Block {
	var out []document.Block
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch node := child.(type) {
		case *ast.Heading:
			anchor := ""
			if id, ok := node.AttributeString("id"); ok {
				if b, ok := id.([]byte); ok {
					anchor = string(b)
				}
			}
			out = append(out, document.Head(node.Level, anchor, c.spans(node, document.Style{})...))
		case *ast.Paragraph, *ast.TextBlock:
			if s := c.spans(node, document.Style{}); len(s) > 0 {
				out = append(out, document.Para(s...))
			}
		case *ast.List:
			l := &document.List{Ordered: node.IsOrdered(), Start: node.Start}
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				if blocks := c.blocks(item); len(blocks) > 0 {
					l.Items = append(l.Items, blocks)
				}
			}
			if len(l.Items) > 0 {
				out = append(out, l)
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			if code := c.lines(node); code != "" {
				out = append(out, document.Para(document.Mono(code)))
			}
		case *ast.Blockquote:
			out = append(out, c.blocks(node)...)
		case *east.Table:
			if t := c.table(node); t != nil {
				out = append(out, t)
			}
		}
	}
	return out
}

func (c *converter) table(n *east.Table) *document.Table {
	t := &document.Table{}
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		_, header := row.(*east.TableHeader)
		var cells []document.Cell
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			var blocks []document.Block
			if s := c.spans(cell, document.Style{}); len(s) > 0 {
				blocks = append(blocks, document.Para(s...))
			}
			cells = append(cells, document.Cell{Header: header, Blocks: blocks})
		}
		if len(cells) > 0 {
			t.Rows = append(t.Rows, cells)
		}
	}
	if len(t.Rows) == 0 {
		return nil
	}
	return t
}

func (c *converter) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(c.src))
	}
	return strings.TrimRight(buf.String(), "\n")
}

// spans flattens the inline children of n.
func (c *converter) spans(n ast.Node, st document.Style) []document.InlineSpan {
	var out []document.InlineSpan
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch node := child.(type) {
		case *ast.Text:
			s := string(node.Segment.Value(c.src))
			if node.SoftLineBreak() || node.HardLineBreak() {
				s += " "
			}
			out = append(out, document.InlineSpan{Text: s, Style: st})
		case *ast.String:
			out = append(out, document.InlineSpan{Text: string(node.Value), Style: st})
		case *ast.Emphasis:
			inner := st
			if node.Level >= 2 {
				inner.Strong = true
			} else {
				inner.Emphasis = true
			}
			out = append(out, c.spans(node, inner)...)
		case *ast.CodeSpan:
			mono := st
			mono.Monospace = true
			out = append(out, document.InlineSpan{Text: c.plain(node), Style: mono})
		case *ast.Link:
			target := c.target(string(node.Destination))
			out = append(out, document.InlineSpan{Text: c.plain(node), Style: st, Link: &target})
		case *ast.AutoLink:
			u := string(node.URL(c.src))
			target := document.External(u)
			out = append(out, document.InlineSpan{Text: string(node.Label(c.src)), Style: st, Link: &target})
		case *ast.Image:
			target := document.LinkTarget{Kind: document.LinkMedia, Page: string(node.Destination)}
			alt := c.plain(node)
			if alt == "" {
				alt = "image"
			}
			out = append(out, document.InlineSpan{Text: alt, Style: st, Link: &target})
		case *ast.RawHTML:
		default:
			out = append(out, c.spans(node, st)...)
		}
	}
	return out
}

// plain returns the text of n's inline children without styling.
func (c *converter) plain(n ast.Node) string {
	return document.PlainText(c.spans(n, document.Style{}))
}

// target resolves a link destination. Relative paths point to other local
// files and are resolved against the directory of the current one.
func (c *converter) target(dest string) document.LinkTarget {
	if strings.HasPrefix(dest, "#") {
		return document.Anchor(dest[1:])
	}
	if u, err := url.Parse(dest); err == nil && u.Scheme != "" {
		return document.External(dest)
	}
	path, anchor, _ := strings.Cut(dest, "#")
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.dir, path)
	}
	return document.Internal(fmt.Sprintf("%s%s#%s", Scheme, path, anchor))
}
