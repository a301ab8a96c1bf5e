package markdown

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"wikiterm/document"
)

const guide = "# Guide\n\n" +
	"Intro with *emphasis*, **strong** and `code`.\n\n" +
	"## Install\n\n" +
	"- one\n" +
	"- two [next](other.md#setup)\n\n" +
	"3. third\n" +
	"4. fourth\n\n" +
	"See [the web](https://go.dev) and [below](#usage).\n\n" +
	"## Usage\n\n" +
	"```go\nfmt.Println(\"hi\")\n```\n\n" +
	"| A | B |\n|---|---|\n| 1 | 2 |\n"

func TestParse(t *testing.T) {
	doc := Parse("file:docs/guide.md", []byte(guide))
	if doc.Title != "Guide" || doc.Identifier != "file:docs/guide.md" {
		t.Errorf("unexpected identity %q %q", doc.Identifier, doc.Title)
	}
	if len(doc.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(doc.Sections))
	}

	headings := []struct {
		level  int
		anchor string
		title  string
	}{
		{1, "guide", "Guide"},
		{2, "install", "Install"},
		{2, "usage", "Usage"},
	}
	for i, h := range headings {
		got := doc.Sections[i].Heading
		if got.Level != h.level || got.Anchor != h.anchor || got.Title() != h.title {
			t.Errorf("heading %d = {%d %q %q}, expected %+v", i, got.Level, got.Anchor, got.Title(), h)
		}
	}

	intro := doc.Sections[0].Blocks[0].(*document.Paragraph)
	if got := document.PlainText(intro.Spans); got != "Intro with emphasis, strong and code." {
		t.Errorf("intro = %q", got)
	}
	styles := map[string]document.Style{}
	for _, s := range intro.Spans {
		styles[s.Text] = s.Style
	}
	if !styles["emphasis"].Emphasis || !styles["strong"].Strong || !styles["code"].Monospace {
		t.Errorf("unexpected styles %+v", styles)
	}

	install := doc.Sections[1].Blocks
	if len(install) != 3 {
		t.Fatalf("expected 3 blocks in Install, got %d", len(install))
	}
	ul := install[0].(*document.List)
	if ul.Ordered || len(ul.Items) != 2 {
		t.Errorf("unexpected list %+v", ul)
	}
	item := ul.Items[1][0].(*document.Paragraph)
	expected := document.LinkTarget{Kind: document.LinkInternal, Page: "file:" + filepath.Join("docs", "other.md"), Anchor: "setup"}
	if l := item.Spans[1].Link; l == nil || *l != expected {
		t.Errorf("relative link = %+v, expected %+v", item.Spans[1].Link, expected)
	}
	ol := install[1].(*document.List)
	if !ol.Ordered || ol.Start != 3 {
		t.Errorf("unexpected ordered list %+v", ol)
	}

	var kinds []document.LinkKind
	for _, s := range install[2].(*document.Paragraph).Spans {
		if s.Link != nil {
			kinds = append(kinds, s.Link.Kind)
		}
	}
	if len(kinds) != 2 || kinds[0] != document.LinkExternal || kinds[1] != document.LinkAnchor {
		t.Errorf("unexpected link kinds %v", kinds)
	}

	usage := doc.Sections[2].Blocks
	code := usage[0].(*document.Paragraph)
	if code.Spans[0].Text != `fmt.Println("hi")` || !code.Spans[0].Style.Monospace {
		t.Errorf("unexpected code block %+v", code.Spans)
	}
	tbl := usage[1].(*document.Table)
	if len(tbl.Rows) != 2 || !tbl.Rows[0][0].Header || tbl.Rows[1][0].Header {
		t.Errorf("unexpected table %+v", tbl)
	}
}

func TestParseTitleFallback(t *testing.T) {
	doc := Parse("file:/tmp/notes.md", []byte("Just text.\n"))
	if doc.Title != "notes" {
		t.Errorf("title = %q", doc.Title)
	}
	if len(doc.Sections) != 1 || doc.Sections[0].Heading != nil {
		t.Errorf("expected a lead section only, got %+v", doc.Sections)
	}
}

func TestLoaderFetch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.md")
	if err := os.WriteFile(path, []byte("# Page\n\nBody.\n"), 0644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(nil)

	doc, err := l.Fetch(context.Background(), Scheme+path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Page" {
		t.Errorf("title = %q", doc.Title)
	}

	_, err = l.Fetch(context.Background(), Scheme+filepath.Join(dir, "missing.md"))
	var fe *document.FetchError
	if !errors.As(err, &fe) || fe.Kind != document.NotFound {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestIsLocal(t *testing.T) {
	if !IsLocal("file:a.md") || IsLocal("Go") {
		t.Error("IsLocal misclassified identifiers")
	}
}
