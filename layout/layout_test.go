package layout

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"wikiterm/document"
)

func lineTexts(res *Result) []string {
	out := make([]string, len(res.Lines))
	for i, l := range res.Lines {
		out[i] = l.Text()
	}
	return out
}

func mustLayout(t *testing.T, doc *document.Document, width int) *Result {
	t.Helper()
	res, err := Layout(doc, width)
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	return res
}

func paragraphs(texts ...string) *document.Document {
	var blocks []document.Block
	for _, text := range texts {
		blocks = append(blocks, document.Para(document.Text(text)))
	}
	return document.New("Test", "Test", []document.Section{{Blocks: blocks}})
}

func TestLayoutInvalidWidth(t *testing.T) {
	for _, w := range []int{0, -1} {
		if _, err := Layout(paragraphs("x"), w); !errors.Is(err, ErrInvalidLayoutWidth) {
			t.Errorf("width %d: expected ErrInvalidLayoutWidth, got %v", w, err)
		}
	}
}

func TestLayoutEmptyDocument(t *testing.T) {
	res := mustLayout(t, document.New("Empty", "Empty", nil), 40)
	if len(res.Lines) != 0 {
		t.Errorf("expected no lines, got %d", len(res.Lines))
	}
	if len(res.Targets) != 0 {
		t.Errorf("expected no targets, got %v", res.Targets)
	}
}

func TestParagraphWrap(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		width    int
		expected []string
	}{
		{"no wrap needed", "hello world", 20, []string{"hello world"}},
		{"simple wrap", "hello world foo bar", 11, []string{"hello world", "foo bar"}},
		{"multiple lines", "one two three four five six", 10, []string{"one two", "three four", "five six"}},
		{"collapses whitespace", "  spaced   out\n text ", 40, []string{"spaced out text"}},
		{"long word breaks", "supercalifragilistic", 8, []string{"supercal", "ifragili", "stic"}},
		{"long word after short", "a supercalifragilistic b", 8, []string{"a", "supercal", "ifragili", "stic b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := mustLayout(t, paragraphs(tt.text), tt.width)
			got := lineTexts(res)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("got %q, expected %q", got, tt.expected)
			}
			for _, l := range res.Lines {
				if l.Width() > tt.width {
					t.Errorf("line %d is %d wide, exceeds %d", l.Index, l.Width(), tt.width)
				}
			}
		})
	}
}

func TestBlankLinePolicy(t *testing.T) {
	doc := document.New("Test", "Test", []document.Section{
		{
			Heading: document.Head(1, "intro", document.Text("Intro")),
			Blocks:  []document.Block{document.Para(document.Text("alpha"))},
		},
		{
			Heading: document.Head(1, "next", document.Text("Next")),
			Blocks: []document.Block{
				document.Para(document.Text("beta")),
				document.Para(),
				document.Para(document.Text("gamma")),
			},
		},
	})

	res := mustLayout(t, doc, 40)
	expected := []string{"1 Intro", "", "alpha", "", "2 Next", "", "beta", "", "gamma"}
	if got := lineTexts(res); !reflect.DeepEqual(got, expected) {
		t.Fatalf("got %q, expected %q", got, expected)
	}

	for i, l := range res.Lines {
		if l.Index != i {
			t.Errorf("line %d has index %d", i, l.Index)
		}
	}
	if res.Lines[1].Block != document.NoBlock {
		t.Error("blank lines should not reference a block")
	}
}

func TestHeadingsNumberedAndIndented(t *testing.T) {
	doc := document.New("Test", "Test", []document.Section{
		{Heading: document.Head(1, "a", document.Text("Alpha Beta Gamma"))},
		{Heading: document.Head(2, "b", document.Text("Sub"))},
		{Heading: document.Head(2, "c", document.Text("Other"))},
		{Heading: document.Head(1, "d", document.Text("Last"))},
	})

	res := mustLayout(t, doc, 12)
	expected := []string{"1 Alpha Beta", "  Gamma", "", "  1.1 Sub", "", "  1.2 Other", "", "2 Last"}
	if got := lineTexts(res); !reflect.DeepEqual(got, expected) {
		t.Fatalf("got %q, expected %q", got, expected)
	}

	if len(res.TOC) != 4 {
		t.Fatalf("expected 4 toc entries, got %d", len(res.TOC))
	}
	wantNumbers := []string{"1", "1.1", "1.2", "2"}
	wantLines := []int{0, 3, 5, 7}
	for i, entry := range res.TOC {
		if entry.Number != wantNumbers[i] || entry.Line != wantLines[i] {
			t.Errorf("entry %d: got (%s, %d), expected (%s, %d)", i, entry.Number, entry.Line, wantNumbers[i], wantLines[i])
		}
	}
	if res.TOC[2].Anchor != "c" || res.TOC[2].Title != "Other" {
		t.Errorf("unexpected entry %+v", res.TOC[2])
	}

	first := res.Lines[0].Fragments[0]
	if first.Role != RoleMarker || !first.Decoration() {
		t.Errorf("heading number should be a marker, got %+v", first)
	}
	if res.Lines[1].Fragments[0].Role != RolePadding {
		t.Error("heading continuation should be indented with padding")
	}
}

func TestLinkTextIsNeverSplit(t *testing.T) {
	doc := document.New("Test", "Test", []document.Section{{Blocks: []document.Block{
		document.Para(
			document.Text("see "),
			document.LinkTo("New York City", document.Internal("New York City")),
			document.Text(" now"),
		),
	}}})

	res := mustLayout(t, doc, 14)
	expected := []string{"see", "New York City", "now"}
	if got := lineTexts(res); !reflect.DeepEqual(got, expected) {
		t.Fatalf("got %q, expected %q", got, expected)
	}
	if len(res.Links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(res.Links))
	}
	link := res.Links[0]
	if link.FirstLine != 1 || link.LastLine != 1 || link.Column != 0 || link.Text != "New York City" {
		t.Errorf("unexpected link %+v", link)
	}
	if link.Span != 1 {
		t.Errorf("expected span 1, got %d", link.Span)
	}
	if res.Lines[1].Fragments[0].Link != 0 {
		t.Error("link fragment should carry link id 0")
	}
	if res.Lines[1].SpanStart != 1 || res.Lines[1].SpanEnd != 2 {
		t.Errorf("expected span range [1,2), got [%d,%d)", res.Lines[1].SpanStart, res.Lines[1].SpanEnd)
	}
}

func TestLongLinkIsHardSplit(t *testing.T) {
	doc := document.New("Test", "Test", []document.Section{{Blocks: []document.Block{
		document.Para(document.LinkTo("abcdefghij", document.Internal("X"))),
	}}})

	res := mustLayout(t, doc, 4)
	expected := []string{"abcd", "efgh", "ij"}
	if got := lineTexts(res); !reflect.DeepEqual(got, expected) {
		t.Fatalf("got %q, expected %q", got, expected)
	}
	link := res.Links[0]
	if link.FirstLine != 0 || link.LastLine != 2 {
		t.Errorf("link should span lines 0..2, got %d..%d", link.FirstLine, link.LastLine)
	}
}

func TestAdjacentSpansGlue(t *testing.T) {
	doc := document.New("Test", "Test", []document.Section{{Blocks: []document.Block{
		document.Para(
			document.LinkTo("Go", document.Internal("Go")),
			document.Text(", a "),
			document.Bold("language"),
		),
	}}})

	res := mustLayout(t, doc, 40)
	frags := res.Lines[0].Fragments
	if len(frags) != 3 {
		t.Fatalf("expected 3 fragments, got %+v", frags)
	}
	if frags[0].Text != "Go" || frags[0].Link != 0 {
		t.Errorf("unexpected first fragment %+v", frags[0])
	}
	if frags[1].Text != ", a " || frags[1].Link != NoLink {
		t.Errorf("unexpected second fragment %+v", frags[1])
	}
	if frags[2].Text != "language" || !frags[2].Style.Strong {
		t.Errorf("unexpected third fragment %+v", frags[2])
	}

	// "Go," is a single token and moves as a unit.
	narrow := mustLayout(t, doc, 3)
	if got := narrow.Lines[0].Text(); got != "Go," {
		t.Errorf("got %q, expected %q", got, "Go,")
	}
}

func TestListHangingIndent(t *testing.T) {
	doc := document.New("Test", "Test", []document.Section{{Blocks: []document.Block{
		&document.List{Items: [][]document.Block{
			{document.Para(document.Text("first item here"))},
			{document.Para(document.Text("second"))},
		}},
		&document.List{Ordered: true, Items: [][]document.Block{
			{document.Para(document.Text("a"))},
			{document.Para(document.Text("b")), &document.List{Items: [][]document.Block{
				{document.Para(document.Text("deep"))},
			}}},
		}},
	}}})

	res := mustLayout(t, doc, 10)
	expected := []string{"• first", "  item", "  here", "• second", "", "1. a", "2. b", "   ◦ deep"}
	if got := lineTexts(res); !reflect.DeepEqual(got, expected) {
		t.Fatalf("got %q, expected %q", got, expected)
	}

	if res.Lines[1].Fragments[0].Role != RolePadding {
		t.Error("continuation lines should start with padding")
	}
	if res.Lines[0].Fragments[0].Role != RoleMarker {
		t.Error("first line should start with the marker")
	}
}

func TestListNarrowerThanMarker(t *testing.T) {
	doc := document.New("Test", "Test", []document.Section{{Blocks: []document.Block{
		&document.List{Items: [][]document.Block{{document.Para(document.Text("ab"))}}},
	}}})

	res := mustLayout(t, doc, 1)
	expected := []string{"•", "a", "b"}
	if got := lineTexts(res); !reflect.DeepEqual(got, expected) {
		t.Fatalf("got %q, expected %q", got, expected)
	}
}

func twoColumnTable(left, right string) *document.Table {
	return &document.Table{Rows: [][]document.Cell{{
		{Blocks: []document.Block{document.Para(document.Text(left))}},
		{Blocks: []document.Block{document.Para(document.Text(right))}},
	}}}
}

func TestTableEvenSplitWhenContentOverflows(t *testing.T) {
	left := strings.TrimSpace(strings.Repeat("abcd ", 10)) + "x" // 50 cells wide
	tbl := twoColumnTable(left, "fives")
	doc := document.New("Test", "Test", []document.Section{{Blocks: []document.Block{tbl}}})

	if got := ColumnWidths(tbl, 20); !reflect.DeepEqual(got, []int{10, 10}) {
		t.Fatalf("got column widths %v, expected [10 10]", got)
	}

	res := mustLayout(t, doc, 20)
	if len(res.Lines) != 6 {
		t.Fatalf("expected 6 lines, got %d: %q", len(res.Lines), lineTexts(res))
	}
	if got := res.Lines[0].Text(); got != "abcd abcd fives     " {
		t.Errorf("got %q", got)
	}
	if got := res.Lines[5].Text(); got != "abcdx               " {
		t.Errorf("got %q", got)
	}
	for _, l := range res.Lines {
		if l.Width() != 20 {
			t.Errorf("line %d: width %d, expected every row padded to 20", l.Index, l.Width())
		}
	}
	// The short cell is padded with blank fragments below its content.
	last := res.Lines[5].Fragments[len(res.Lines[5].Fragments)-1]
	if last.Role != RolePadding {
		t.Errorf("expected trailing padding, got %+v", last)
	}
}

func TestTableNaturalWidthsWhenContentFits(t *testing.T) {
	tbl := twoColumnTable("ab", "cde")
	if got := ColumnWidths(tbl, 20); !reflect.DeepEqual(got, []int{3, 3}) {
		t.Fatalf("got %v, expected [3 3]", got)
	}
	doc := document.New("Test", "Test", []document.Section{{Blocks: []document.Block{tbl}}})
	res := mustLayout(t, doc, 20)
	if got := lineTexts(res); !reflect.DeepEqual(got, []string{"ab cde"}) {
		t.Errorf("got %q", got)
	}
}

func TestTableHeaderCellsAreStrong(t *testing.T) {
	tbl := &document.Table{Rows: [][]document.Cell{{
		{Header: true, Blocks: []document.Block{document.Para(document.Text("Name"))}},
	}}}
	doc := document.New("Test", "Test", []document.Section{{Blocks: []document.Block{tbl}}})
	res := mustLayout(t, doc, 20)
	if !res.Lines[0].Fragments[0].Style.Strong {
		t.Error("header cell text should be strong")
	}
}

func TestTargetsAndBlockAt(t *testing.T) {
	doc := document.New("Test", "Test", []document.Section{
		{Blocks: []document.Block{document.Para(document.Text("lead"))}},
		{
			Heading: document.Head(1, "h", document.Text("Heading")),
			Blocks: []document.Block{&document.List{Items: [][]document.Block{
				{document.Para(document.Text("item"))},
			}}},
		},
	})
	res := mustLayout(t, doc, 40)

	// 0 lead, 1 blank, 2 heading, 3 blank, 4 list item
	tests := []struct {
		block document.BlockID
		line  int
	}{
		{0, 0}, // lead paragraph
		{1, 2}, // heading
		{2, 4}, // list
		{3, 4}, // item paragraph
	}
	for _, tt := range tests {
		if got, ok := res.Targets[tt.block]; !ok || got != tt.line {
			t.Errorf("block %d: got (%d, %v), expected line %d", tt.block, got, ok, tt.line)
		}
	}

	if got := res.BlockAt(1); got != 1 {
		t.Errorf("BlockAt(1) = %d, expected the heading", got)
	}
	if got := res.BlockAt(4); got != 3 {
		t.Errorf("BlockAt(4) = %d, expected the item paragraph", got)
	}
	if got := res.BlockAt(99); got != document.NoBlock {
		t.Errorf("BlockAt past end = %d, expected NoBlock", got)
	}
}

func TestLinksOrderedByPosition(t *testing.T) {
	doc := document.New("Test", "Test", []document.Section{{Blocks: []document.Block{
		document.Para(document.LinkTo("one", document.Internal("One")), document.Text(" and "), document.LinkTo("two", document.Internal("Two"))),
		document.Para(document.LinkTo("three", document.Internal("Three"))),
	}}})
	res := mustLayout(t, doc, 40)

	if len(res.Links) != 3 {
		t.Fatalf("expected 3 links, got %d", len(res.Links))
	}
	expected := []struct {
		page   string
		line   int
		column int
	}{
		{"One", 0, 0},
		{"Two", 0, 8},
		{"Three", 2, 0},
	}
	for i, want := range expected {
		got := res.Links[i]
		if got.ID != i || got.Target.Page != want.page || got.FirstLine != want.line || got.Column != want.column {
			t.Errorf("link %d: got %+v, expected %+v", i, got, want)
		}
	}
}

func TestLayoutIdempotent(t *testing.T) {
	doc := document.New("Test", "Test", []document.Section{
		{Blocks: []document.Block{document.Para(document.Text("lead "), document.LinkTo("link", document.Internal("L")))}},
		{
			Heading: document.Head(1, "h", document.Text("Heading")),
			Blocks: []document.Block{
				twoColumnTable("left side text", "right"),
				&document.List{Items: [][]document.Block{{document.Para(document.Text("item"))}}},
			},
		},
	})

	a := mustLayout(t, doc, 17)
	b := mustLayout(t, doc, 17)
	if !reflect.DeepEqual(a, b) {
		t.Error("layout at the same width should be identical")
	}
}

func TestWidthMonotonicity(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet consectetur ", 12)
	doc := document.New("Test", "Test", []document.Section{
		{Blocks: []document.Block{document.Para(document.Text(text))}},
		{
			Heading: document.Head(2, "h", document.Text("A heading with words")),
			Blocks: []document.Block{&document.List{Items: [][]document.Block{
				{document.Para(document.Text(text))},
			}}},
		},
	})

	prev := -1
	for w := 16; w <= 120; w++ {
		res := mustLayout(t, doc, w)
		if prev >= 0 && len(res.Lines) > prev {
			t.Fatalf("width %d produced %d lines, more than %d at width %d", w, len(res.Lines), prev, w-1)
		}
		prev = len(res.Lines)
	}
}

func TestVisible(t *testing.T) {
	res := mustLayout(t, paragraphs("a", "b", "c"), 10)
	// a, blank, b, blank, c
	if got := res.Visible(1, 3); len(got) != 3 || got[0].Index != 1 {
		t.Errorf("unexpected slice %+v", got)
	}
	if got := res.Visible(4, 10); len(got) != 1 {
		t.Errorf("expected the last line only, got %d", len(got))
	}
	if got := res.Visible(10, 3); got != nil {
		t.Errorf("expected nil past the end, got %+v", got)
	}
}

func TestResultText(t *testing.T) {
	res := mustLayout(t, paragraphs("a", "b"), 10)
	if got := res.Text(); got != "a\n\nb\n" {
		t.Errorf("got %q", got)
	}
}
