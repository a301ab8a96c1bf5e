package layout

import (
	"strings"

	"wikiterm/document"
	"wikiterm/render"
)

// naturalWidth is the width used to measure content without wrapping.
const naturalWidth = 1 << 16

// ColumnWidths returns the width allocated to each column of t when the
// table is laid out at width. Every column but the last includes a one cell
// gap. When every column's content fits in an even split of the width the
// columns take their content width; otherwise each column gets the even
// split floor(width / columns).
func ColumnWidths(t *document.Table, width int) []int {
	cols := t.Columns()
	if cols == 0 {
		return nil
	}
	even := max(width/cols, 1)

	natural := make([]int, cols)
	for _, r := range t.Rows {
		for c, cell := range r {
			w := measure(cell)
			if c < cols-1 {
				w++
			}
			natural[c] = max(natural[c], w, 1)
		}
	}

	widths := make([]int, cols)
	overflow := false
	for c, w := range natural {
		widths[c] = max(w, 1)
		if w > even {
			overflow = true
		}
	}
	if overflow {
		for c := range widths {
			widths[c] = even
		}
	}
	return widths
}

// measure returns the unwrapped width of a cell's content.
func measure(cell document.Cell) int {
	scratch := &layouter{}
	w := 0
	for _, r := range scratch.blocks(cell.Blocks, naturalWidth, context{depth: 1, strong: cell.Header}) {
		w = max(w, r.width())
	}
	return w
}

func (l *layouter) table(t *document.Table, width int, ctx context) []row {
	widths := ColumnWidths(t, width)
	if len(widths) == 0 {
		return nil
	}
	cols := len(widths)
	inner := ctx.nested()

	var rows []row
	for _, cells := range t.Rows {
		laid := make([][]row, cols)
		height := 1
		for c := 0; c < cols && c < len(cells); c++ {
			content := widths[c]
			if c < cols-1 && content > 1 {
				content--
			}
			cellCtx := inner
			cellCtx.strong = cells[c].Header
			laid[c] = l.blocks(cells[c].Blocks, content, cellCtx)
			height = max(height, len(laid[c]))
		}

		for i := 0; i < height; i++ {
			out := row{block: t.ID()}
			claimed := false
			for c := 0; c < cols; c++ {
				used := 0
				if i < len(laid[c]) {
					cr := laid[c][i]
					for _, f := range cr.frags {
						out.add(f)
					}
					used = cr.width()
					out.starts = append(out.starts, cr.starts...)
					if !claimed && cr.block != document.NoBlock {
						out.block = cr.block
						out.spanStart, out.spanEnd = cr.spanStart, cr.spanEnd
						claimed = true
					}
				}
				if pad := widths[c] - used; pad > 0 {
					out.add(Fragment{Text: strings.Repeat(" ", pad), Role: RolePadding, Link: NoLink})
				}
			}
			rows = append(rows, clip(out, width))
		}
	}
	return rows
}

// clip cuts a row down to width cells. Only tables with more columns than
// the width has cells need it.
func clip(r row, width int) row {
	if r.width() <= width {
		return r
	}
	frags := r.frags
	r.frags = nil
	used := 0
	for _, f := range frags {
		if used >= width {
			break
		}
		w := render.StringWidth(f.Text)
		if used+w > width {
			f.Text = render.TruncateToWidth(f.Text, width-used)
			w = render.StringWidth(f.Text)
		}
		r.frags = append(r.frags, f)
		used += w
	}
	return r
}
